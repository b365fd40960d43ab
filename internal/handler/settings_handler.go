package handler

import (
	"go-inventory-po/internal/service"
	"go-inventory-po/internal/settings"
	pkgerrors "go-inventory-po/pkg/errors"

	"github.com/gofiber/fiber/v2"
)

type SettingsHandler struct {
	settings  *settings.Provider
	documents service.DocumentService
}

func NewSettingsHandler(provider *settings.Provider, documents service.DocumentService) *SettingsHandler {
	return &SettingsHandler{settings: provider, documents: documents}
}

// GET /api/email/config
func (h *SettingsHandler) GetEmailConfig(c *fiber.Ctx) error {
	return c.JSON(h.documents.EmailStatus())
}

// POST /api/email/test
func (h *SettingsHandler) SendTestEmail(c *fiber.Ctx) error {
	var req sendEmailRequest
	if len(c.Body()) > 0 {
		if err := parseBody(c, &req); err != nil {
			return err
		}
	}
	if err := h.documents.SendTestEmail(c.UserContext(), req.To); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Test email sent"})
}

// GET /api/settings/email
func (h *SettingsHandler) GetEmailSettings(c *fiber.Ctx) error {
	return c.JSON(h.settings.Email().Masked())
}

// PUT /api/settings/email
// An omitted or masked password keeps the stored one.
func (h *SettingsHandler) UpdateEmailSettings(c *fiber.Ctx) error {
	var req settings.EmailSettings
	if err := parseBody(c, &req); err != nil {
		return err
	}
	current := h.settings.Email()
	if req.Pass == "" || req.Pass == current.Masked().Pass {
		req.Pass = current.Pass
	}
	if err := h.settings.UpdateEmail(req); err != nil {
		return err
	}
	return c.JSON(h.settings.Email().Masked())
}

// POST /api/settings/reload
func (h *SettingsHandler) ReloadSettings(c *fiber.Ctx) error {
	if err := h.settings.Reload(); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to reload settings")
	}
	return c.JSON(h.settings.Email().Masked())
}

// GET /api/company
func (h *SettingsHandler) GetCompany(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"name": h.documents.CompanyName()})
}
