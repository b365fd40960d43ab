package handler

import (
	"go-inventory-po/internal/model"
	"go-inventory-po/internal/service"

	"github.com/gofiber/fiber/v2"
)

type VendorHandler struct {
	service service.VendorService
}

func NewVendorHandler(s service.VendorService) *VendorHandler {
	return &VendorHandler{service: s}
}

func (h *VendorHandler) GetVendors(c *fiber.Ctx) error {
	vendors, err := h.service.List(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(vendors)
}

func (h *VendorHandler) GetVendor(c *fiber.Ctx) error {
	id, err := parseID(c, "id", "vendor")
	if err != nil {
		return err
	}
	vendor, err := h.service.Get(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(vendor)
}

func (h *VendorHandler) CreateVendor(c *fiber.Ctx) error {
	var req model.CreateVendorRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	vendor, err := h.service.Create(c.UserContext(), &req)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(vendor)
}

func (h *VendorHandler) UpdateVendor(c *fiber.Ctx) error {
	id, err := parseID(c, "id", "vendor")
	if err != nil {
		return err
	}
	var req model.UpdateVendorRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	vendor, err := h.service.Update(c.UserContext(), id, &req)
	if err != nil {
		return err
	}
	return c.JSON(vendor)
}

// DeleteVendor refuses vendors still referenced by a purchase order (409).
func (h *VendorHandler) DeleteVendor(c *fiber.Ctx) error {
	id, err := parseID(c, "id", "vendor")
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.UserContext(), id); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Vendor deleted"})
}
