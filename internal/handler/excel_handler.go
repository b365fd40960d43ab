package handler

import (
	"fmt"
	"time"

	"go-inventory-po/internal/model"
	"go-inventory-po/internal/service"
	pkgerrors "go-inventory-po/pkg/errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type ExcelHandler struct {
	service  service.ExcelService
	maxBytes int64
}

func NewExcelHandler(s service.ExcelService, maxBytes int64) *ExcelHandler {
	return &ExcelHandler{service: s, maxBytes: maxBytes}
}

// Import reads the multipart "file" field. The whole upload is held in memory.
// POST /api/excel/import
func (h *ExcelHandler) Import(c *fiber.Ctx) error {
	header, err := c.FormFile("file")
	if err != nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "No file uploaded")
	}
	if h.maxBytes > 0 && header.Size > h.maxBytes {
		return pkgerrors.Newf(pkgerrors.CodeValidation, "file exceeds the %d MB upload limit", h.maxBytes>>20)
	}

	file, err := header.Open()
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "failed to read the uploaded file")
	}
	defer file.Close()

	report, err := h.service.Import(c.UserContext(), file)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"message": fmt.Sprintf("Import completed: %d items imported successfully, %d items failed", report.Success, report.Failed),
		"details": report,
	})
}

// GET /api/excel/export?categoryId=&lowStockOnly=&includeTransactions=
func (h *ExcelHandler) Export(c *fiber.Ctx) error {
	opts := model.ExportOptions{
		LowStockOnly:        c.QueryBool("lowStockOnly"),
		IncludeTransactions: c.QueryBool("includeTransactions"),
	}
	if raw := c.Query("categoryId"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return pkgerrors.New(pkgerrors.CodeValidation, "Invalid category ID")
		}
		opts.CategoryID = &id
	}

	data, err := h.service.Export(c.UserContext(), opts)
	if err != nil {
		return err
	}
	return sendWorkbook(c, fmt.Sprintf("inventory_export_%s.xlsx", time.Now().Format("20060102")), data)
}

// GET /api/excel/template
func (h *ExcelHandler) Template(c *fiber.Ctx) error {
	data, err := h.service.Template(c.UserContext())
	if err != nil {
		return err
	}
	return sendWorkbook(c, "inventory_import_template.xlsx", data)
}

func sendWorkbook(c *fiber.Ctx, name string, data []byte) error {
	c.Attachment(name)
	c.Set(fiber.HeaderContentType, xlsxContentType)
	return c.Send(data)
}
