package handler

import (
	"go-inventory-po/internal/model"
	"go-inventory-po/internal/service"

	"github.com/gofiber/fiber/v2"
)

type PurchaseOrderHandler struct {
	orders    service.PurchaseOrderService
	documents service.DocumentService
}

func NewPurchaseOrderHandler(orders service.PurchaseOrderService, documents service.DocumentService) *PurchaseOrderHandler {
	return &PurchaseOrderHandler{orders: orders, documents: documents}
}

// GET /api/purchase-orders?status=
func (h *PurchaseOrderHandler) GetPurchaseOrders(c *fiber.Ctx) error {
	orders, err := h.orders.List(c.UserContext(), model.PurchaseOrderStatus(c.Query("status")))
	if err != nil {
		return err
	}
	return c.JSON(orders)
}

// GET /api/purchase-orders/:id
func (h *PurchaseOrderHandler) GetPurchaseOrder(c *fiber.Ctx) error {
	id, err := parseID(c, "id", "purchase order")
	if err != nil {
		return err
	}
	detail, err := h.orders.Get(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(detail)
}

// POST /api/purchase-orders
func (h *PurchaseOrderHandler) CreatePurchaseOrder(c *fiber.Ctx) error {
	var req model.CreatePurchaseOrderRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	detail, err := h.orders.Create(c.UserContext(), &req)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(detail)
}

// PUT /api/purchase-orders/:id
// Status changes outside the allowed transitions answer 422.
func (h *PurchaseOrderHandler) UpdatePurchaseOrder(c *fiber.Ctx) error {
	id, err := parseID(c, "id", "purchase order")
	if err != nil {
		return err
	}
	var req model.UpdatePurchaseOrderRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	detail, err := h.orders.Update(c.UserContext(), id, &req)
	if err != nil {
		return err
	}
	return c.JSON(detail)
}

// DELETE /api/purchase-orders/:id
func (h *PurchaseOrderHandler) DeletePurchaseOrder(c *fiber.Ctx) error {
	id, err := parseID(c, "id", "purchase order")
	if err != nil {
		return err
	}
	if err := h.orders.Delete(c.UserContext(), id); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// POST /api/purchase-orders/:id/items
func (h *PurchaseOrderHandler) AddLine(c *fiber.Ctx) error {
	id, err := parseID(c, "id", "purchase order")
	if err != nil {
		return err
	}
	var req model.PurchaseOrderItemRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	line, err := h.orders.AddLine(c.UserContext(), id, &req)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(line)
}

// PUT /api/purchase-orders/:id/items/:lineId
func (h *PurchaseOrderHandler) UpdateLine(c *fiber.Ctx) error {
	id, err := parseID(c, "id", "purchase order")
	if err != nil {
		return err
	}
	lineID, err := parseID(c, "lineId", "purchase order line")
	if err != nil {
		return err
	}
	var req model.UpdatePurchaseOrderItemRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	line, err := h.orders.UpdateLine(c.UserContext(), id, lineID, &req)
	if err != nil {
		return err
	}
	return c.JSON(line)
}

// DELETE /api/purchase-orders/:id/items/:lineId
func (h *PurchaseOrderHandler) DeleteLine(c *fiber.Ctx) error {
	id, err := parseID(c, "id", "purchase order")
	if err != nil {
		return err
	}
	lineID, err := parseID(c, "lineId", "purchase order line")
	if err != nil {
		return err
	}
	if err := h.orders.DeleteLine(c.UserContext(), id, lineID); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// GET /api/purchase-orders/:id/pdf
func (h *PurchaseOrderHandler) DownloadPDF(c *fiber.Ctx) error {
	id, err := parseID(c, "id", "purchase order")
	if err != nil {
		return err
	}
	pdf, err := h.documents.RenderPDF(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.Download(pdf.Path, pdf.FileName)
}

type sendEmailRequest struct {
	To string `json:"to"`
}

// POST /api/purchase-orders/:id/email
// Without a body the order's vendor email is used.
func (h *PurchaseOrderHandler) SendEmail(c *fiber.Ctx) error {
	id, err := parseID(c, "id", "purchase order")
	if err != nil {
		return err
	}
	var req sendEmailRequest
	if len(c.Body()) > 0 {
		if err := parseBody(c, &req); err != nil {
			return err
		}
	}
	order, err := h.documents.SendEmail(c.UserContext(), id, req.To)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Purchase order email sent", "order": order})
}
