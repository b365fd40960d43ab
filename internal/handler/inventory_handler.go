package handler

import (
	"go-inventory-po/internal/model"
	"go-inventory-po/internal/service"
	pkgerrors "go-inventory-po/pkg/errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type InventoryHandler struct {
	service service.InventoryService
}

func NewInventoryHandler(s service.InventoryService) *InventoryHandler {
	return &InventoryHandler{service: s}
}

// GET /api/items
func (h *InventoryHandler) GetItems(c *fiber.Ctx) error {
	items, err := h.service.ListItems(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(items)
}

// GET /api/items/low-stock
func (h *InventoryHandler) GetLowStockItems(c *fiber.Ctx) error {
	items, err := h.service.ListLowStock(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(items)
}

// GET /api/items/category/:categoryId
func (h *InventoryHandler) GetItemsByCategory(c *fiber.Ctx) error {
	categoryID, err := parseID(c, "categoryId", "category")
	if err != nil {
		return err
	}
	items, err := h.service.ListByCategory(c.UserContext(), categoryID)
	if err != nil {
		return err
	}
	return c.JSON(items)
}

// GET /api/items/:id
func (h *InventoryHandler) GetItem(c *fiber.Ctx) error {
	id, err := parseID(c, "id", "item")
	if err != nil {
		return err
	}
	item, err := h.service.GetItem(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(item)
}

// POST /api/items
// A positive currentQuantity is booked as the opening inbound transaction.
func (h *InventoryHandler) CreateItem(c *fiber.Ctx) error {
	var req model.CreateItemRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	item, err := h.service.CreateItem(c.UserContext(), &req)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(item)
}

// PUT /api/items/:id
func (h *InventoryHandler) UpdateItem(c *fiber.Ctx) error {
	id, err := parseID(c, "id", "item")
	if err != nil {
		return err
	}
	var req model.UpdateItemRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	item, err := h.service.UpdateItem(c.UserContext(), id, &req)
	if err != nil {
		return err
	}
	return c.JSON(item)
}

// DELETE /api/items/:id
func (h *InventoryHandler) DeleteItem(c *fiber.Ctx) error {
	id, err := parseID(c, "id", "item")
	if err != nil {
		return err
	}
	if err := h.service.DeleteItem(c.UserContext(), id); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// GET /api/items/:id/ledger
func (h *InventoryHandler) VerifyLedger(c *fiber.Ctx) error {
	id, err := parseID(c, "id", "item")
	if err != nil {
		return err
	}
	check, err := h.service.VerifyLedger(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(check)
}

// GET /api/transactions?type=&itemId=&from=&to=
func (h *InventoryHandler) GetTransactions(c *fiber.Ctx) error {
	filter := model.TransactionFilter{Type: model.TransactionType(c.Query("type"))}
	if raw := c.Query("itemId"); raw != "" {
		itemID, err := uuid.Parse(raw)
		if err != nil {
			return pkgerrors.New(pkgerrors.CodeValidation, "Invalid item ID")
		}
		filter.ItemID = &itemID
	}

	var err error
	if filter.From, err = parseTimeQuery(c, "from", false); err != nil {
		return err
	}
	if filter.To, err = parseTimeQuery(c, "to", true); err != nil {
		return err
	}

	transactions, err := h.service.ListTransactions(c.UserContext(), filter)
	if err != nil {
		return err
	}
	return c.JSON(transactions)
}

// GET /api/transactions/item/:itemId
func (h *InventoryHandler) GetItemTransactions(c *fiber.Ctx) error {
	itemID, err := parseID(c, "itemId", "item")
	if err != nil {
		return err
	}
	transactions, err := h.service.ListTransactionsByItem(c.UserContext(), itemID)
	if err != nil {
		return err
	}
	return c.JSON(transactions)
}

// POST /api/transactions
// Outbound quantities larger than the stock on hand are refused with 409.
func (h *InventoryHandler) CreateTransaction(c *fiber.Ctx) error {
	var req model.CreateTransactionRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	txn, err := h.service.RecordTransaction(c.UserContext(), &req)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(txn)
}
