package handler

import "github.com/gofiber/fiber/v2"

type Handlers struct {
	Health        *HealthHandler
	Category      *CategoryHandler
	Inventory     *InventoryHandler
	Dashboard     *DashboardHandler
	Excel         *ExcelHandler
	PurchaseOrder *PurchaseOrderHandler
	Vendor        *VendorHandler
	Settings      *SettingsHandler
	// Metrics serves /metrics when set.
	Metrics fiber.Handler
}

func Register(app *fiber.App, h *Handlers) {
	app.Get("/health", h.Health.Health)
	if h.Metrics != nil {
		app.Get("/metrics", h.Metrics)
	}

	api := app.Group("/api")

	// Categories
	api.Get("/categories", h.Category.GetCategories)
	api.Get("/categories/:id", h.Category.GetCategory)
	api.Post("/categories", h.Category.CreateCategory)
	api.Put("/categories/:id", h.Category.UpdateCategory)
	api.Delete("/categories/:id", h.Category.DeleteCategory)

	// Items (static paths before /:id)
	api.Get("/items", h.Inventory.GetItems)
	api.Get("/items/low-stock", h.Inventory.GetLowStockItems)
	api.Get("/items/category/:categoryId", h.Inventory.GetItemsByCategory)
	api.Get("/items/:id", h.Inventory.GetItem)
	api.Get("/items/:id/ledger", h.Inventory.VerifyLedger)
	api.Post("/items", h.Inventory.CreateItem)
	api.Put("/items/:id", h.Inventory.UpdateItem)
	api.Delete("/items/:id", h.Inventory.DeleteItem)

	// Transactions
	api.Get("/transactions", h.Inventory.GetTransactions)
	api.Get("/transactions/item/:itemId", h.Inventory.GetItemTransactions)
	api.Post("/transactions", h.Inventory.CreateTransaction)

	// Dashboard
	api.Get("/dashboard", h.Dashboard.GetDashboardStats)
	api.Get("/dashboard/stock-movement", h.Dashboard.GetStockMovement)

	// Excel
	api.Post("/excel/import", h.Excel.Import)
	api.Get("/excel/export", h.Excel.Export)
	api.Get("/excel/template", h.Excel.Template)

	// Purchase orders
	api.Get("/purchase-orders", h.PurchaseOrder.GetPurchaseOrders)
	api.Get("/purchase-orders/:id", h.PurchaseOrder.GetPurchaseOrder)
	api.Post("/purchase-orders", h.PurchaseOrder.CreatePurchaseOrder)
	api.Put("/purchase-orders/:id", h.PurchaseOrder.UpdatePurchaseOrder)
	api.Delete("/purchase-orders/:id", h.PurchaseOrder.DeletePurchaseOrder)
	api.Post("/purchase-orders/:id/items", h.PurchaseOrder.AddLine)
	api.Put("/purchase-orders/:id/items/:lineId", h.PurchaseOrder.UpdateLine)
	api.Delete("/purchase-orders/:id/items/:lineId", h.PurchaseOrder.DeleteLine)
	api.Get("/purchase-orders/:id/pdf", h.PurchaseOrder.DownloadPDF)
	api.Post("/purchase-orders/:id/email", h.PurchaseOrder.SendEmail)

	// Vendors
	api.Get("/vendors", h.Vendor.GetVendors)
	api.Get("/vendors/:id", h.Vendor.GetVendor)
	api.Post("/vendors", h.Vendor.CreateVendor)
	api.Put("/vendors/:id", h.Vendor.UpdateVendor)
	api.Delete("/vendors/:id", h.Vendor.DeleteVendor)

	// Email and settings
	api.Get("/email/config", h.Settings.GetEmailConfig)
	api.Post("/email/test", h.Settings.SendTestEmail)
	api.Get("/settings/email", h.Settings.GetEmailSettings)
	api.Put("/settings/email", h.Settings.UpdateEmailSettings)
	api.Post("/settings/reload", h.Settings.ReloadSettings)
	api.Get("/company", h.Settings.GetCompany)
}
