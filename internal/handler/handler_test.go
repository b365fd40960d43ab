package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"go-inventory-po/internal/document"
	"go-inventory-po/internal/handler"
	"go-inventory-po/internal/mailer"
	"go-inventory-po/internal/model"
	"go-inventory-po/internal/repository"
	"go-inventory-po/internal/service"
	"go-inventory-po/internal/settings"
	"go-inventory-po/internal/testutil"
	"go-inventory-po/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

type nopSender struct{ sent int }

func (s *nopSender) Send(context.Context, mailer.Config, mailer.Message) error {
	s.sent++
	return nil
}

type testApp struct {
	app    *fiber.App
	sender *nopSender
}

func newTestApp(t *testing.T, importLimit int64) *testApp {
	t.Helper()
	db := testutil.OpenDB(t)
	log := logger.Nop()
	dir := t.TempDir()

	categoryRepo := repository.NewCategoryRepo(db)
	itemRepo := repository.NewItemRepo(db)
	txRepo := repository.NewTransactionRepo(db)
	poRepo := repository.NewPurchaseOrderRepo(db)
	vendorRepo := repository.NewVendorRepo(db)

	provider := settings.NewProvider(filepath.Join(dir, "settings.json"), settings.EmailSettings{
		Host: "smtp.example.com", Port: 465, User: "po@example.com", Pass: "secret",
	})
	require.NoError(t, provider.Reload())
	sender := &nopSender{}

	inventory := service.NewInventoryService(db, itemRepo, txRepo, categoryRepo, poRepo, log, nil)
	documents := service.NewDocumentService(poRepo, document.NewRenderer("Hanbit Electric", ""), sender, provider, dir, log, nil)

	app := fiber.New(fiber.Config{ErrorHandler: handler.ErrorHandler(log)})
	handler.Register(app, &handler.Handlers{
		Health:        handler.NewHealthHandler(db),
		Category:      handler.NewCategoryHandler(service.NewCategoryService(categoryRepo, log)),
		Inventory:     handler.NewInventoryHandler(inventory),
		Dashboard:     handler.NewDashboardHandler(service.NewDashboardService(repository.NewDashboardRepo(db), txRepo)),
		Excel:         handler.NewExcelHandler(service.NewExcelService(inventory, itemRepo, txRepo, categoryRepo, log, nil), importLimit),
		PurchaseOrder: handler.NewPurchaseOrderHandler(service.NewPurchaseOrderService(db, poRepo, vendorRepo, itemRepo, log), documents),
		Vendor:        handler.NewVendorHandler(service.NewVendorService(db, vendorRepo, poRepo, log)),
		Settings:      handler.NewSettingsHandler(provider, documents),
	})
	return &testApp{app: app, sender: sender}
}

func (a *testApp) do(t *testing.T, method, path string, body interface{}) (*http.Response, []byte) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	resp, err := a.app.Test(req, -1)
	require.NoError(t, err)
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, data
}

func (a *testApp) decode(t *testing.T, method, path string, body interface{}, wantStatus int, out interface{}) {
	t.Helper()
	resp, data := a.do(t, method, path, body)
	require.Equal(t, wantStatus, resp.StatusCode, string(data))
	if out != nil {
		require.NoError(t, json.Unmarshal(data, out))
	}
}

type errorBody struct {
	Message string          `json:"message"`
	Code    string          `json:"code"`
	Details json.RawMessage `json:"details"`
}

func TestHealth(t *testing.T) {
	a := newTestApp(t, 0)
	var body map[string]string
	a.decode(t, "GET", "/health", nil, 200, &body)
	assert.Equal(t, "ok", body["status"])
}

func TestItemLifecycleAndLedger(t *testing.T) {
	a := newTestApp(t, 0)

	var category model.Category
	a.decode(t, "POST", "/api/categories", map[string]any{"name": "Cable"}, 201, &category)

	var item model.InventoryItem
	a.decode(t, "POST", "/api/items", map[string]any{
		"name": "UTP Cat.6", "categoryId": category.ID, "currentQuantity": 20, "minimumQuantity": 10,
	}, 201, &item)
	assert.Equal(t, 20, item.CurrentQuantity)

	var txns []model.Transaction
	a.decode(t, "GET", "/api/transactions/item/"+item.ID.String(), nil, 200, &txns)
	require.Len(t, txns, 1)
	assert.Equal(t, model.TxIn, txns[0].Type)

	a.decode(t, "PUT", "/api/items/"+item.ID.String(), map[string]any{"currentQuantity": 15}, 200, &item)
	assert.Equal(t, 15, item.CurrentQuantity)

	var outTxns []model.Transaction
	a.decode(t, "GET", "/api/transactions?type=out&itemId="+item.ID.String(), nil, 200, &outTxns)
	require.Len(t, outTxns, 1)
	assert.Equal(t, 5, outTxns[0].Quantity)

	var failure errorBody
	a.decode(t, "POST", "/api/transactions", map[string]any{"itemId": item.ID, "type": "out", "quantity": 50}, 409, &failure)
	assert.Equal(t, "CONFLICT", failure.Code)
	assert.Contains(t, failure.Message, "insufficient stock")

	var check model.LedgerCheck
	a.decode(t, "GET", "/api/items/"+item.ID.String()+"/ledger", nil, 200, &check)
	assert.True(t, check.Consistent)

	var low []model.InventoryItem
	a.decode(t, "GET", "/api/items/low-stock", nil, 200, &low)
	assert.Empty(t, low)

	a.decode(t, "DELETE", "/api/categories/"+category.ID.String(), nil, 409, &failure)
	a.decode(t, "DELETE", "/api/items/"+item.ID.String(), nil, 204, nil)
	a.decode(t, "GET", "/api/items/"+item.ID.String(), nil, 404, &failure)
	assert.Equal(t, "NOT_FOUND", failure.Code)
	a.decode(t, "DELETE", "/api/categories/"+category.ID.String(), nil, 204, nil)
}

func TestValidationErrors(t *testing.T) {
	a := newTestApp(t, 0)

	var failure errorBody
	a.decode(t, "GET", "/api/items/not-a-uuid", nil, 400, &failure)
	assert.Equal(t, "VALIDATION_ERROR", failure.Code)

	a.decode(t, "POST", "/api/items", map[string]any{"currentQuantity": -1}, 400, &failure)
	assert.Contains(t, failure.Message, "'name' is required")
	assert.NotEmpty(t, failure.Details)

	a.decode(t, "GET", "/api/transactions?from=yesterday", nil, 400, &failure)

	resp, _ := a.do(t, "GET", "/api/nowhere", nil)
	assert.Equal(t, 404, resp.StatusCode)
}

func TestPurchaseOrderFlow(t *testing.T) {
	a := newTestApp(t, 0)

	var vendor model.Vendor
	a.decode(t, "POST", "/api/vendors", map[string]any{"name": "Acme", "email": "sales@acme.test"}, 201, &vendor)

	var detail model.PurchaseOrderDetail
	a.decode(t, "POST", "/api/purchase-orders", map[string]any{
		"order": map[string]any{"projectName": "Site A", "manager": "Kim", "vendorId": vendor.ID},
		"items": []map[string]any{
			{"itemName": "Conduit", "quantity": 3, "unitPrice": "1000"},
			{"itemName": "Clamp", "quantity": 2, "unitPrice": 500},
		},
	}, 201, &detail)
	assert.Equal(t, "4000", detail.Order.TotalAmount.String())
	assert.Equal(t, "sales@acme.test", *detail.Order.VendorEmail)
	orderPath := "/api/purchase-orders/" + detail.Order.ID.String()

	a.decode(t, "DELETE", orderPath+"/items/"+detail.Items[1].ID.String(), nil, 204, nil)
	a.decode(t, "GET", orderPath, nil, 200, &detail)
	assert.Equal(t, "3000", detail.Order.TotalAmount.String())

	var failure errorBody
	a.decode(t, "PUT", orderPath, map[string]any{"order": map[string]any{"status": "received"}}, 422, &failure)
	assert.Equal(t, "STATE_CONFLICT", failure.Code)

	a.decode(t, "DELETE", "/api/vendors/"+vendor.ID.String(), nil, 409, &failure)

	resp, data := a.do(t, "GET", orderPath+"/pdf", nil)
	require.Equal(t, 200, resp.StatusCode)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")))
	assert.Contains(t, resp.Header.Get(fiber.HeaderContentDisposition), "attachment")

	var sent struct {
		Order model.PurchaseOrder `json:"order"`
	}
	a.decode(t, "POST", orderPath+"/email", nil, 200, &sent)
	assert.True(t, sent.Order.EmailSent)
	assert.Equal(t, 1, a.sender.sent)

	var orders []model.PurchaseOrder
	a.decode(t, "GET", "/api/purchase-orders?status=draft", nil, 200, &orders)
	assert.Len(t, orders, 1)
}

func TestExcelImportAndExport(t *testing.T) {
	a := newTestApp(t, 1<<20)

	var category model.Category
	a.decode(t, "POST", "/api/categories", map[string]any{"name": "Cable"}, 201, &category)

	x := excelize.NewFile()
	rows := [][]interface{}{
		{"name", "categoryId", "currentQuantity", "minimumQuantity"},
		{"Coax", category.ID.String(), 10, 2},
		{"UTP", "Cable", 5, ""},
	}
	for i, row := range rows {
		values := row
		require.NoError(t, x.SetSheetRow("Sheet1", fmt.Sprintf("A%d", i+1), &values))
	}
	workbook, err := x.WriteToBuffer()
	require.NoError(t, err)
	require.NoError(t, x.Close())

	var result struct {
		Message string             `json:"message"`
		Details model.ImportReport `json:"details"`
	}
	resp, data := a.upload(t, "/api/excel/import", workbook.Bytes())
	require.Equal(t, 200, resp.StatusCode, string(data))
	require.NoError(t, json.Unmarshal(data, &result))
	assert.Equal(t, 1, result.Details.Success)
	assert.Equal(t, 1, result.Details.Failed)
	assert.Contains(t, result.Details.Errors[0], "minimumQuantity")

	resp, _ = a.upload(t, "/api/excel/import", make([]byte, 2<<20))
	assert.Equal(t, 400, resp.StatusCode)

	resp, data = a.do(t, "GET", "/api/excel/export?includeTransactions=true", nil)
	require.Equal(t, 200, resp.StatusCode)
	exported, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer exported.Close()
	assert.Equal(t, []string{"Inventory", "Transactions"}, exported.GetSheetList())

	resp, _ = a.do(t, "GET", "/api/excel/template", nil)
	assert.Equal(t, 200, resp.StatusCode)
}

func TestOversizedBodyIsValidationError(t *testing.T) {
	app := fiber.New(fiber.Config{BodyLimit: 1 << 10, ErrorHandler: handler.ErrorHandler(logger.Nop())})
	app.Post("/api/excel/import", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })

	req := httptest.NewRequest("POST", "/api/excel/import", bytes.NewReader(make([]byte, 4<<10)))
	req.Header.Set(fiber.HeaderContentType, "application/octet-stream")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, 400, resp.StatusCode)

	var failure errorBody
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&failure))
	assert.Equal(t, "VALIDATION_ERROR", failure.Code)
}

func TestStockMovementPeriod(t *testing.T) {
	a := newTestApp(t, 0)

	var movement struct {
		Period int                   `json:"period"`
		Data   []model.StockMovement `json:"data"`
	}
	a.decode(t, "GET", "/api/dashboard/stock-movement", nil, 200, &movement)
	assert.Equal(t, 7, movement.Period)
	assert.Len(t, movement.Data, 7)

	a.decode(t, "GET", "/api/dashboard/stock-movement?days=1000", nil, 200, &movement)
	assert.Equal(t, 366, movement.Period)
	assert.Len(t, movement.Data, 366)
}

func TestSettingsEndpoints(t *testing.T) {
	a := newTestApp(t, 0)

	var email settings.EmailSettings
	a.decode(t, "GET", "/api/settings/email", nil, 200, &email)
	assert.Equal(t, "********", email.Pass)

	a.decode(t, "PUT", "/api/settings/email", map[string]any{
		"user": "new@example.com", "pass": "********", "host": "smtp.example.com", "port": 587,
	}, 200, &email)
	assert.Equal(t, "new@example.com", email.User)
	assert.Equal(t, 587, email.Port)

	var failure errorBody
	a.decode(t, "PUT", "/api/settings/email", map[string]any{"user": "nope", "host": "h", "port": 1}, 400, &failure)

	var status service.EmailStatus
	a.decode(t, "GET", "/api/email/config", nil, 200, &status)
	assert.True(t, status.Configured)
	assert.Equal(t, "new@example.com", status.User)

	a.decode(t, "POST", "/api/email/test", map[string]any{"to": "ops@example.com"}, 200, nil)
	assert.Equal(t, 1, a.sender.sent)

	a.decode(t, "POST", "/api/settings/reload", nil, 200, &email)
	assert.Equal(t, "new@example.com", email.User)

	var company map[string]string
	a.decode(t, "GET", "/api/company", nil, 200, &company)
	assert.Equal(t, "Hanbit Electric", company["name"])

	var stats model.DashboardStats
	a.decode(t, "GET", "/api/dashboard", nil, 200, &stats)
	assert.Zero(t, stats.TotalItems)
}

func (a *testApp) upload(t *testing.T, path string, content []byte) (*http.Response, []byte) {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("file", "items.xlsx")
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest("POST", path, &body)
	req.Header.Set(fiber.HeaderContentType, w.FormDataContentType())
	resp, err := a.app.Test(req, -1)
	require.NoError(t, err)
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, data
}
