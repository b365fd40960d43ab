package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"go-inventory-po/internal/model"
	"go-inventory-po/internal/repository"
	pkgerrors "go-inventory-po/pkg/errors"
	"go-inventory-po/pkg/logger"
	"go-inventory-po/pkg/metrics"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
	"go.uber.org/multierr"
	"gorm.io/gorm"
)

const (
	inventorySheet    = "Inventory"
	transactionSheet  = "Transactions"
	templateSheet     = "Template"
	categoriesSheet   = "Categories"
	defaultSheet      = "Sheet1"
	excelDateLayout   = "2006-01-02"
	excelDateTimeForm = "2006-01-02 15:04"
)

// Import columns. The first four are required on every row.
var (
	requiredImportColumns = []string{"name", "categoryId", "currentQuantity", "minimumQuantity"}
	importColumns         = []string{"name", "categoryId", "specification", "unitType", "currentQuantity", "minimumQuantity", "location", "unitPrice", "notes"}
)

type ExcelService interface {
	Import(ctx context.Context, r io.Reader) (*model.ImportReport, error)
	Export(ctx context.Context, opts model.ExportOptions) ([]byte, error)
	Template(ctx context.Context) ([]byte, error)
}

type excelService struct {
	inventory    InventoryService
	itemRepo     repository.ItemRepository
	txRepo       repository.TransactionRepository
	categoryRepo repository.CategoryRepository
	log          *logger.Logger
	metrics      *metrics.Metrics
}

func NewExcelService(
	inventory InventoryService,
	itemRepo repository.ItemRepository,
	txRepo repository.TransactionRepository,
	categoryRepo repository.CategoryRepository,
	log *logger.Logger,
	m *metrics.Metrics,
) ExcelService {
	return &excelService{
		inventory:    inventory,
		itemRepo:     itemRepo,
		txRepo:       txRepo,
		categoryRepo: categoryRepo,
		log:          log,
		metrics:      m,
	}
}

// Import creates one item per data row of the first sheet. Rows fail
// independently; their problems are collected in the report.
func (s *excelService) Import(ctx context.Context, r io.Reader) (*model.ImportReport, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "the uploaded file is not a valid Excel workbook")
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "Excel file contains no data")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "failed to read the first sheet")
	}
	if len(rows) < 2 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "Excel file contains no data")
	}

	columns := map[string]int{}
	for i, title := range rows[0] {
		columns[strings.TrimSpace(title)] = i
	}

	report := &model.ImportReport{Errors: []string{}}
	categories := newCategoryResolver(s.categoryRepo)
	for i, row := range rows[1:] {
		if blankRow(row) {
			continue
		}
		report.Total++
		rowNumber := i + 2

		req, err := parseImportRow(ctx, row, columns, categories)
		if err == nil {
			_, err = s.inventory.CreateItem(ctx, req)
		}
		if err != nil {
			report.Failed++
			report.Errors = append(report.Errors, fmt.Sprintf("row %d: %s", rowNumber, rowErrorMessage(err)))
			continue
		}
		report.Success++
	}

	s.metrics.AddImportRows(report.Success, report.Failed)
	s.log.InfoFields(ctx, "excel import finished", map[string]any{
		"total":   report.Total,
		"success": report.Success,
		"failed":  report.Failed,
	})
	return report, nil
}

func (s *excelService) Export(ctx context.Context, opts model.ExportOptions) ([]byte, error) {
	var (
		items []model.InventoryItem
		err   error
	)
	if opts.CategoryID != nil {
		items, err = s.itemRepo.FindByCategory(ctx, *opts.CategoryID)
	} else {
		items, err = s.itemRepo.FindAll(ctx)
	}
	if err != nil {
		return nil, storeError(err, "failed to load items for export")
	}

	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName(defaultSheet, inventorySheet); err != nil {
		return nil, excelError(err)
	}

	headers := []string{"Code", "Name", "Category", "Specification", "Unit", "Current Quantity", "Minimum Quantity", "Location", "Unit Price", "Notes", "Created At", "Updated At"}
	var data [][]interface{}
	exported := make(map[uuid.UUID]bool, len(items))
	for _, item := range items {
		if opts.LowStockOnly && !item.IsLowStock() {
			continue
		}
		exported[item.ID] = true
		category := "Unknown"
		if item.Category != nil {
			category = item.Category.Name
		}
		data = append(data, []interface{}{
			item.Code,
			item.Name,
			category,
			deref(item.Specification),
			deref(item.UnitType),
			item.CurrentQuantity,
			item.MinimumQuantity,
			deref(item.Location),
			decimalCell(item.UnitPrice),
			deref(item.Notes),
			item.CreatedAt.Format(excelDateLayout),
			item.UpdatedAt.Format(excelDateLayout),
		})
	}
	if err := writeSheet(f, inventorySheet, headers, data); err != nil {
		return nil, excelError(err)
	}

	if opts.IncludeTransactions {
		txns, err := s.txRepo.FindAll(ctx, model.TransactionFilter{})
		if err != nil {
			return nil, storeError(err, "failed to load transactions for export")
		}
		filtered := opts.CategoryID != nil || opts.LowStockOnly

		txHeaders := []string{"Date", "Item Code", "Item Name", "Type", "Quantity", "Project", "Note"}
		var txData [][]interface{}
		for _, txn := range txns {
			if filtered && !exported[txn.ItemID] {
				continue
			}
			code, name := "", ""
			if txn.Item != nil {
				code, name = txn.Item.Code, txn.Item.Name
			}
			txData = append(txData, []interface{}{
				txn.CreatedAt.Format(excelDateTimeForm),
				code,
				name,
				string(txn.Type),
				txn.Quantity,
				deref(txn.Project),
				deref(txn.Note),
			})
		}
		if _, err := f.NewSheet(transactionSheet); err != nil {
			return nil, excelError(err)
		}
		if err := writeSheet(f, transactionSheet, txHeaders, txData); err != nil {
			return nil, excelError(err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, excelError(err)
	}
	return buf.Bytes(), nil
}

// Template returns a workbook with the import columns, one sample row and a
// sheet listing the category ids.
func (s *excelService) Template(ctx context.Context) ([]byte, error) {
	categories, err := s.categoryRepo.FindAll(ctx)
	if err != nil {
		return nil, storeError(err, "failed to load categories")
	}

	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName(defaultSheet, templateSheet); err != nil {
		return nil, excelError(err)
	}

	sampleCategory := "category id or name"
	if len(categories) > 0 {
		sampleCategory = categories[0].ID.String()
	}
	sample := [][]interface{}{{
		"UTP cable Cat.6", sampleCategory, "100m, grey", model.UnitEach, 20, 10, "A-15-3", 45000, "minimum order 10",
	}}
	if err := writeSheet(f, templateSheet, importColumns, sample); err != nil {
		return nil, excelError(err)
	}

	var categoryRows [][]interface{}
	for _, c := range categories {
		categoryRows = append(categoryRows, []interface{}{c.ID.String(), c.Name})
	}
	if _, err := f.NewSheet(categoriesSheet); err != nil {
		return nil, excelError(err)
	}
	if err := writeSheet(f, categoriesSheet, []string{"categoryId", "name"}, categoryRows); err != nil {
		return nil, excelError(err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, excelError(err)
	}
	return buf.Bytes(), nil
}

func writeSheet(f *excelize.File, sheet string, headers []string, data [][]interface{}) error {
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#D3D3D3"}, Pattern: 1},
	})
	if err != nil {
		return err
	}

	titles := make([]interface{}, len(headers))
	for i, h := range headers {
		titles[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &titles); err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(len(headers), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", last, headerStyle); err != nil {
		return err
	}

	for i, row := range data {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		values := row
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return err
		}
	}

	lastCol, _, err := excelize.SplitCellName(last)
	if err != nil {
		return err
	}
	return f.SetColWidth(sheet, "A", lastCol, 16)
}

func parseImportRow(ctx context.Context, row []string, columns map[string]int, categories *categoryResolver) (*model.CreateItemRequest, error) {
	cell := func(name string) string {
		i, ok := columns[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	var missing []string
	for _, name := range requiredImportColumns {
		if cell(name) == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required fields: %s", strings.Join(missing, ", "))
	}

	var errs error
	req := &model.CreateItemRequest{
		Name:          cell("name"),
		Specification: optional(cell("specification")),
		UnitType:      optional(cell("unitType")),
		Location:      optional(cell("location")),
		Notes:         optional(cell("notes")),
	}

	categoryID, err := categories.resolve(ctx, cell("categoryId"))
	errs = multierr.Append(errs, err)
	req.CategoryID = categoryID

	req.CurrentQuantity, err = parseQuantity("currentQuantity", cell("currentQuantity"))
	errs = multierr.Append(errs, err)
	req.MinimumQuantity, err = parseQuantity("minimumQuantity", cell("minimumQuantity"))
	errs = multierr.Append(errs, err)

	if raw := cell("unitPrice"); raw != "" {
		price, err := decimal.NewFromString(strings.ReplaceAll(raw, ",", ""))
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("unitPrice %q is not a number", raw))
		} else {
			req.UnitPrice = &price
		}
	}

	if errs != nil {
		return nil, errs
	}
	return req, nil
}

func parseQuantity(field, raw string) (int, error) {
	value, err := strconv.ParseFloat(strings.ReplaceAll(raw, ",", ""), 64)
	if err != nil || value < 0 || value != math.Trunc(value) || value > math.MaxInt32 {
		return 0, fmt.Errorf("%s %q must be a non-negative whole number", field, raw)
	}
	return int(value), nil
}

// rowErrorMessage flattens the problems of one row into a single line.
func rowErrorMessage(err error) string {
	var msgs []string
	for _, e := range multierr.Errors(err) {
		if typed := pkgerrors.As(e); typed != nil {
			msgs = append(msgs, typed.Message())
			continue
		}
		msgs = append(msgs, e.Error())
	}
	return strings.Join(msgs, "; ")
}

// categoryResolver accepts a category id or a category name and caches lookups.
type categoryResolver struct {
	repo  repository.CategoryRepository
	cache map[string]uuid.UUID
}

func newCategoryResolver(repo repository.CategoryRepository) *categoryResolver {
	return &categoryResolver{repo: repo, cache: map[string]uuid.UUID{}}
}

func (c *categoryResolver) resolve(ctx context.Context, value string) (uuid.UUID, error) {
	if id, ok := c.cache[value]; ok {
		return id, nil
	}

	var (
		category *model.Category
		err      error
	)
	if id, parseErr := uuid.Parse(value); parseErr == nil {
		category, err = c.repo.FindByID(ctx, id)
	} else {
		category, err = c.repo.FindByName(ctx, value)
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return uuid.Nil, fmt.Errorf("category %q not found", value)
	}
	if err != nil {
		return uuid.Nil, err
	}
	c.cache[value] = category.ID
	return category.ID, nil
}

func blankRow(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func decimalCell(d *decimal.Decimal) interface{} {
	if d == nil {
		return ""
	}
	f, _ := d.Float64()
	return f
}

func excelError(err error) error {
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to build Excel workbook")
}
