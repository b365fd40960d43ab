// Package document renders purchase orders as PDF.
package document

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"go-inventory-po/internal/model"

	"github.com/go-pdf/fpdf"
	"github.com/shopspring/decimal"
)

const (
	pageMargin = 15.0
	rowHeight  = 8.0
	fontFamily = "doc"
)

type column struct {
	title string
	width float64
	align string
}

var lineColumns = []column{
	{"No.", 10, "C"},
	{"Item", 45, "L"},
	{"Specification", 45, "L"},
	{"Unit", 15, "C"},
	{"Qty", 17, "R"},
	{"Unit price", 23, "R"},
	{"Amount", 25, "R"},
}

type Renderer struct {
	company  string
	fontPath string
}

// NewRenderer returns a renderer. fontPath points at a TTF with the glyphs the
// documents need (Hangul, for instance); without it the core Helvetica font is used.
func NewRenderer(company, fontPath string) *Renderer {
	return &Renderer{company: company, fontPath: fontPath}
}

func (r *Renderer) Company() string {
	return r.company
}

// Render writes the order and its lines as an A4 PDF.
func (r *Renderer) Render(w io.Writer, order *model.PurchaseOrder, lines []model.PurchaseOrderItem, issued time.Time) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(pageMargin, pageMargin, pageMargin)
	pdf.SetAutoPageBreak(false, pageMargin)
	pdf.SetTitle(order.ProjectName+" purchase order", true)
	pdf.SetAuthor(r.company, true)
	pdf.SetCreator(r.company, true)

	family := "Helvetica"
	text := func(s string) string { return s }
	if r.fontPath != "" {
		pdf.AddUTF8Font(fontFamily, "", r.fontPath)
		pdf.AddUTF8Font(fontFamily, "B", r.fontPath)
		family = fontFamily
	} else {
		text = pdf.UnicodeTranslatorFromDescriptor("")
	}

	pageWidth, pageHeight := pdf.GetPageSize()
	contentWidth := pageWidth - 2*pageMargin

	pdf.AddPage()

	pdf.SetFont(family, "B", 18)
	pdf.CellFormat(contentWidth, 10, text(r.company), "", 1, "C", false, 0, "")
	pdf.SetFont(family, "", 12)
	pdf.CellFormat(contentWidth, 7, text("PURCHASE ORDER"), "", 1, "C", false, 0, "")
	pdf.Ln(3)
	pdf.Line(pageMargin, pdf.GetY(), pageWidth-pageMargin, pdf.GetY())
	pdf.Ln(4)

	half := contentWidth / 2
	info := [][2][2]string{
		{{"Order No.", order.OrderNumber}, {"Order date", order.OrderDate.Format("2006-01-02")}},
		{{"Project", order.ProjectName}, {"Manager", order.Manager}},
		{{"Vendor", order.VendorName}, {"Contact", deref(order.ContactNumber)}},
	}
	if order.ExpectedDeliveryDate != nil {
		info = append(info, [2][2]string{
			{"Status", string(order.Status)},
			{"Delivery", order.ExpectedDeliveryDate.Format("2006-01-02")},
		})
	}
	for _, row := range info {
		for _, cell := range row {
			pdf.SetFont(family, "B", 10)
			pdf.CellFormat(25, rowHeight, text(cell[0]), "LTB", 0, "L", false, 0, "")
			pdf.SetFont(family, "", 10)
			pdf.CellFormat(half-25, rowHeight, text(": "+cell[1]), "RTB", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}
	pdf.SetFont(family, "B", 10)
	pdf.CellFormat(25, rowHeight, text("Notes"), "LTB", 0, "L", false, 0, "")
	pdf.SetFont(family, "", 10)
	pdf.CellFormat(contentWidth-25, rowHeight, text(": "+deref(order.Notes)), "RTB", 1, "L", false, 0, "")
	pdf.Ln(6)

	header := func() {
		pdf.SetFillColor(241, 243, 245)
		pdf.SetFont(family, "B", 10)
		for _, col := range lineColumns {
			pdf.CellFormat(col.width, rowHeight, text(col.title), "1", 0, "C", true, 0, "")
		}
		pdf.Ln(-1)
	}
	header()

	total := decimal.Zero
	pdf.SetFont(family, "", 9)
	for i, line := range lines {
		if pdf.GetY()+rowHeight > pageHeight-pageMargin {
			pdf.AddPage()
			header()
			pdf.SetFont(family, "", 9)
		}
		unitPrice := decimal.Zero
		if line.UnitPrice != nil {
			unitPrice = *line.UnitPrice
		}
		total = total.Add(line.Amount)
		values := []string{
			strconv.Itoa(i + 1),
			line.ItemName,
			deref(line.Specification),
			deref(line.UnitType),
			strconv.Itoa(line.Quantity),
			FormatAmount(unitPrice),
			FormatAmount(line.Amount),
		}
		for j, col := range lineColumns {
			pdf.CellFormat(col.width, rowHeight, text(fit(values[j], col.width)), "1", 0, col.align, false, 0, "")
		}
		pdf.Ln(-1)
	}

	if pdf.GetY()+rowHeight*5 > pageHeight-pageMargin {
		pdf.AddPage()
	}
	amountWidth := lineColumns[len(lineColumns)-1].width
	pdf.SetFillColor(241, 243, 245)
	pdf.SetFont(family, "B", 10)
	pdf.CellFormat(contentWidth-amountWidth, rowHeight, text("Total"), "1", 0, "L", true, 0, "")
	pdf.CellFormat(amountWidth, rowHeight, FormatAmount(total), "1", 1, "R", true, 0, "")

	pdf.Ln(12)
	pdf.CellFormat(contentWidth, 6, text("We place the order as stated above."), "", 1, "C", false, 0, "")
	pdf.Ln(2)
	pdf.SetFont(family, "", 10)
	pdf.CellFormat(contentWidth, 6, issued.Format("2006-01-02"), "", 1, "C", false, 0, "")
	pdf.CellFormat(contentWidth, 6, text(r.company+"  (seal)"), "", 1, "C", false, 0, "")

	if err := pdf.Error(); err != nil {
		return fmt.Errorf("render purchase order %s: %w", order.OrderNumber, err)
	}
	return pdf.Output(w)
}

// FormatAmount renders money with thousands separators and drops a zero fraction.
func FormatAmount(d decimal.Decimal) string {
	s := d.StringFixed(2)
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	intPart, frac, _ := strings.Cut(s, ".")

	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	if frac != "00" {
		return sign + b.String() + "." + frac
	}
	return sign + b.String()
}

// fit truncates text that would overflow a cell of the given width in mm.
func fit(s string, width float64) string {
	max := int(width / 1.9)
	runes := []rune(s)
	if len(runes) <= max || max < 2 {
		return s
	}
	return string(runes[:max-1]) + "~"
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
