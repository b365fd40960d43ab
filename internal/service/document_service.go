package service

import (
	"context"
	"fmt"
	"html"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go-inventory-po/internal/document"
	"go-inventory-po/internal/mailer"
	"go-inventory-po/internal/model"
	"go-inventory-po/internal/repository"
	"go-inventory-po/internal/settings"
	pkgerrors "go-inventory-po/pkg/errors"
	"go-inventory-po/pkg/logger"
	"go-inventory-po/pkg/metrics"

	"github.com/google/uuid"
)

const purchaseOrderDir = "purchase_orders"

type GeneratedPDF struct {
	Path     string
	FileName string
}

type EmailStatus struct {
	Configured bool   `json:"configured"`
	Host       string `json:"host"`
	Port       int    `json:"port"`
	User       string `json:"user"`
	Message    string `json:"message"`
}

// DocumentService renders purchase orders and mails them to vendors. Both steps
// are synchronous; the PDF is complete before the mail is built.
type DocumentService interface {
	RenderPDF(ctx context.Context, orderID uuid.UUID) (*GeneratedPDF, error)
	SendEmail(ctx context.Context, orderID uuid.UUID, to string) (*model.PurchaseOrder, error)
	EmailStatus() EmailStatus
	SendTestEmail(ctx context.Context, to string) error
	CompanyName() string
}

type documentService struct {
	repo      repository.PurchaseOrderRepository
	renderer  *document.Renderer
	sender    mailer.Sender
	settings  *settings.Provider
	uploadDir string
	log       *logger.Logger
	metrics   *metrics.Metrics
	now       func() time.Time
}

func NewDocumentService(
	repo repository.PurchaseOrderRepository,
	renderer *document.Renderer,
	sender mailer.Sender,
	provider *settings.Provider,
	uploadDir string,
	log *logger.Logger,
	m *metrics.Metrics,
) DocumentService {
	return &documentService{
		repo:      repo,
		renderer:  renderer,
		sender:    sender,
		settings:  provider,
		uploadDir: uploadDir,
		log:       log,
		metrics:   m,
		now:       time.Now,
	}
}

func (s *documentService) CompanyName() string {
	return s.renderer.Company()
}

func (s *documentService) RenderPDF(ctx context.Context, orderID uuid.UUID) (*GeneratedPDF, error) {
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		return nil, lookupError(err, "purchase order")
	}
	return s.render(ctx, order)
}

func (s *documentService) render(ctx context.Context, order *model.PurchaseOrder) (*GeneratedPDF, error) {
	dir := filepath.Join(s.uploadDir, purchaseOrderDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to generate PDF")
	}

	now := s.now()
	name := fmt.Sprintf("%s_PO_%s_%s.pdf", safeFileName(order.ProjectName), now.Format("20060102"), order.OrderNumber)
	path := filepath.Join(dir, name)

	file, err := os.Create(path)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to generate PDF")
	}
	renderErr := s.renderer.Render(file, order, order.Items, now)
	closeErr := file.Close()
	if renderErr != nil || closeErr != nil {
		_ = os.Remove(path)
		if renderErr == nil {
			renderErr = closeErr
		}
		s.log.ErrorFields(ctx, "pdf generation failed", renderErr, map[string]any{"order_id": order.ID})
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, renderErr, "failed to generate PDF")
	}

	if err := s.repo.Update(ctx, order.ID, map[string]interface{}{"pdf_path": path}); err != nil {
		return nil, storeError(err, "failed to record PDF path")
	}
	order.PDFPath = &path

	return &GeneratedPDF{
		Path:     path,
		FileName: fmt.Sprintf("%s_PO_%s.pdf", safeFileName(order.ProjectName), order.OrderNumber),
	}, nil
}

// SendEmail renders the order and mails it. The recipient defaults to the
// order's vendor email.
func (s *documentService) SendEmail(ctx context.Context, orderID uuid.UUID, to string) (*model.PurchaseOrder, error) {
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		return nil, lookupError(err, "purchase order")
	}

	to = strings.TrimSpace(to)
	if to == "" && order.VendorEmail != nil {
		to = strings.TrimSpace(*order.VendorEmail)
	}
	if to == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "a recipient email address is required")
	}

	cfg := s.settings.Email()
	if !cfg.Configured() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email is not configured; set the SMTP user and password first")
	}

	pdf, err := s.render(ctx, order)
	if err != nil {
		return nil, err
	}

	company := s.CompanyName()
	msg := mailer.Message{
		To:      to,
		Subject: fmt.Sprintf("[%s] Purchase order %s (%s)", company, order.OrderNumber, order.ProjectName),
		Text:    purchaseOrderText(company, order),
		HTML:    purchaseOrderHTML(company, order),
		Attachments: []mailer.Attachment{
			{Path: pdf.Path, Name: pdf.FileName},
		},
	}
	if err := s.sender.Send(ctx, s.mailerConfig(cfg), msg); err != nil {
		s.metrics.IncEmail("failed")
		s.log.ErrorFields(ctx, "purchase order email failed", err, map[string]any{"order_id": order.ID, "to": to})
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to send email")
	}
	s.metrics.IncEmail("sent")

	sentAt := s.now()
	if err := s.repo.Update(ctx, order.ID, map[string]interface{}{"email_sent": true, "email_sent_at": sentAt}); err != nil {
		return nil, storeError(err, "failed to record email status")
	}
	order.EmailSent = true
	order.EmailSentAt = &sentAt
	order.Items = nil

	s.log.InfoFields(ctx, "purchase order emailed", map[string]any{"order_id": order.ID, "to": to})
	return order, nil
}

func (s *documentService) EmailStatus() EmailStatus {
	cfg := s.settings.Email()
	status := EmailStatus{
		Configured: cfg.Configured(),
		Host:       cfg.Host,
		Port:       cfg.Port,
		User:       cfg.User,
		Message:    "email settings are valid",
	}
	if !status.Configured {
		status.Message = "email is not configured; set EMAIL_USER and EMAIL_PASS or save the settings"
	}
	return status
}

func (s *documentService) SendTestEmail(ctx context.Context, to string) error {
	cfg := s.settings.Email()
	if !cfg.Configured() {
		return pkgerrors.New(pkgerrors.CodeValidation, "email is not configured; set the SMTP user and password first")
	}
	to = strings.TrimSpace(to)
	if to == "" {
		to = cfg.User
	}

	company := s.CompanyName()
	msg := mailer.Message{
		To:      to,
		Subject: fmt.Sprintf("[%s] Test email", company),
		Text:    "This is a test message from the inventory system. Email delivery is working.",
	}
	if err := s.sender.Send(ctx, s.mailerConfig(cfg), msg); err != nil {
		s.metrics.IncEmail("failed")
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to send test email")
	}
	s.metrics.IncEmail("sent")
	return nil
}

func (s *documentService) mailerConfig(cfg settings.EmailSettings) mailer.Config {
	fromName := cfg.FromName
	if fromName == "" {
		fromName = s.CompanyName()
	}
	return mailer.Config{Host: cfg.Host, Port: cfg.Port, User: cfg.User, Pass: cfg.Pass, FromName: fromName}
}

func purchaseOrderText(company string, order *model.PurchaseOrder) string {
	return fmt.Sprintf(`Hello, this is %s.

Please find attached our purchase order for the %s site.
Order number: %s

We look forward to your reply.

Best regards,
%s materials team`, company, order.ProjectName, order.OrderNumber, company)
}

func purchaseOrderHTML(company string, order *model.PurchaseOrder) string {
	c, p, n := html.EscapeString(company), html.EscapeString(order.ProjectName), html.EscapeString(order.OrderNumber)
	return `<div style="font-family: sans-serif; max-width: 600px; margin: 0 auto;">` +
		`<div style="padding: 20px; background-color: #f8f9fa; border-bottom: 3px solid #0062FF;"><h2 style="margin: 0;">` + c + `</h2></div>` +
		`<div style="padding: 20px; border: 1px solid #e9ecef; border-top: none;">` +
		`<p>Hello, this is ` + c + `.</p>` +
		`<p>Please find attached our purchase order for the <strong>` + p + `</strong> site.</p>` +
		`<p>Order number: <strong>` + n + `</strong></p>` +
		`<p>We look forward to your reply.</p>` +
		`<p style="margin-top: 30px;">Best regards,<br>` + c + ` materials team</p>` +
		`</div></div>`
}

// safeFileName keeps a name usable as a single path element.
func safeFileName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "order"
	}
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|', 0:
			return '_'
		}
		return r
	}, name)
}
