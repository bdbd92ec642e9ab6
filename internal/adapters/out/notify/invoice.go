package notify

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"html/template"
	"strings"

	"orderflow/internal/core/ports"

	"github.com/shopspring/decimal"
)

//go:embed templates/invoice.html
var invoiceTemplate string

// InvoiceMailer renders the customer invoice and hands it to an EmailSender.
type InvoiceMailer struct {
	sender   ports.EmailSender
	shopName string
	logoURL  string
	tmpl     *template.Template
}

func NewInvoiceMailer(sender ports.EmailSender, shopName, logoURL string) (*InvoiceMailer, error) {
	tmpl, err := template.New("invoice").Funcs(template.FuncMap{
		"money": func(d decimal.Decimal) string { return "£" + d.StringFixed(2) },
	}).Parse(invoiceTemplate)
	if err != nil {
		return nil, fmt.Errorf("parse invoice template: %w", err)
	}
	return &InvoiceMailer{sender: sender, shopName: shopName, logoURL: logoURL, tmpl: tmpl}, nil
}

type invoiceView struct {
	ports.Invoice
	ShopName    string
	LogoURL     string
	DisplayID   int64
	PlacedAtStr string
}

// Render produces the invoice HTML.
func (m *InvoiceMailer) Render(inv ports.Invoice) (string, error) {
	view := invoiceView{
		Invoice:     inv,
		ShopName:    m.shopName,
		LogoURL:     m.logoURL,
		DisplayID:   inv.OrderID,
		PlacedAtStr: inv.PlacedAt.Format("02 Jan 2006 15:04"),
	}
	if inv.LegacyOrderID > 0 {
		view.DisplayID = inv.LegacyOrderID
	}

	var buf bytes.Buffer
	if err := m.tmpl.Execute(&buf, view); err != nil {
		return "", fmt.Errorf("render invoice: %w", err)
	}
	return buf.String(), nil
}

// Subject is the e-mail subject for an invoice.
func (m *InvoiceMailer) Subject(inv ports.Invoice) string {
	id := inv.OrderID
	if inv.LegacyOrderID > 0 {
		id = inv.LegacyOrderID
	}
	return fmt.Sprintf("%s Order #%d - Invoice", m.shopName, id)
}

func (m *InvoiceMailer) SendInvoice(ctx context.Context, inv ports.Invoice) error {
	if strings.TrimSpace(inv.Email) == "" {
		return fmt.Errorf("invoice for order %d: customer e-mail is missing", inv.OrderID)
	}

	html, err := m.Render(inv)
	if err != nil {
		return err
	}

	return m.sender.SendEmail(ctx, ports.EmailMessage{
		To:      []string{inv.Email},
		Subject: m.Subject(inv),
		HTML:    html,
	})
}
