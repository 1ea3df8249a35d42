package http

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"

	invoicing "invoicing-cloud/internal/invoicing/domain"
)

const (
	contentTypePDF  = "application/pdf"
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// Issuer is the sender block printed on an invoice.
type Issuer struct {
	Name          string
	BusinessName  string
	Address       string
	AccountName   string
	AccountNumber string
	BankName      string
	PayPalID      string
}

func (i Issuer) empty() bool {
	return i == Issuer{}
}

// BuildInvoicePDF renders a single invoice with its items and payments.
func BuildInvoicePDF(inv *invoicing.Invoice, issuer Issuer, currency string) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetFont("Arial", "B", 16)
	pdf.AddPage()

	pdf.Cell(0, 10, "INVOICE")
	pdf.Ln(12)

	pdf.SetFont("Arial", "", 10)
	if !issuer.empty() {
		for _, line := range []string{issuer.BusinessName, issuer.Name, issuer.Address} {
			if strings.TrimSpace(line) == "" {
				continue
			}
			pdf.Cell(0, 5, line)
			pdf.Ln(5)
		}
		pdf.Ln(3)
	}

	pdf.Cell(0, 6, fmt.Sprintf("Invoice: %s", inv.ID()))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Issued: %s", inv.CreatedAt().Format("2006-01-02")))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Due: %s", inv.DueDate()))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Status: %s", inv.Status()))
	pdf.Ln(8)

	pdf.SetFont("Arial", "B", 10)
	pdf.Cell(0, 6, "Bill To")
	pdf.Ln(5)
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, inv.ClientName())
	pdf.Ln(5)
	pdf.Cell(0, 6, inv.ClientEmail())
	pdf.Ln(5)
	pdf.MultiCell(0, 5, inv.BillingAddress(), "", "L", false)
	pdf.Ln(4)

	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(80, 6, "Item", "1", 0, "C", false, 0, "")
	pdf.CellFormat(25, 6, "Qty", "1", 0, "C", false, 0, "")
	pdf.CellFormat(40, 6, "Unit Price", "1", 0, "C", false, 0, "")
	pdf.CellFormat(40, 6, "Subtotal", "1", 0, "C", false, 0, "")
	pdf.Ln(-1)
	pdf.SetFont("Arial", "", 10)
	for _, item := range inv.Items() {
		pdf.CellFormat(80, 6, item.Title, "1", 0, "L", false, 0, "")
		pdf.CellFormat(25, 6, fmt.Sprintf("%d", item.Quantity), "1", 0, "R", false, 0, "")
		pdf.CellFormat(40, 6, invoicing.FormatMoney(item.UnitPrice), "1", 0, "R", false, 0, "")
		pdf.CellFormat(40, 6, invoicing.FormatMoney(item.Subtotal()), "1", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}
	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(145, 6, fmt.Sprintf("Total (%s)", currency), "1", 0, "R", false, 0, "")
	pdf.CellFormat(40, 6, invoicing.FormatMoney(inv.Total()), "1", 0, "R", false, 0, "")
	pdf.Ln(-1)
	pdf.SetFont("Arial", "", 10)

	if payments := inv.Payments(); len(payments) > 0 {
		pdf.Ln(4)
		pdf.SetFont("Arial", "B", 10)
		pdf.Cell(0, 6, "Payments")
		pdf.Ln(6)
		pdf.SetFont("Arial", "", 10)
		for _, p := range payments {
			pdf.CellFormat(40, 6, p.Date.Format("2006-01-02"), "1", 0, "L", false, 0, "")
			pdf.CellFormat(105, 6, p.Label, "1", 0, "L", false, 0, "")
			pdf.CellFormat(40, 6, invoicing.FormatMoney(p.Amount), "1", 0, "R", false, 0, "")
			pdf.Ln(-1)
		}
		pdf.CellFormat(145, 6, "Remaining", "1", 0, "R", false, 0, "")
		pdf.CellFormat(40, 6, invoicing.FormatMoney(inv.RemainingBalance()), "1", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}

	if extra := strings.TrimSpace(inv.ExtraInformation()); extra != "" {
		pdf.Ln(4)
		pdf.MultiCell(0, 5, extra, "", "L", false)
	}

	if issuer.AccountNumber != "" || issuer.PayPalID != "" {
		pdf.Ln(4)
		pdf.SetFont("Arial", "B", 10)
		pdf.Cell(0, 6, "Payment Details")
		pdf.Ln(6)
		pdf.SetFont("Arial", "", 10)
		if issuer.AccountNumber != "" {
			pdf.Cell(0, 5, fmt.Sprintf("%s, %s: %s", issuer.BankName, issuer.AccountName, issuer.AccountNumber))
			pdf.Ln(5)
		}
		if issuer.PayPalID != "" {
			pdf.Cell(0, 5, fmt.Sprintf("PayPal: %s", issuer.PayPalID))
			pdf.Ln(5)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// BuildInvoiceXLSX renders a single invoice as a summary and an items sheet.
func BuildInvoiceXLSX(inv *invoicing.Invoice, currency string) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()
	summarySheet := "summary"
	itemsSheet := "items"
	_ = f.SetSheetName("Sheet1", summarySheet)
	if _, err := f.NewSheet(itemsSheet); err != nil {
		return nil, err
	}

	rows := [][2]any{
		{"Invoice", inv.ID()},
		{"Client", inv.ClientName()},
		{"Email", inv.ClientEmail()},
		{"Billing Address", inv.BillingAddress()},
		{"Issued", inv.CreatedAt().Format(time.RFC3339)},
		{"Due", inv.DueDate().String()},
		{"Status", string(inv.Status())},
		{"Currency", currency},
		{"Total", inv.Total().InexactFloat64()},
		{"Paid", inv.PaidAmount().InexactFloat64()},
		{"Remaining", inv.RemainingBalance().InexactFloat64()},
	}
	for i, row := range rows {
		_ = f.SetCellValue(summarySheet, fmt.Sprintf("A%d", i+1), row[0])
		_ = f.SetCellValue(summarySheet, fmt.Sprintf("B%d", i+1), row[1])
	}

	_ = f.SetCellValue(itemsSheet, "A1", "Title")
	_ = f.SetCellValue(itemsSheet, "B1", "Quantity")
	_ = f.SetCellValue(itemsSheet, "C1", "Unit Price")
	_ = f.SetCellValue(itemsSheet, "D1", "Subtotal")
	for i, item := range inv.Items() {
		row := i + 2
		_ = f.SetCellValue(itemsSheet, fmt.Sprintf("A%d", row), item.Title)
		_ = f.SetCellValue(itemsSheet, fmt.Sprintf("B%d", row), item.Quantity)
		_ = f.SetCellValue(itemsSheet, fmt.Sprintf("C%d", row), item.UnitPrice.InexactFloat64())
		_ = f.SetCellValue(itemsSheet, fmt.Sprintf("D%d", row), item.Subtotal().InexactFloat64())
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// BuildInvoiceListXLSX renders one row per invoice.
func BuildInvoiceListXLSX(invoices []*invoicing.Invoice) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()
	sheet := "invoices"
	_ = f.SetSheetName("Sheet1", sheet)

	headers := []string{"ID", "Created", "Client", "Email", "Due", "Status", "Total", "Paid", "Remaining"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}
	for i, inv := range invoices {
		row := i + 2
		values := []any{
			inv.ID(),
			inv.CreatedAt().Format(time.RFC3339),
			inv.ClientName(),
			inv.ClientEmail(),
			inv.DueDate().String(),
			string(inv.Status()),
			inv.Total().InexactFloat64(),
			inv.PaidAmount().InexactFloat64(),
			inv.RemainingBalance().InexactFloat64(),
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			_ = f.SetCellValue(sheet, cell, v)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
