package infra

// pdf.go renders receipt PDFs with go-pdf/fpdf on narrow thermal-style
// paper: store header, document number and date, customer, item table, total
// and either the payment method (orders) or the due date (conditionals).

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/shopspring/decimal"
)

// ReceiptLine is one row of the item table.
type ReceiptLine struct {
	Name     string
	Variant  string // "M / Azul"; may be empty
	Quantity int
	Total    decimal.Decimal
}

// ReceiptDocument is everything printed on a receipt, already in display
// form. FileName is relative to the storage directory.
type ReceiptDocument struct {
	FileName      string
	Title         string
	Number        string
	IssuedAt      time.Time
	CustomerName  string
	Lines         []ReceiptLine
	Total         decimal.Decimal
	PaymentMethod string     // orders only
	DueDate       *time.Time // conditionals only
	Footer        string
}

// GenerateReceiptPDF writes doc under storagePath (created if needed) and
// returns the absolute path of the file.
func GenerateReceiptPDF(doc ReceiptDocument, storeName, storagePath string) (string, error) {
	if err := os.MkdirAll(storagePath, 0o755); err != nil {
		return "", fmt.Errorf("pdf: create storage dir: %w", err)
	}
	filePath, err := filepath.Abs(filepath.Join(storagePath, doc.FileName))
	if err != nil {
		return "", fmt.Errorf("pdf: resolve path: %w", err)
	}

	// 80mm roll; height grows with the item count
	height := 110.0 + float64(len(doc.Lines))*5
	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           fpdf.SizeType{Wd: 80, Ht: height},
	})
	pdf.SetMargins(4, 4, 4)
	pdf.SetAutoPageBreak(false, 4)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 8

	// ── Header ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 13)
	pdf.CellFormat(contentW, 7, tr(storeName), "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 8)
	pdf.CellFormat(contentW, 5, tr(doc.Title), "", 1, "C", false, 0, "")
	pdf.Ln(2)

	pdf.SetFont("Helvetica", "B", 8)
	pdf.CellFormat(contentW, 5, tr("Nº "+doc.Number), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 7)
	pdf.CellFormat(contentW, 4, doc.IssuedAt.Format("02/01/2006  15:04"), "", 1, "L", false, 0, "")
	if doc.CustomerName != "" {
		pdf.CellFormat(contentW, 4, tr("Cliente: "+doc.CustomerName), "", 1, "L", false, 0, "")
	}
	pdf.Ln(2)
	pdf.Line(4, pdf.GetY(), pageW-4, pdf.GetY())
	pdf.Ln(2)

	// ── Items ────────────────────────────────────────────────────────────────
	col1 := contentW * 0.52
	col2 := contentW * 0.16
	col3 := contentW * 0.32

	pdf.SetFont("Helvetica", "B", 7)
	pdf.CellFormat(col1, 5, "Produto", "B", 0, "L", false, 0, "")
	pdf.CellFormat(col2, 5, "Qtd", "B", 0, "C", false, 0, "")
	pdf.CellFormat(col3, 5, "Total", "B", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 7)
	for _, l := range doc.Lines {
		name := l.Name
		if l.Variant != "" {
			name += " (" + l.Variant + ")"
		}
		pdf.CellFormat(col1, 5, tr(truncate(name, 26)), "", 0, "L", false, 0, "")
		pdf.CellFormat(col2, 5, fmt.Sprintf("x%d", l.Quantity), "", 0, "C", false, 0, "")
		pdf.CellFormat(col3, 5, "R$ "+l.Total.StringFixed(2), "", 1, "R", false, 0, "")
	}

	pdf.Ln(2)
	pdf.Line(4, pdf.GetY(), pageW-4, pdf.GetY())
	pdf.Ln(2)

	// ── Totals ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 9)
	pdf.CellFormat(col1+col2, 6, "TOTAL:", "", 0, "L", false, 0, "")
	pdf.CellFormat(col3, 6, "R$ "+doc.Total.StringFixed(2), "", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 7)
	if doc.PaymentMethod != "" {
		pdf.CellFormat(contentW, 4, tr("Pagamento: "+doc.PaymentMethod), "", 1, "L", false, 0, "")
	}
	if doc.DueDate != nil {
		pdf.CellFormat(contentW, 4, tr("Devolução até: "+doc.DueDate.Format("02/01/2006")), "", 1, "L", false, 0, "")
	}

	if doc.Footer != "" {
		pdf.Ln(3)
		pdf.SetFont("Helvetica", "I", 7)
		pdf.CellFormat(contentW, 4, tr(doc.Footer), "", 1, "C", false, 0, "")
	}

	if err := pdf.OutputFileAndClose(filePath); err != nil {
		return "", fmt.Errorf("pdf: write file: %w", err)
	}
	return filePath, nil
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-1]) + "…"
}
