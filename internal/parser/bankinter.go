package parser

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/ErmoGarcia/expense-toolkit/internal/domain/transaction"
)

const (
	bankinterDateLayout  = "02/01/2006"
	bankinterProbeMarker = "MOVIMIENTOS DE LA CUENTA"
	bankinterHeaderCell  = "Fecha contable"
)

// BankinterParser parses Bankinter current-account XLSX exports. The data
// block does not start at row 0: the parser scans for the "Fecha contable"
// header row first.
type BankinterParser struct {
	defaultCurrency string
}

// NewBankinterParser creates a Bankinter XLSX parser
func NewBankinterParser(defaultCurrency string) *BankinterParser {
	return &BankinterParser{defaultCurrency: defaultCurrency}
}

func (p *BankinterParser) Name() string     { return "bankinter" }
func (p *BankinterParser) BankName() string { return "Bankinter" }

// CanParse detects the format by opening the sheet and checking the account
// movement marker within the first rows. A legacy binary XLS or an HTML
// table under the same extension fails to open here and falls through to
// the next parsers.
func (p *BankinterParser) CanParse(path string) bool {
	if !hasExtension(path, ".xlsx", ".xls") {
		return false
	}

	rows, err := readSheetRows(path)
	if err != nil {
		return false
	}

	limit := len(rows)
	if limit > 10 {
		limit = 10
	}
	for _, row := range rows[:limit] {
		for _, c := range row {
			if strings.Contains(c, bankinterProbeMarker) {
				return true
			}
		}
	}
	return false
}

// Parse locates the header row, maps its columns, and reads every data row
// below it. Rows with unparseable dates or amounts are skipped.
func (p *BankinterParser) Parse(ctx context.Context, path string) ([]transaction.Canonical, error) {
	rows, err := readSheetRows(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open bankinter file: %w", err)
	}

	headerIdx := -1
	for i, row := range rows {
		for _, c := range row {
			if strings.Contains(c, bankinterHeaderCell) {
				headerIdx = i
				break
			}
		}
		if headerIdx >= 0 {
			break
		}
	}
	if headerIdx < 0 {
		return nil, ErrHeaderNotFound{Filename: baseName(path), Marker: bankinterHeaderCell}
	}

	dateCol, descCol, amountCol, currencyCol := -1, -1, -1, -1
	for i, c := range rows[headerIdx] {
		switch {
		case strings.Contains(c, bankinterHeaderCell):
			dateCol = i
		case strings.Contains(c, "Descripci"):
			descCol = i
		case strings.Contains(c, "Importe"):
			amountCol = i
		case strings.Contains(c, "Divisa"):
			currencyCol = i
		}
	}
	if dateCol < 0 || amountCol < 0 {
		return nil, ErrHeaderNotFound{Filename: baseName(path), Marker: "Importe"}
	}

	var txs []transaction.Canonical
	for _, row := range rows[headerIdx+1:] {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		dateStr := cellAt(row, dateCol)
		if dateStr == "" {
			continue
		}
		date, err := time.Parse(bankinterDateLayout, dateStr)
		if err != nil {
			continue
		}

		amount, err := ParseAmount(cellAt(row, amountCol))
		if err != nil {
			continue
		}

		currency := cellAt(row, currencyCol)
		if currency == "" {
			currency = p.defaultCurrency
		}

		description := cellAt(row, descCol)
		txs = append(txs, transaction.WithFingerprint(transaction.Canonical{
			Date:            transaction.TruncateToDay(date),
			Amount:          amount,
			Currency:        currency,
			RawMerchantName: description,
			RawDescription:  description,
			Source:          transaction.SourceFileImport,
		}))
	}

	return txs, nil
}

// readSheetRows loads the first sheet of an XLSX workbook as string rows
func readSheetRows(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}

	return f.GetRows(sheets[0])
}

// cellAt returns the trimmed cell at index i, or "" when the row is shorter
func cellAt(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}
