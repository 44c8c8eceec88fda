package parser

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/extrame/xls"

	"github.com/ErmoGarcia/expense-toolkit/internal/domain/transaction"
)

const (
	cardDateLayout  = "2006-01-02"
	cardHeaderCell  = "FECHA"
	cardTotalMarker = "Total"
	cardProbeMarker = "tarjeta"
)

// BankinterCardParser parses Bankinter credit-card exports, which ship as
// real legacy binary XLS files. A file can interleave several statement
// sections: each "FECHA" header cell opens a data block and each "Total"
// row closes it.
type BankinterCardParser struct {
	defaultCurrency string
}

// NewBankinterCardParser creates a Bankinter credit-card XLS parser
func NewBankinterCardParser(defaultCurrency string) *BankinterCardParser {
	return &BankinterCardParser{defaultCurrency: defaultCurrency}
}

func (p *BankinterCardParser) Name() string     { return "bankinter_card" }
func (p *BankinterCardParser) BankName() string { return "Bankinter Credit Card" }

// CanParse requires a genuine binary XLS (not HTML in disguise) whose first
// cells mention the card number label.
func (p *BankinterCardParser) CanParse(path string) bool {
	if !hasExtension(path, ".xls") {
		return false
	}
	if looksHTML(readProbe(path)) {
		return false
	}

	rows, err := readXLSRows(path)
	if err != nil {
		return false
	}

	limit := len(rows)
	if limit > 5 {
		limit = 5
	}
	for _, row := range rows[:limit] {
		for _, c := range row {
			if strings.Contains(strings.ToLower(c), cardProbeMarker) {
				return true
			}
		}
	}
	return false
}

// Parse walks the sheet with a stateful scan over interleaved statement
// sections, reading FECHA / COMERCIO / IMPORTE columns inside each block.
func (p *BankinterCardParser) Parse(ctx context.Context, path string) ([]transaction.Canonical, error) {
	rows, err := readXLSRows(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open bankinter card file: %w", err)
	}

	var txs []transaction.Canonical
	inDataSection := false
	headerSeen := false

	for _, row := range rows {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		first := cellAt(row, 0)

		if strings.Contains(first, cardTotalMarker) {
			inDataSection = false
			continue
		}
		if first == cardHeaderCell {
			inDataSection = true
			headerSeen = true
			continue
		}
		if !inDataSection || first == "" {
			continue
		}

		date, err := time.Parse(cardDateLayout, firstToken(first))
		if err != nil {
			continue
		}

		amount, err := ParseAmount(cellAt(row, 2))
		if err != nil {
			continue
		}

		merchant := cellAt(row, 1)
		txs = append(txs, transaction.WithFingerprint(transaction.Canonical{
			Date:            transaction.TruncateToDay(date),
			Amount:          amount,
			Currency:        p.defaultCurrency,
			RawMerchantName: merchant,
			RawDescription:  merchant,
			Source:          transaction.SourceFileImport,
		}))
	}

	if !headerSeen {
		return nil, ErrHeaderNotFound{Filename: baseName(path), Marker: cardHeaderCell}
	}

	return txs, nil
}

// readXLSRows loads the first sheet of a legacy binary XLS as string rows
func readXLSRows(path string) ([][]string, error) {
	wb, err := xls.Open(path, "utf-8")
	if err != nil {
		return nil, err
	}

	sheet := wb.GetSheet(0)
	if sheet == nil {
		return nil, fmt.Errorf("workbook has no sheets")
	}

	rows := make([][]string, 0, int(sheet.MaxRow)+1)
	for i := 0; i <= int(sheet.MaxRow); i++ {
		r := sheet.Row(i)
		if r == nil {
			rows = append(rows, nil)
			continue
		}
		cells := make([]string, 0, r.LastCol()+1)
		for j := 0; j <= r.LastCol(); j++ {
			cells = append(cells, strings.TrimSpace(r.Col(j)))
		}
		rows = append(rows, cells)
	}

	return rows, nil
}
