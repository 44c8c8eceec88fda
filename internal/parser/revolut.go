package parser

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ErmoGarcia/expense-toolkit/internal/domain/transaction"
)

const revolutDateLayout = "2006-01-02"

// RevolutParser parses Revolut CSV exports
type RevolutParser struct {
	defaultCurrency string
}

// NewRevolutParser creates a Revolut CSV parser
func NewRevolutParser(defaultCurrency string) *RevolutParser {
	return &RevolutParser{defaultCurrency: defaultCurrency}
}

func (p *RevolutParser) Name() string     { return "revolut" }
func (p *RevolutParser) BankName() string { return "Revolut" }

// CanParse detects the Revolut format by extension and CSV header columns
func (p *RevolutParser) CanParse(path string) bool {
	if !hasExtension(path, ".csv") {
		return false
	}

	header, err := readCSVHeader(path)
	if err != nil {
		return false
	}

	required := []string{"Type", "Description", "Amount", "Currency"}
	for _, col := range required {
		if _, ok := header[col]; !ok {
			return false
		}
	}
	return true
}

// Parse reads the CSV row by row. Only COMPLETED rows are accepted; the
// transaction date is the completed date, falling back to the started date.
func (p *RevolutParser) Parse(ctx context.Context, path string) ([]transaction.Canonical, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open revolut file: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read revolut CSV: %w", err)
	}
	if len(rows) < 1 {
		return nil, ErrHeaderNotFound{Filename: baseName(path), Marker: "CSV header"}
	}

	cols := indexColumns(rows[0])

	var txs []transaction.Canonical
	for _, row := range rows[1:] {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if state := cell(row, cols, "State"); state != "" && state != "COMPLETED" {
			continue
		}

		dateStr := cell(row, cols, "Completed Date")
		if dateStr == "" {
			dateStr = cell(row, cols, "Started Date")
		}
		if dateStr == "" {
			continue
		}

		date, err := time.Parse(revolutDateLayout, firstToken(dateStr))
		if err != nil {
			continue
		}

		amount, err := ParseAmount(cell(row, cols, "Amount"))
		if err != nil {
			continue
		}

		currency := cell(row, cols, "Currency")
		if currency == "" {
			currency = p.defaultCurrency
		}

		description := cell(row, cols, "Description")
		txs = append(txs, transaction.WithFingerprint(transaction.Canonical{
			Date:            transaction.TruncateToDay(date),
			Amount:          amount,
			Currency:        currency,
			RawMerchantName: description,
			RawDescription:  cell(row, cols, "Type") + " - " + description,
			Source:          transaction.SourceFileImport,
		}))
	}

	return txs, nil
}

// readCSVHeader reads just the first row of a CSV file as a column index map
func readCSVHeader(path string) (map[string]int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	row, err := reader.Read()
	if err != nil {
		return nil, err
	}
	return indexColumns(row), nil
}

// indexColumns maps trimmed column names to their positions
func indexColumns(header []string) map[string]int {
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.TrimSpace(name)] = i
	}
	return cols
}

// cell returns the trimmed value of the named column, or "" when absent
func cell(row []string, cols map[string]int, name string) string {
	i, ok := cols[name]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// firstToken returns the part of s before the first whitespace, dropping a
// time component appended to a date.
func firstToken(s string) string {
	if i := strings.IndexAny(s, " \t"); i >= 0 {
		return s[:i]
	}
	return s
}
