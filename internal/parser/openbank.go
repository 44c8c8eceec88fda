package parser

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"golang.org/x/net/html"
	"golang.org/x/text/encoding/charmap"

	"github.com/ErmoGarcia/expense-toolkit/internal/domain/transaction"
)

const openbankDateLayout = "02/01/2006"

// OpenBankParser parses OpenBank exports. They carry an .xls extension but
// are really ISO-8859-1 HTML documents containing a single table, so the
// parser sniffs the HTML signature and reads the table directly.
type OpenBankParser struct {
	defaultCurrency string
}

// NewOpenBankParser creates an OpenBank HTML-as-XLS parser
func NewOpenBankParser(defaultCurrency string) *OpenBankParser {
	return &OpenBankParser{defaultCurrency: defaultCurrency}
}

func (p *OpenBankParser) Name() string     { return "openbank" }
func (p *OpenBankParser) BankName() string { return "OpenBank" }

// CanParse claims .xls files whose first bytes carry an HTML signature
func (p *OpenBankParser) CanParse(path string) bool {
	if !hasExtension(path, ".xls") {
		return false
	}
	return looksHTML(readProbe(path))
}

// Parse extracts the first table, locates the "Fecha Operación" header row,
// maps the needed columns by name, and reads the rows below it.
func (p *OpenBankParser) Parse(ctx context.Context, path string) ([]transaction.Canonical, error) {
	rows, err := readHTMLTable(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read openbank file: %w", err)
	}
	if len(rows) == 0 {
		return nil, ErrHeaderNotFound{Filename: baseName(path), Marker: "table"}
	}

	headerIdx, fechaCol, conceptoCol, importeCol := -1, -1, -1, -1
	for i, row := range rows {
		for j, c := range row {
			if strings.Contains(c, "Fecha") && strings.Contains(c, "Operación") {
				headerIdx = i
				fechaCol = j
			}
		}
		if headerIdx >= 0 {
			for j, c := range row {
				switch {
				case strings.Contains(c, "Concepto"):
					conceptoCol = j
				case strings.Contains(c, "Importe"):
					importeCol = j
				}
			}
			break
		}
	}
	if headerIdx < 0 || fechaCol < 0 || importeCol < 0 {
		return nil, ErrHeaderNotFound{Filename: baseName(path), Marker: "Fecha Operación"}
	}

	var txs []transaction.Canonical
	for _, row := range rows[headerIdx+1:] {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		dateStr := cellAt(row, fechaCol)
		if dateStr == "" {
			continue
		}
		date, err := time.Parse(openbankDateLayout, dateStr)
		if err != nil {
			continue
		}

		amount, err := ParseAmount(cellAt(row, importeCol))
		if err != nil {
			continue
		}

		concepto := cellAt(row, conceptoCol)
		txs = append(txs, transaction.WithFingerprint(transaction.Canonical{
			Date:            transaction.TruncateToDay(date),
			Amount:          amount,
			Currency:        p.defaultCurrency,
			RawMerchantName: concepto,
			RawDescription:  concepto,
			Source:          transaction.SourceFileImport,
		}))
	}

	return txs, nil
}

// readHTMLTable decodes the ISO-8859-1 document and returns the first
// table's rows as trimmed cell text.
func readHTMLTable(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	doc, err := html.Parse(charmap.ISO8859_1.NewDecoder().Reader(f))
	if err != nil {
		return nil, err
	}

	table := findFirst(doc, "table")
	if table == nil {
		return nil, fmt.Errorf("no tables found in document")
	}

	var rows [][]string
	var walkRows func(n *html.Node)
	walkRows = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "tr" {
			var cells []string
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				if c.Type == html.ElementNode && (c.Data == "td" || c.Data == "th") {
					cells = append(cells, strings.TrimSpace(nodeText(c)))
				}
			}
			rows = append(rows, cells)
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walkRows(c)
		}
	}
	walkRows(table)

	return rows, nil
}

// findFirst returns the first element node with the given tag
func findFirst(n *html.Node, tag string) *html.Node {
	if n.Type == html.ElementNode && n.Data == tag {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findFirst(c, tag); found != nil {
			return found
		}
	}
	return nil
}

// nodeText concatenates all text content beneath a node
func nodeText(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}
