// Package parser implements format detection and parsing of bank statement
// exports into canonical transactions. Detection walks a fixed, ordered list
// of parsers; the first one whose predicate claims the file wins, so the
// predicates are written to be mutually exclusive on any file the system is
// expected to see.
package parser

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/ErmoGarcia/expense-toolkit/internal/domain/transaction"
)

// Parser handles one bank statement format
type Parser interface {
	// Name returns the parser identifier (e.g. "revolut")
	Name() string

	// BankName returns the human-readable bank the format belongs to,
	// used to resolve or create the target account.
	BankName() string

	// CanParse is a cheap structural probe: extension plus a peek at the
	// file's first bytes or header row.
	CanParse(path string) bool

	// Parse reads the whole file into canonical transactions. Malformed
	// rows are skipped; only structural failure returns an error.
	Parse(ctx context.Context, path string) ([]transaction.Canonical, error)
}

// ErrUnknownFormat indicates no registered parser recognized the file
type ErrUnknownFormat struct {
	Filename string
}

func (e ErrUnknownFormat) Error() string {
	return "unknown bank file format: " + e.Filename
}

// ErrHeaderNotFound indicates the expected header marker never appeared,
// which makes the whole file unusable for its detected format.
type ErrHeaderNotFound struct {
	Filename string
	Marker   string
}

func (e ErrHeaderNotFound) Error() string {
	return "could not find header row (" + e.Marker + ") in " + e.Filename
}

// Registry holds the ordered parser list
type Registry struct {
	parsers []Parser
}

// NewRegistry builds the registry with all supported formats in detection
// order. More specific formats come first.
func NewRegistry(defaultCurrency string) *Registry {
	return &Registry{
		parsers: []Parser{
			NewRevolutParser(defaultCurrency),
			NewBankinterParser(defaultCurrency),
			NewBankinterCardParser(defaultCurrency),
			NewOpenBankParser(defaultCurrency),
		},
	}
}

// Detect returns the first parser that claims the file, or ErrUnknownFormat
func (r *Registry) Detect(path string) (Parser, error) {
	for _, p := range r.parsers {
		if p.CanParse(path) {
			return p, nil
		}
	}
	return nil, ErrUnknownFormat{Filename: filepath.Base(path)}
}

// Parsers returns the registered parser names in detection order
func (r *Registry) Parsers() []string {
	names := make([]string, len(r.parsers))
	for i, p := range r.parsers {
		names[i] = p.Name()
	}
	return names
}

// probeSize is how many leading bytes CanParse predicates inspect
const probeSize = 512

// readProbe reads up to probeSize leading bytes of the file
func readProbe(path string) []byte {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()

	buf := make([]byte, probeSize)
	n, _ := f.Read(buf)
	return buf[:n]
}

// looksHTML reports whether the probe carries an HTML doctype or tag
// signature. Some banks export HTML tables under a spreadsheet extension.
func looksHTML(probe []byte) bool {
	head := bytes.ToLower(probe)
	return bytes.Contains(head, []byte("<html")) || bytes.Contains(head, []byte("<!doctype"))
}

// baseName strips the directory from a path for error messages
func baseName(path string) string {
	return filepath.Base(path)
}

// hasExtension reports whether the filename carries one of the extensions
func hasExtension(path string, exts ...string) bool {
	got := strings.ToLower(filepath.Ext(path))
	for _, e := range exts {
		if got == e {
			return true
		}
	}
	return false
}
