package lsp

import (
	"sync"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/jarredhawkins/goblock-lsp/internal/index"
	"github.com/jarredhawkins/goblock-lsp/internal/types"
)

// DocumentStore manages open text documents
type DocumentStore struct {
	mu   sync.RWMutex
	docs map[string]*Document
}

// Document is a text document with its parsed block pairs
type Document struct {
	URI      string
	Version  int
	Content  string
	Language string
	Pairs    []types.BlockPair

	lines []string
}

// NewDocument splits content into lines for position conversion
func NewDocument(uri string, version int, content, language string, pairs []types.BlockPair) *Document {
	return &Document{
		URI:      uri,
		Version:  version,
		Content:  content,
		Language: language,
		Pairs:    pairs,
		lines:    splitLines(content),
	}
}

// NewDocumentStore creates a new document store
func NewDocumentStore() *DocumentStore {
	return &DocumentStore{
		docs: make(map[string]*Document),
	}
}

// Open adds or replaces a document
func (ds *DocumentStore) Open(doc *Document) {
	ds.mu.Lock()
	defer ds.mu.Unlock()
	ds.docs[doc.URI] = doc
}

// Close removes a document
func (ds *DocumentStore) Close(uri string) {
	ds.mu.Lock()
	defer ds.mu.Unlock()
	delete(ds.docs, uri)
}

// Get returns an open document
func (ds *DocumentStore) Get(uri string) (*Document, bool) {
	ds.mu.RLock()
	defer ds.mu.RUnlock()
	doc, ok := ds.docs[uri]
	return doc, ok
}

// IsOpen checks if a document is open
func (ds *DocumentStore) IsOpen(uri string) bool {
	_, ok := ds.Get(uri)
	return ok
}

// splitLines splits on \n, \r\n and \r, matching token line numbering
func splitLines(s string) []string {
	var lines []string
	start := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\n':
			lines = append(lines, s[start:i])
			start = i + 1
		case '\r':
			lines = append(lines, s[start:i])
			if i+1 < len(s) && s[i+1] == '\n' {
				i++
			}
			start = i + 1
		}
	}
	return append(lines, s[start:])
}

func (d *Document) line(n int) string {
	if n < 0 || n >= len(d.lines) {
		return ""
	}
	return d.lines[n]
}

// toIndex converts an LSP position to a line and code point column
func (d *Document) toIndex(p Position) index.Position {
	line := d.line(int(p.Line))
	units, col := 0, 0
	for _, r := range line {
		if units >= int(p.Character) {
			break
		}
		units += utf16.RuneLen(r)
		col++
	}
	return index.Position{Line: int(p.Line), Column: col}
}

// toLSP converts a line and code point column to an LSP position
func (d *Document) toLSP(line, col int) Position {
	text := d.line(line)
	units := 0
	for i := 0; i < col && len(text) > 0; i++ {
		r, n := utf8.DecodeRuneInString(text)
		text = text[n:]
		units += utf16.RuneLen(r)
	}
	return Position{Line: uint32(line), Character: uint32(units)}
}

func (d *Document) tokenRange(tok types.Token) Range {
	endLine, endCol := tok.EndPosition()
	return Range{
		Start: d.toLSP(tok.Line, tok.Column),
		End:   d.toLSP(endLine, endCol),
	}
}
