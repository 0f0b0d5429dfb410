package lsp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"go.lsp.dev/jsonrpc2"

	"github.com/jarredhawkins/goblock-lsp/internal/index"
	"github.com/jarredhawkins/goblock-lsp/internal/parser"
	"github.com/jarredhawkins/goblock-lsp/internal/types"
)

// Version is reported in serverInfo
const Version = "0.1.0"

// Server implements the LSP server
type Server struct {
	index     *index.Index
	registry  *parser.Registry
	documents *DocumentStore
	logger    *slog.Logger
}

// NewServer creates a new LSP server. idx may be nil when no workspace is
// indexed.
func NewServer(idx *index.Index, registry *parser.Registry, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Server{
		index:     idx,
		registry:  registry,
		documents: NewDocumentStore(),
		logger:    logger,
	}
}

// Serve starts the LSP server on the given reader/writer
func (s *Server) Serve(ctx context.Context, in io.Reader, out io.Writer) error {
	stream := jsonrpc2.NewStream(&readWriteCloser{in, out})
	conn := jsonrpc2.NewConn(stream)

	conn.Go(ctx, s.handler)

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-conn.Done():
		return conn.Err()
	}
}

func (s *Server) handler(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	s.logger.Debug("lsp.request", "method", req.Method())

	switch req.Method() {
	case "initialize":
		return s.handleInitialize(ctx, reply, req)
	case "initialized":
		return reply(ctx, nil, nil)
	case "shutdown":
		return reply(ctx, nil, nil)
	case "exit":
		return nil
	case "textDocument/documentHighlight":
		return s.handleDocumentHighlight(ctx, reply, req)
	case "textDocument/definition":
		return s.handleDefinition(ctx, reply, req)
	case "goblock/blockPairs":
		return s.handleBlockPairs(ctx, reply, req)
	case "goblock/stats":
		return s.handleStats(ctx, reply, req)
	case "textDocument/didOpen":
		return s.handleDidOpen(ctx, reply, req)
	case "textDocument/didChange":
		return s.handleDidChange(ctx, reply, req)
	case "textDocument/didClose":
		return s.handleDidClose(ctx, reply, req)
	default:
		return reply(ctx, nil, &jsonrpc2.Error{
			Code:    jsonrpc2.MethodNotFound,
			Message: "method not supported: " + req.Method(),
		})
	}
}

// decode unmarshals the request params, replying InvalidParams on failure
func decode(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request, v any) (bool, error) {
	if err := json.Unmarshal(req.Params(), v); err != nil {
		return false, reply(ctx, nil, &jsonrpc2.Error{
			Code:    jsonrpc2.InvalidParams,
			Message: fmt.Sprintf("%s: %v", req.Method(), err),
		})
	}
	return true, nil
}

func (s *Server) handleInitialize(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	result := InitializeResult{
		Capabilities: ServerCapabilities{
			TextDocumentSync: &TextDocumentSyncOptions{
				OpenClose: true,
				Change:    TextDocumentSyncKindFull,
			},
			DefinitionProvider:        true,
			DocumentHighlightProvider: true,
		},
		ServerInfo: &ServerInfo{
			Name:    "goblock-lsp",
			Version: Version,
		},
	}
	return reply(ctx, result, nil)
}

// keywordAt resolves the document and the block keyword under the cursor
func (s *Server) keywordAt(params TextDocumentPositionParams) (*Document, types.BlockPair, types.Token, bool) {
	doc, ok := s.document(params.TextDocument.URI)
	if !ok {
		return nil, types.BlockPair{}, types.Token{}, false
	}
	bp, tok, ok := index.KeywordAt(doc.Pairs, doc.toIndex(params.Position))
	return doc, bp, tok, ok
}

func (s *Server) handleDocumentHighlight(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params TextDocumentPositionParams
	if ok, err := decode(ctx, reply, req, &params); !ok {
		return err
	}

	doc, bp, _, ok := s.keywordAt(params)
	if !ok {
		return reply(ctx, nil, nil)
	}

	keywords := bp.Keywords()
	highlights := make([]DocumentHighlight, len(keywords))
	for i, tok := range keywords {
		highlights[i] = DocumentHighlight{Range: doc.tokenRange(tok), Kind: DocumentHighlightKindText}
	}
	return reply(ctx, highlights, nil)
}

func (s *Server) handleDefinition(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params TextDocumentPositionParams
	if ok, err := decode(ctx, reply, req, &params); !ok {
		return err
	}

	doc, bp, tok, ok := s.keywordAt(params)
	if !ok {
		return reply(ctx, nil, nil)
	}

	target := index.Partner(bp, tok)
	s.logger.Debug("lsp.definition", "uri", doc.URI, "from", tok.Value, "to", target.Value, "line", target.Line)
	return reply(ctx, Location{URI: doc.URI, Range: doc.tokenRange(target)}, nil)
}

func (s *Server) handleBlockPairs(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params BlockPairsParams
	if ok, err := decode(ctx, reply, req, &params); !ok {
		return err
	}

	doc, ok := s.document(params.TextDocument.URI)
	if !ok {
		return reply(ctx, BlockPairsResult{Pairs: []BlockPair{}}, nil)
	}

	sorted := append([]types.BlockPair(nil), doc.Pairs...)
	types.SortPairs(sorted)

	result := BlockPairsResult{Language: doc.Language, Pairs: make([]BlockPair, len(sorted))}
	for i, bp := range sorted {
		out := BlockPair{
			Keyword:   bp.Open.Value,
			Open:      doc.tokenRange(bp.Open),
			Close:     doc.tokenRange(bp.Close),
			NestLevel: bp.NestLevel,
		}
		for _, mid := range bp.Intermediates {
			out.Intermediates = append(out.Intermediates, doc.tokenRange(mid))
		}
		result.Pairs[i] = out
	}
	return reply(ctx, result, nil)
}

func (s *Server) handleStats(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	if s.index == nil {
		return reply(ctx, index.Stats{ByLanguage: map[string]int{}}, nil)
	}
	return reply(ctx, s.index.Stats(), nil)
}

func (s *Server) handleDidOpen(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params DidOpenTextDocumentParams
	if ok, err := decode(ctx, reply, req, &params); !ok {
		return err
	}

	item := params.TextDocument
	s.open(item.URI, item.Version, item.Text)
	return reply(ctx, nil, nil)
}

func (s *Server) handleDidChange(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params DidChangeTextDocumentParams
	if ok, err := decode(ctx, reply, req, &params); !ok {
		return err
	}

	if len(params.ContentChanges) > 0 {
		// Full sync mode - just take the last content
		text := params.ContentChanges[len(params.ContentChanges)-1].Text
		s.open(params.TextDocument.URI, params.TextDocument.Version, text)
	}
	return reply(ctx, nil, nil)
}

func (s *Server) handleDidClose(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params DidCloseTextDocumentParams
	if ok, err := decode(ctx, reply, req, &params); !ok {
		return err
	}

	uri := params.TextDocument.URI
	s.documents.Close(uri)

	// the buffer may have been discarded, so the index goes back to disk
	if s.index != nil {
		path := uriToPath(uri)
		if err := s.index.UpdateFile(path); err != nil {
			s.logger.Debug("lsp.reindex_failed", "path", path, "err", err)
		}
	}
	return reply(ctx, nil, nil)
}

// open parses text and stores it as the current state of uri
func (s *Server) open(uri string, version int, text string) {
	path := uriToPath(uri)
	if s.index != nil {
		if f, ok := s.index.AddContent(path, text); ok {
			s.documents.Open(NewDocument(uri, version, text, f.Language, f.Pairs))
			return
		}
	}
	p, ok := s.registry.ForPath(path)
	if !ok {
		s.documents.Open(NewDocument(uri, version, text, "", nil))
		return
	}
	s.documents.Open(NewDocument(uri, version, text, p.Name(), p.Parse(text)))
}

// document returns the open document for uri, falling back to the file on
// disk and its indexed pairs
func (s *Server) document(uri string) (*Document, bool) {
	if doc, ok := s.documents.Get(uri); ok {
		return doc, true
	}

	path := uriToPath(uri)
	content, err := os.ReadFile(path)
	if err != nil {
		s.logger.Debug("lsp.read_failed", "path", path, "err", err)
		return nil, false
	}
	if s.index != nil {
		if f, ok := s.index.File(path); ok {
			return NewDocument(uri, 0, string(content), f.Language, f.Pairs), true
		}
	}
	p, ok := s.registry.ForPath(path)
	if !ok {
		return nil, false
	}
	return NewDocument(uri, 0, string(content), p.Name(), p.Parse(string(content))), true
}

// readWriteCloser wraps reader and writer into a ReadWriteCloser
type readWriteCloser struct {
	io.Reader
	io.Writer
}

func (rwc *readWriteCloser) Close() error {
	return nil
}
