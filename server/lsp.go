package server

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"unicode"
	"unicode/utf16"

	"github.com/tliron/commonlog"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	glspserver "github.com/tliron/glsp/server"

	"github.com/nanalan/nom/compiler"

	_ "github.com/tliron/commonlog/simple"
)

const lspName = "nom-lsp"

var log = commonlog.GetLogger("nom.lsp")

// document is an open editor buffer with its latest parse.
type document struct {
	text string
	prog *compiler.Program // last successful parse; may be stale when err != nil
	err  error             // diagnostic for text, if any
}

// LspServer serves nom diagnostics, hover, definitions, completion and
// document symbols over the Language Server Protocol.
type LspServer struct {
	mu   sync.Mutex
	docs map[string]*document // URI → document

	handler protocol.Handler
	server  *glspserver.Server
	version string
}

// NewLSP creates a new LSP server.
func NewLSP(version string) *LspServer {
	s := &LspServer{
		docs:    make(map[string]*document),
		version: version,
	}

	s.handler = protocol.Handler{
		Initialize:  s.initialize,
		Initialized: s.initialized,
		Shutdown:    s.shutdown,
		SetTrace:    s.setTrace,

		TextDocumentDidOpen:   s.textDocumentDidOpen,
		TextDocumentDidChange: s.textDocumentDidChange,
		TextDocumentDidClose:  s.textDocumentDidClose,

		TextDocumentCompletion:     s.textDocumentCompletion,
		TextDocumentHover:          s.textDocumentHover,
		TextDocumentDefinition:     s.textDocumentDefinition,
		TextDocumentDocumentSymbol: s.textDocumentDocumentSymbol,
	}

	s.server = glspserver.NewServer(&s.handler, lspName, false)

	return s
}

// Run starts the LSP server on stdio. Blocks until the client disconnects.
func (s *LspServer) Run() error {
	return s.server.RunStdio()
}

// --- LSP lifecycle handlers ---

func (s *LspServer) initialize(ctx *glsp.Context, params *protocol.InitializeParams) (any, error) {
	log.Infof("%s %s initializing", lspName, s.version)

	capabilities := s.handler.CreateServerCapabilities()

	syncKind := protocol.TextDocumentSyncKindFull
	capabilities.TextDocumentSync = &protocol.TextDocumentSyncOptions{
		OpenClose: boolPtr(true),
		Change:    &syncKind,
	}

	capabilities.CompletionProvider = &protocol.CompletionOptions{}
	capabilities.HoverProvider = true
	capabilities.DefinitionProvider = true
	capabilities.DocumentSymbolProvider = true

	return protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    lspName,
			Version: &s.version,
		},
	}, nil
}

func (s *LspServer) initialized(ctx *glsp.Context, params *protocol.InitializedParams) error {
	return nil
}

func (s *LspServer) shutdown(ctx *glsp.Context) error {
	log.Info("shutting down")
	return nil
}

func (s *LspServer) setTrace(ctx *glsp.Context, params *protocol.SetTraceParams) error {
	return nil
}

// --- Document synchronization ---

func (s *LspServer) textDocumentDidOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	uri := params.TextDocument.URI
	doc := s.update(string(uri), params.TextDocument.Text)
	s.publishDiagnostics(ctx, uri, doc)
	return nil
}

func (s *LspServer) textDocumentDidChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	uri := params.TextDocument.URI

	// With Full sync, the last change event contains the full text
	if len(params.ContentChanges) > 0 {
		last := params.ContentChanges[len(params.ContentChanges)-1]
		if whole, ok := last.(protocol.TextDocumentContentChangeEventWhole); ok {
			doc := s.update(string(uri), whole.Text)
			s.publishDiagnostics(ctx, uri, doc)
		}
	}
	return nil
}

func (s *LspServer) textDocumentDidClose(ctx *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	uri := params.TextDocument.URI

	s.mu.Lock()
	delete(s.docs, string(uri))
	s.mu.Unlock()

	// Clear diagnostics for the closed document
	go ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: []protocol.Diagnostic{},
	})
	return nil
}

// update reparses text and stores it under uri. A failed parse keeps the
// previous program so navigation still works while the user types.
func (s *LspServer) update(uri, text string) document {
	text = compiler.NormalizeNewlines(text)
	prog, err := compiler.Parse(text)

	s.mu.Lock()
	defer s.mu.Unlock()

	doc := &document{text: text, prog: prog, err: err}
	if err != nil {
		if prev, ok := s.docs[uri]; ok {
			doc.prog = prev.prog
		}
		log.Debugf("%s: %s", uri, err)
	}
	s.docs[uri] = doc
	return *doc
}

func (s *LspServer) lookup(uri protocol.DocumentUri) (document, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.docs[string(uri)]
	if !ok {
		return document{}, false
	}
	return *doc, true
}

// --- Language features ---

func (s *LspServer) textDocumentCompletion(ctx *glsp.Context, params *protocol.CompletionParams) (any, error) {
	doc, ok := s.lookup(params.TextDocument.URI)
	if !ok {
		return nil, nil
	}

	prefix := extractPrefix(doc.text, params.Position)
	if prefix == "" {
		return nil, nil
	}
	return s.complete(doc, prefix), nil
}

func (s *LspServer) textDocumentHover(ctx *glsp.Context, params *protocol.HoverParams) (*protocol.Hover, error) {
	doc, ok := s.lookup(params.TextDocument.URI)
	if !ok {
		return nil, nil
	}

	word := extractWord(doc.text, params.Position)
	if word == "" {
		return nil, nil
	}
	return s.hover(doc, word), nil
}

func (s *LspServer) textDocumentDefinition(ctx *glsp.Context, params *protocol.DefinitionParams) (any, error) {
	uri := params.TextDocument.URI
	doc, ok := s.lookup(uri)
	if !ok {
		return nil, nil
	}

	word := extractWord(doc.text, params.Position)
	if word == "" {
		return nil, nil
	}
	locations := s.definition(doc, uri, word)
	if len(locations) == 0 {
		return nil, nil
	}
	return locations, nil
}

func (s *LspServer) textDocumentDocumentSymbol(ctx *glsp.Context, params *protocol.DocumentSymbolParams) (any, error) {
	doc, ok := s.lookup(params.TextDocument.URI)
	if !ok || doc.prog == nil {
		return nil, nil
	}
	return s.symbols(doc), nil
}

// --- Program-backed logic ---

// methods returns every method definition in the program, outer first.
func methods(prog *compiler.Program) []*compiler.MethodDef {
	if prog == nil {
		return nil
	}
	var defs []*compiler.MethodDef
	for _, stmt := range prog.Statements {
		compiler.Walk(stmt, func(n compiler.Node) bool {
			if def, ok := n.(*compiler.MethodDef); ok {
				defs = append(defs, def)
			}
			return true
		})
	}
	return defs
}

// signature renders a method head: name (a, b).
func signature(def *compiler.MethodDef) string {
	params := make([]string, len(def.Params))
	for i, p := range def.Params {
		params[i] = p.Name
	}
	return fmt.Sprintf("%s (%s)", def.Name.Name, strings.Join(params, ", "))
}

func (s *LspServer) complete(doc document, prefix string) []protocol.CompletionItem {
	lowerPrefix := strings.ToLower(prefix)
	seen := make(map[string]bool)
	var items []protocol.CompletionItem

	for _, def := range methods(doc.prog) {
		name := def.Name.Name
		if seen[name] || !strings.HasPrefix(strings.ToLower(name), lowerPrefix) {
			continue
		}
		seen[name] = true

		kind := protocol.CompletionItemKindMethod
		detail := signature(def)
		nameCopy := name
		items = append(items, protocol.CompletionItem{
			Label:      name,
			Kind:       &kind,
			Detail:     &detail,
			InsertText: &nameCopy,
		})
	}

	sort.Slice(items, func(i, j int) bool { return items[i].Label < items[j].Label })

	// Limit results
	const maxItems = 100
	if len(items) > maxItems {
		items = items[:maxItems]
	}
	return items
}

func (s *LspServer) hover(doc document, word string) *protocol.Hover {
	var b strings.Builder
	kind := compiler.Classify(word)
	fmt.Fprintf(&b, "**%s** %s", word, kind)

	if kind == compiler.Variable {
		var sigs []string
		for _, def := range methods(doc.prog) {
			if def.Name.Name == word {
				sigs = append(sigs, signature(def))
			}
		}
		if len(sigs) > 0 {
			b.WriteString("\n\n```nom\n")
			b.WriteString(strings.Join(sigs, "\n"))
			b.WriteString("\n```")
		}
	}

	return &protocol.Hover{
		Contents: protocol.MarkupContent{
			Kind:  protocol.MarkupKindMarkdown,
			Value: b.String(),
		},
	}
}

func (s *LspServer) definition(doc document, uri protocol.DocumentUri, word string) []protocol.Location {
	var locations []protocol.Location
	for _, def := range methods(doc.prog) {
		if def.Name.Name != word {
			continue
		}
		span, ok := doc.prog.SpanOf(def.Name)
		if !ok {
			continue
		}
		locations = append(locations, protocol.Location{
			URI:   uri,
			Range: spanRange(doc.text, span),
		})
	}
	return locations
}

func (s *LspServer) symbols(doc document) []protocol.DocumentSymbol {
	var out []protocol.DocumentSymbol
	for _, stmt := range doc.prog.Statements {
		if def, ok := stmt.(*compiler.MethodDef); ok {
			out = append(out, s.methodSymbol(doc, def))
		}
	}
	return out
}

// methodSymbol builds the symbol for def, with nested methods as children.
func (s *LspServer) methodSymbol(doc document, def *compiler.MethodDef) protocol.DocumentSymbol {
	detail := signature(def)
	sym := protocol.DocumentSymbol{
		Name:   def.Name.Name,
		Detail: &detail,
		Kind:   protocol.SymbolKindMethod,
	}
	if span, ok := doc.prog.SpanOf(def); ok {
		sym.Range = spanRange(doc.text, span)
	}
	if span, ok := doc.prog.SpanOf(def.Name); ok {
		sym.SelectionRange = spanRange(doc.text, span)
	}
	for _, stmt := range def.Body.Statements {
		if inner, ok := stmt.(*compiler.MethodDef); ok {
			sym.Children = append(sym.Children, s.methodSymbol(doc, inner))
		}
	}
	return sym
}

// --- Diagnostics ---

func (s *LspServer) publishDiagnostics(ctx *glsp.Context, uri protocol.DocumentUri, doc document) {
	diagnostics := []protocol.Diagnostic{}
	if doc.err != nil {
		diagnostics = append(diagnostics, diagnosticFor(doc.text, doc.err))
	}

	go ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: diagnostics,
	})
}

// diagnosticFor converts a parse error to an LSP diagnostic. Positional
// errors cover the offending character; others sit at the document start.
func diagnosticFor(text string, err error) protocol.Diagnostic {
	severity := protocol.DiagnosticSeverityError
	source := lspName

	var rng protocol.Range
	if offset, ok := compiler.Offset(err); ok {
		end := offset
		if compiler.CharAt(text, offset) != "" {
			end++
		}
		rng = spanRange(text, compiler.Span{Start: offset, End: end})
	}

	return protocol.Diagnostic{
		Range:    rng,
		Severity: &severity,
		Source:   &source,
		Message:  compiler.Message(err),
	}
}

// --- Position helpers ---

// offsetToPosition converts a rune offset to an LSP position, whose
// character counts UTF-16 code units.
func offsetToPosition(text string, offset int) protocol.Position {
	var line, col uint32
	i := 0
	for _, r := range text {
		if i >= offset {
			break
		}
		if r == '\n' {
			line++
			col = 0
		} else {
			col += uint32(utf16.RuneLen(r))
		}
		i++
	}
	return protocol.Position{Line: line, Character: col}
}

// positionToOffset converts an LSP position to a rune offset. Columns past
// the end of the line clamp to the line end.
func positionToOffset(text string, pos protocol.Position) int {
	var line, col uint32
	i := 0
	for _, r := range text {
		if line == pos.Line && (col >= pos.Character || r == '\n') {
			return i
		}
		if r == '\n' {
			line++
			col = 0
		} else if line == pos.Line {
			col += uint32(utf16.RuneLen(r))
		}
		i++
	}
	return i
}

func spanRange(text string, span compiler.Span) protocol.Range {
	return protocol.Range{
		Start: offsetToPosition(text, span.Start),
		End:   offsetToPosition(text, span.End),
	}
}

// --- Text extraction helpers ---

func isIdentRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
}

// extractPrefix returns the word fragment before the cursor for completion.
func extractPrefix(text string, pos protocol.Position) string {
	if int(pos.Line) > strings.Count(text, "\n") {
		return ""
	}
	runes := []rune(text)
	col := positionToOffset(text, pos)

	// Walk backwards from cursor to find the start of the identifier
	start := col
	for start > 0 && isIdentRune(runes[start-1]) {
		start--
	}

	if start == col {
		return ""
	}

	return string(runes[start:col])
}

// extractWord returns the full identifier under the cursor.
func extractWord(text string, pos protocol.Position) string {
	if int(pos.Line) > strings.Count(text, "\n") {
		return ""
	}
	runes := []rune(text)
	col := positionToOffset(text, pos)

	// Find start
	start := col
	for start > 0 && isIdentRune(runes[start-1]) {
		start--
	}

	// Find end
	end := col
	for end < len(runes) && isIdentRune(runes[end]) {
		end++
	}

	if start == end {
		return ""
	}

	return string(runes[start:end])
}

func boolPtr(b bool) *bool {
	return &b
}
