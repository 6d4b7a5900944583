package server

import (
	"bytes"
	"fmt"
	"strings"
	"sync"

	"github.com/tliron/commonlog"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	glspserver "github.com/tliron/glsp/server"

	"github.com/Quantum-Kayak/Skive/vm"

	_ "github.com/tliron/commonlog/simple"
)

const lspName = "skive-lsp"

// RunCommand is the workspace/executeCommand name that runs a document.
// Arguments: the document URI, then an optional input string.
const RunCommand = "skive.run"

// DefaultRunSteps bounds a program run from the editor.
const DefaultRunSteps = 1_000_000

var log = commonlog.GetLogger("skive.server")

// LspServer bridges LSP editor features to a scratch Skive engine via
// EngineWorker.
type LspServer struct {
	worker *EngineWorker

	mu   sync.Mutex
	docs map[string]string // URI → full document content

	handler protocol.Handler
	server  *glspserver.Server
	version string

	// RunSteps is the step limit applied to skive.run.
	RunSteps int
}

// NewLSP creates a new LSP server wrapping the given engine.
func NewLSP(e *vm.Engine) *LspServer {
	s := &LspServer{
		worker:   NewEngineWorker(e),
		docs:     make(map[string]string),
		version:  "0.1.0",
		RunSteps: DefaultRunSteps,
	}

	s.handler = protocol.Handler{
		Initialize:  s.initialize,
		Initialized: s.initialized,
		Shutdown:    s.shutdown,
		SetTrace:    s.setTrace,

		TextDocumentDidOpen:   s.textDocumentDidOpen,
		TextDocumentDidChange: s.textDocumentDidChange,
		TextDocumentDidClose:  s.textDocumentDidClose,

		TextDocumentCompletion: s.textDocumentCompletion,
		TextDocumentHover:      s.textDocumentHover,
		TextDocumentDefinition: s.textDocumentDefinition,

		WorkspaceExecuteCommand: s.workspaceExecuteCommand,
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
	log.Info("Skive LSP initializing")

	capabilities := s.handler.CreateServerCapabilities()

	syncKind := protocol.TextDocumentSyncKindFull
	capabilities.TextDocumentSync = &protocol.TextDocumentSyncOptions{
		OpenClose: boolPtr(true),
		Change:    &syncKind,
	}

	capabilities.CompletionProvider = &protocol.CompletionOptions{
		TriggerCharacters: []string{`\`, "{", "(", ","},
	}

	capabilities.HoverProvider = true
	capabilities.DefinitionProvider = true
	capabilities.ExecuteCommandProvider = &protocol.ExecuteCommandOptions{
		Commands: []string{RunCommand},
	}

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
	s.worker.Stop()
	return nil
}

func (s *LspServer) setTrace(ctx *glsp.Context, params *protocol.SetTraceParams) error {
	return nil
}

// --- Document synchronization ---

func (s *LspServer) textDocumentDidOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	uri := params.TextDocument.URI
	text := params.TextDocument.Text

	s.setDoc(uri, text)
	s.publishDiagnostics(ctx, uri, text)
	return nil
}

func (s *LspServer) textDocumentDidChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	uri := params.TextDocument.URI

	// With Full sync, the last change event contains the full text
	if len(params.ContentChanges) > 0 {
		last := params.ContentChanges[len(params.ContentChanges)-1]
		if whole, ok := last.(protocol.TextDocumentContentChangeEventWhole); ok {
			s.setDoc(uri, whole.Text)
			s.publishDiagnostics(ctx, uri, whole.Text)
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

func (s *LspServer) setDoc(uri protocol.DocumentUri, text string) {
	s.mu.Lock()
	s.docs[string(uri)] = text
	s.mu.Unlock()
}

func (s *LspServer) doc(uri protocol.DocumentUri) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	text, ok := s.docs[string(uri)]
	return text, ok
}

// --- Language features ---

func (s *LspServer) textDocumentCompletion(ctx *glsp.Context, params *protocol.CompletionParams) (any, error) {
	text, ok := s.doc(params.TextDocument.URI)
	if !ok {
		return nil, nil
	}
	items := completions(text, offsetAt(text, params.Position))
	if len(items) == 0 {
		return nil, nil
	}
	return items, nil
}

func (s *LspServer) textDocumentHover(ctx *glsp.Context, params *protocol.HoverParams) (*protocol.Hover, error) {
	text, ok := s.doc(params.TextDocument.URI)
	if !ok {
		return nil, nil
	}

	md := hoverText(text, offsetAt(text, params.Position))
	if md == "" {
		return nil, nil
	}
	return &protocol.Hover{
		Contents: protocol.MarkupContent{
			Kind:  protocol.MarkupKindMarkdown,
			Value: md,
		},
	}, nil
}

func (s *LspServer) textDocumentDefinition(ctx *glsp.Context, params *protocol.DefinitionParams) (any, error) {
	uri := params.TextDocument.URI
	text, ok := s.doc(uri)
	if !ok {
		return nil, nil
	}

	name, ok := argumentAt(text, offsetAt(text, params.Position))
	if !ok {
		return nil, nil
	}

	locs := definitions(uri, text, name)
	if len(locs) == 0 {
		return nil, nil
	}
	return locs, nil
}

// definitions returns every label{name} declaration of name in text.
func definitions(uri protocol.DocumentUri, text, name string) []protocol.Location {
	var locs []protocol.Location
	for _, d := range declaredLabels(text) {
		if d.Name != name {
			continue
		}
		locs = append(locs, protocol.Location{
			URI:   uri,
			Range: protocol.Range{Start: positionAt(text, d.Start), End: positionAt(text, d.End)},
		})
	}
	return locs
}

// --- Commands ---

func (s *LspServer) workspaceExecuteCommand(ctx *glsp.Context, params *protocol.ExecuteCommandParams) (any, error) {
	if params.Command != RunCommand {
		return nil, fmt.Errorf("unknown command %q", params.Command)
	}
	if len(params.Arguments) == 0 {
		return nil, fmt.Errorf("%s: missing document URI", RunCommand)
	}
	uri, ok := params.Arguments[0].(string)
	if !ok {
		return nil, fmt.Errorf("%s: document URI must be a string", RunCommand)
	}
	input := ""
	if len(params.Arguments) > 1 {
		input, _ = params.Arguments[1].(string)
	}

	text, ok := s.doc(protocol.DocumentUri(uri))
	if !ok {
		return nil, fmt.Errorf("%s: document %s is not open", RunCommand, uri)
	}
	return s.run(text, input)
}

// run executes text on the worker's engine from a clean state and returns
// what it printed. A run that hits the step limit still returns its output.
func (s *LspServer) run(text, input string) (string, error) {
	result, err := s.worker.Do(func(e *vm.Engine) any {
		var out bytes.Buffer
		e.Reset()
		e.SetInput(strings.NewReader(input))
		e.SetOutput(&out)
		e.SetStepLimit(s.RunSteps)
		runErr := e.Exec(text)
		return runResult{output: out.String(), err: runErr}
	})
	if err != nil {
		return "", err
	}
	r := result.(runResult)
	if r.err != nil {
		log.Infof("run: %s", r.err)
	}
	return r.output, r.err
}

type runResult struct {
	output string
	err    error
}

// --- Diagnostics ---

func (s *LspServer) publishDiagnostics(ctx *glsp.Context, uri protocol.DocumentUri, text string) {
	diagnostics := diagnose(text)

	go ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: diagnostics,
	})
}

func diagnose(text string) []protocol.Diagnostic {
	diagnostics := []protocol.Diagnostic{}
	source := lspName
	for _, f := range analyze(text) {
		severity := f.Severity
		diagnostics = append(diagnostics, protocol.Diagnostic{
			Range:    findingRange(text, f),
			Severity: &severity,
			Source:   &source,
			Message:  f.Message,
		})
	}
	return diagnostics
}

func boolPtr(b bool) *bool {
	return &b
}
