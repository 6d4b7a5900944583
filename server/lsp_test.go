package server

import (
	"errors"
	"os"
	"strings"
	"testing"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/Quantum-Kayak/Skive/vm"
)

// ---------------------------------------------------------------------------
// Shared test infrastructure
// ---------------------------------------------------------------------------

var testLSP *LspServer

func TestMain(m *testing.M) {
	testLSP = NewLSP(vm.NewEngine())

	code := m.Run()

	testLSP.worker.Stop()
	os.Exit(code)
}

// ---------------------------------------------------------------------------
// EngineWorker
// ---------------------------------------------------------------------------

func TestEngineWorker_Do(t *testing.T) {
	w := NewEngineWorker(vm.NewEngine())
	defer w.Stop()

	result, err := w.Do(func(e *vm.Engine) any {
		e.SetOutput(&strings.Builder{})
		if err := e.Exec("+++>++"); err != nil {
			return err
		}
		return e.Pointer()
	})
	if err != nil {
		t.Fatalf("Do returned error: %v", err)
	}
	if got := result.(vm.Coord); got != (vm.Coord{Row: 0, Col: 1}) {
		t.Errorf("pointer = %+v, want (0,1)", got)
	}
}

func TestEngineWorker_RecoversPanic(t *testing.T) {
	w := NewEngineWorker(vm.NewEngine())
	defer w.Stop()

	_, err := w.Do(func(e *vm.Engine) any {
		panic("boom")
	})
	if err == nil || !strings.Contains(err.Error(), "boom") {
		t.Errorf("err = %v, want recovered panic", err)
	}

	// The worker keeps serving after a panic.
	result, err := w.Do(func(e *vm.Engine) any { return 7 })
	if err != nil || result.(int) != 7 {
		t.Errorf("Do after panic = %v, %v", result, err)
	}
}

func TestEngineWorker_DoAfterStop(t *testing.T) {
	w := NewEngineWorker(vm.NewEngine())
	w.Stop()
	w.Stop()

	ran := false
	_, err := w.Do(func(e *vm.Engine) any {
		ran = true
		return nil
	})
	if !errors.Is(err, ErrWorkerStopped) {
		t.Errorf("err = %v, want ErrWorkerStopped", err)
	}
	if ran {
		t.Error("fn ran after Stop")
	}
}

func TestLSP_ExecuteAfterShutdown(t *testing.T) {
	s := NewLSP(vm.NewEngine())
	s.setDoc("file:///late.sk", "+.")
	if err := s.shutdown(nil); err != nil {
		t.Fatal(err)
	}
	if err := s.shutdown(nil); err != nil {
		t.Fatalf("second shutdown: %v", err)
	}

	_, err := s.workspaceExecuteCommand(nil, &protocol.ExecuteCommandParams{
		Command:   RunCommand,
		Arguments: []any{"file:///late.sk"},
	})
	if !errors.Is(err, ErrWorkerStopped) {
		t.Errorf("err = %v, want ErrWorkerStopped", err)
	}
}

// ---------------------------------------------------------------------------
// Running documents
// ---------------------------------------------------------------------------

func TestLSP_Run(t *testing.T) {
	out, err := testLSP.run("+++++++[>++++++++++<-]>-----.", "")
	if err != nil {
		t.Fatalf("run error: %v", err)
	}
	if out != "A" {
		t.Errorf("output = %q, want A", out)
	}
}

func TestLSP_RunInput(t *testing.T) {
	out, err := testLSP.run("?.>?.", "Z")
	if err != nil {
		t.Fatalf("run error: %v", err)
	}
	if out != "Z\n" {
		t.Errorf("output = %q, want %q", out, "Z\n")
	}
}

func TestLSP_RunStartsClean(t *testing.T) {
	if _, err := testLSP.run("+++", ""); err != nil {
		t.Fatal(err)
	}
	out, err := testLSP.run("+.", "")
	if err != nil {
		t.Fatal(err)
	}
	if out != "\x01" {
		t.Errorf("output = %q, want a fresh grid", out)
	}
}

func TestLSP_RunStepLimit(t *testing.T) {
	s := NewLSP(vm.NewEngine())
	defer s.worker.Stop()
	s.RunSteps = 100

	out, err := s.run(".+[]", "")
	if !errors.Is(err, vm.ErrStepLimit) {
		t.Fatalf("err = %v, want ErrStepLimit", err)
	}
	if out != "\x00" {
		t.Errorf("output = %q, want output before the limit", out)
	}
}

func TestLSP_ExecuteCommand(t *testing.T) {
	uri := "file:///hello.sk"
	testLSP.setDoc(protocol.DocumentUri(uri), "?.")
	defer func() {
		testLSP.mu.Lock()
		delete(testLSP.docs, uri)
		testLSP.mu.Unlock()
	}()

	result, err := testLSP.workspaceExecuteCommand(nil, &protocol.ExecuteCommandParams{
		Command:   RunCommand,
		Arguments: []any{uri, "q"},
	})
	if err != nil {
		t.Fatalf("execute error: %v", err)
	}
	if result != "q" {
		t.Errorf("result = %v, want q", result)
	}
}

func TestLSP_ExecuteCommandErrors(t *testing.T) {
	tests := []*protocol.ExecuteCommandParams{
		{Command: "other"},
		{Command: RunCommand},
		{Command: RunCommand, Arguments: []any{42}},
		{Command: RunCommand, Arguments: []any{"file:///missing.sk"}},
	}
	for _, params := range tests {
		if _, err := testLSP.workspaceExecuteCommand(nil, params); err == nil {
			t.Errorf("execute %+v succeeded, want error", params)
		}
	}
}

// ---------------------------------------------------------------------------
// Diagnostics and definitions
// ---------------------------------------------------------------------------

func TestDiagnose(t *testing.T) {
	if d := diagnose("+."); d == nil || len(d) != 0 {
		t.Errorf("diagnose clean = %v, want empty non-nil", d)
	}

	d := diagnose("+\n]")
	if len(d) != 1 {
		t.Fatalf("got %d diagnostics, want 1", len(d))
	}
	if *d[0].Severity != protocol.DiagnosticSeverityError {
		t.Errorf("severity = %v, want error", *d[0].Severity)
	}
	if d[0].Range.Start.Line != 1 || d[0].Range.Start.Character != 0 {
		t.Errorf("range start = %+v, want 1:0", d[0].Range.Start)
	}
	if *d[0].Source != lspName {
		t.Errorf("source = %q", *d[0].Source)
	}
}

func TestDefinitions(t *testing.T) {
	text := "label{a}\n+label{a}"
	locs := definitions("file:///x.sk", text, "a")
	if len(locs) != 2 {
		t.Fatalf("got %d locations, want 2", len(locs))
	}
	if locs[1].Range.Start.Line != 1 || locs[1].Range.Start.Character != 7 {
		t.Errorf("second location = %+v, want 1:7", locs[1].Range.Start)
	}
	if len(definitions("file:///x.sk", text, "b")) != 0 {
		t.Error("unknown label should have no definition")
	}
}

// ---------------------------------------------------------------------------
// Document synchronization state
// ---------------------------------------------------------------------------

func TestLSP_DocumentStore(t *testing.T) {
	lsp := &LspServer{
		worker: testLSP.worker,
		docs:   make(map[string]string),
	}

	lsp.setDoc("file:///test.sk", "+.")
	text, ok := lsp.doc("file:///test.sk")
	if !ok || text != "+." {
		t.Errorf("doc = %q, %v; want +., true", text, ok)
	}

	lsp.mu.Lock()
	delete(lsp.docs, "file:///test.sk")
	lsp.mu.Unlock()

	if _, ok := lsp.doc("file:///test.sk"); ok {
		t.Error("document should be removed after close")
	}
}

func TestBoolPtr(t *testing.T) {
	p := boolPtr(true)
	if p == nil || *p != true {
		t.Errorf("boolPtr(true) = %v", p)
	}
}
