package dist

import (
	"bytes"
	"strings"
	"testing"

	"github.com/fxamacker/cbor/v2"

	"github.com/Quantum-Kayak/Skive/vm"
)

func runState(t *testing.T, src string) vm.State {
	t.Helper()
	e := vm.NewEngine()
	e.SetInput(strings.NewReader(""))
	e.SetOutput(&bytes.Buffer{})
	if err := e.Exec(src); err != nil {
		t.Fatalf("Exec: %v", err)
	}
	return e.State()
}

func TestState_CBORRoundTrip(t *testing.T) {
	s := runState(t, `+++label{a}^<-label{b}\vset{v}\pb(v,a)\pb(v,b)\save{s}vv`)

	data, err := MarshalState(NewStateRecord("demo.sk", s))
	if err != nil {
		t.Fatalf("MarshalState: %v", err)
	}
	rec, err := UnmarshalState(data)
	if err != nil {
		t.Fatalf("UnmarshalState: %v", err)
	}
	if rec.Program != "demo.sk" {
		t.Errorf("Program = %q", rec.Program)
	}

	got := rec.State()
	if got.Pointer != (vm.Coord{Row: 1, Col: -1}) {
		t.Errorf("Pointer = %v, want (1,-1)", got.Pointer)
	}
	if got.Value(vm.Coord{}) != 3 || got.Value(vm.Coord{Row: -1, Col: -1}) != 255 {
		t.Errorf("Cells = %v", got.Cells)
	}
	if got.Labels["b"] != (vm.Coord{Row: -1, Col: -1}) {
		t.Errorf("Labels = %v", got.Labels)
	}
	if !bytes.Equal(got.Vectors["v"], []byte{3, 255}) {
		t.Errorf("Vectors = %v", got.Vectors)
	}
	if len(got.Snapshots["s"]) != 2 {
		t.Errorf("Snapshots = %v", got.Snapshots)
	}
}

func TestMarshalState_Canonical(t *testing.T) {
	src := `label{z}label{a}label{m}\vset{q}\vset{b}\save{x}\save{y}+`
	first, err := MarshalState(NewStateRecord("", runState(t, src)))
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 5; i++ {
		again, err := MarshalState(NewStateRecord("", runState(t, src)))
		if err != nil {
			t.Fatal(err)
		}
		if !bytes.Equal(first, again) {
			t.Fatal("equal states must encode to equal bytes")
		}
	}
}

func TestMarshalState_EmptyEngine(t *testing.T) {
	data, err := MarshalState(NewStateRecord("", runState(t, "")))
	if err != nil {
		t.Fatal(err)
	}
	rec, err := UnmarshalState(data)
	if err != nil {
		t.Fatal(err)
	}
	s := rec.State()
	if len(s.Cells) != 0 || len(s.Labels) != 0 || s.Pointer != (vm.Coord{}) {
		t.Errorf("state = %+v, want empty", s)
	}
}

func TestUnmarshalState_WrongVersion(t *testing.T) {
	data, err := cbor.Marshal(&StateRecord{Version: FormatVersion + 1})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := UnmarshalState(data); err == nil {
		t.Error("expected error for unsupported version")
	}
}

func TestUnmarshalState_InvalidData(t *testing.T) {
	if _, err := UnmarshalState([]byte{0xff, 0x00}); err == nil {
		t.Error("expected error for invalid CBOR")
	}
}
