package compiler

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestPreprocessMacros(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"simple", "(inc)={+}(inc)(inc).", "++."},
		{"indirect", "(a)={+}(b)={(a)(a)}(b)", "++"},
		{"declared after use", "(x)(x)={-}", "-"},
		{"unused", "(u)={+++}>", ">"},
		{"unknown use stays", "(nope).", "(nope)."},
		{"not a declaration", "(a) ={+}", "(a)={+}"},
		{"body stops at first brace", "(m)={\\tp{a}}(m)", `}\tp{a`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pp, err := Preprocess(tt.src)
			if err != nil {
				t.Fatalf("Preprocess(%q) error: %v", tt.src, err)
			}
			if got := string(pp.Code); got != tt.want {
				t.Errorf("Preprocess(%q) = %q, want %q", tt.src, got, tt.want)
			}
		})
	}
}

func TestPreprocessMacroTable(t *testing.T) {
	pp, err := Preprocess("(a)={+}(b)={(a)(a)}(b)")
	if err != nil {
		t.Fatal(err)
	}
	if len(pp.Macros) != 2 || pp.Macros["a"] != "+" || pp.Macros["b"] != "(a)(a)" {
		t.Errorf("Macros = %v", pp.Macros)
	}
	if pp.Passes != 2 {
		t.Errorf("Passes = %d, want 2", pp.Passes)
	}
	if pp.Origins != nil {
		t.Error("Origins should be dropped after expansion")
	}
}

func TestPreprocessRecursiveMacro(t *testing.T) {
	_, err := Preprocess("(r)={+(r)}(r)")
	if !errors.Is(err, ErrMacroLimit) {
		t.Fatalf("err = %v, want ErrMacroLimit", err)
	}
}

func TestPreprocessDoublingMacro(t *testing.T) {
	_, err := Preprocess("(d)={(d)(d)}(d)")
	if !errors.Is(err, ErrMacroLimit) {
		t.Fatalf("err = %v, want ErrMacroLimit", err)
	}
}

func TestPreprocessDeepChain(t *testing.T) {
	// Each pass may resolve only one level of this chain, which still
	// finishes inside the pass limit.
	var b strings.Builder
	b.WriteString("(m0)={+}")
	for i := 1; i < 49; i++ {
		fmt.Fprintf(&b, "(m%d)={(m%d)}", i, i-1)
	}
	b.WriteString("(m48)")

	pp, err := Preprocess(b.String())
	if err != nil {
		t.Fatalf("Preprocess error: %v", err)
	}
	if string(pp.Code) != "+" {
		t.Errorf("Code = %q, want +", pp.Code)
	}
}

func TestPreprocessComments(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"block", "+```ignore [ this```-", "+-"},
		{"two blocks", "```a```+```b```.", "+."},
		{"unterminated", "+```never closed .", "+"},
		{"whitespace", " + \n\t> \r\n .", "+>."},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pp, err := Preprocess(tt.src)
			if err != nil {
				t.Fatal(err)
			}
			if got := string(pp.Code); got != tt.want {
				t.Errorf("Preprocess(%q) = %q, want %q", tt.src, got, tt.want)
			}
		})
	}
}

func TestPreprocessCommentsAfterExpansion(t *testing.T) {
	// Macros expand before comments are stripped, so a macro can be used
	// inside a comment and a body can open one.
	pp, err := Preprocess("(c)={```}+(c)-(c).")
	if err != nil {
		t.Fatal(err)
	}
	if got := string(pp.Code); got != "+." {
		t.Errorf("Code = %q, want +.", got)
	}
}

func TestPreprocessOrigins(t *testing.T) {
	src := "(m)={+} >\n```c``` ."
	pp, err := Preprocess(src)
	if err != nil {
		t.Fatal(err)
	}
	if string(pp.Code) != ">." {
		t.Fatalf("Code = %q", pp.Code)
	}
	want := []int{8, 18}
	if len(pp.Origins) != len(want) {
		t.Fatalf("Origins = %v, want %v", pp.Origins, want)
	}
	for i := range want {
		if pp.Origins[i] != want[i] {
			t.Errorf("Origins[%d] = %d, want %d", i, pp.Origins[i], want[i])
		}
		if src[pp.Origins[i]] != pp.Code[i] {
			t.Errorf("Origins[%d] points at %q, want %q", i, src[pp.Origins[i]], pp.Code[i])
		}
	}
}
