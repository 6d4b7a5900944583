package vm

import (
	"fmt"
	"strings"

	"github.com/Quantum-Kayak/Skive/compiler"
)

// Guide returns the language reference printed by !guide!.
func Guide() string {
	var b strings.Builder
	b.WriteString("=== SKIVE GUIDE ===\n")

	byGroup := make(map[string][]compiler.Op)
	for _, op := range compiler.Ops() {
		g := op.Info().Group
		byGroup[g] = append(byGroup[g], op)
	}

	for _, group := range compiler.Groups() {
		fmt.Fprintf(&b, "%s:\n", group)
		for _, op := range byGroup[group] {
			info := op.Info()
			fmt.Fprintf(&b, "  %-22s: %s\n", info.Syntax, info.Doc)
		}
		b.WriteString("\n")
	}

	b.WriteString("Macros & comments:\n")
	fmt.Fprintf(&b, "  %-22s: %s\n", "(name)={...}", "Define a macro")
	fmt.Fprintf(&b, "  %-22s: %s\n", "(name)", "Expand a macro")
	fmt.Fprintf(&b, "  %-22s: %s\n", "``` ... ```", "Block comment")
	b.WriteString("===================\n")
	return b.String()
}
