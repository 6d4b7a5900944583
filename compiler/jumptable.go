package compiler

// BuildJumpTable pairs every '[' in code with its ']' in a single pass. The
// returned map holds both directions. Nesting is matched by position only:
// brackets inside extended-command arguments count too.
func BuildJumpTable(code []byte) (map[int]int, error) {
	jumps := make(map[int]int)
	var stack []int

	for i, c := range code {
		switch c {
		case '[':
			stack = append(stack, i)
		case ']':
			if len(stack) == 0 {
				return nil, &BracketError{Char: ']', Index: i, Offset: -1}
			}
			open := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			jumps[open] = i
			jumps[i] = open
		}
	}

	if len(stack) > 0 {
		return nil, &BracketError{Char: '[', Index: stack[len(stack)-1], Offset: -1}
	}
	return jumps, nil
}
