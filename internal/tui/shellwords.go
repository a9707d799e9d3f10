package tui

import "unicode"

// splitShellWords splits an $EDITOR value into argv. Single quotes, double
// quotes and backslash escapes (outside single quotes) are honoured.
func splitShellWords(s string) []string {
	var (
		out      []string
		cur      []rune
		inSingle bool
		inDouble bool
		escaped  bool
	)
	flush := func() {
		if len(cur) > 0 {
			out = append(out, string(cur))
			cur = cur[:0]
		}
	}

	for _, r := range s {
		switch {
		case escaped:
			cur = append(cur, r)
			escaped = false
		case r == '\\' && !inSingle:
			escaped = true
		case r == '\'' && !inDouble:
			inSingle = !inSingle
		case r == '"' && !inSingle:
			inDouble = !inDouble
		case unicode.IsSpace(r) && !inSingle && !inDouble:
			flush()
		default:
			cur = append(cur, r)
		}
	}
	flush()
	return out
}
