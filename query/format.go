package query

import "strings"

// Canonicalize collapses formatting differences: every line is trimmed and
// its whitespace runs squeezed to one space, blank lines are dropped and the
// rest joined with single spaces. Two statements that differ only in layout
// canonicalize to the same text.
func Canonicalize(sql string) string {
	lines := strings.Split(sql, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if fields := strings.Fields(line); len(fields) > 0 {
			out = append(out, strings.Join(fields, " "))
		}
	}
	return strings.Join(out, " ")
}

// dedent removes the indentation shared by every indented, non-blank line
// and trims the result. Lines that start at column zero do not take part in
// the minimum, so a template whose first line follows the opening quote
// still dedents its body.
func dedent(s string) string {
	lines := strings.Split(s, "\n")

	indent := -1
	for _, line := range lines {
		n := leadingSpace(line)
		if n == 0 || n == len(line) {
			continue
		}
		if indent < 0 || n < indent {
			indent = n
		}
	}

	if indent > 0 {
		for i, line := range lines {
			lines[i] = line[min(leadingSpace(line), indent):]
		}
		s = strings.Join(lines, "\n")
	}

	return strings.TrimSpace(s)
}

func leadingSpace(line string) int {
	return len(line) - len(strings.TrimLeft(line, " \t"))
}
