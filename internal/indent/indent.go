// Package indent keeps generated multi-line text readable in source while
// emitting it without the source indentation.
package indent

import (
	"fmt"
	"strings"
	"unicode"
)

// Template interpolates values between literals and strips the common
// indentation from the result. values[i] follows literals[i]. Missing
// values and nil render as nothing while 0 and false are printed. String
// slices are joined with no separator.
func Template(literals []string, values ...interface{}) string {
	var sb strings.Builder

	for i, lit := range literals {
		sb.WriteString(lit)

		if i < len(values) {
			sb.WriteString(stringify(values[i]))
		}
	}

	return Strip(sb.String())
}

func stringify(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case []string:
		return strings.Join(val, "")
	case []interface{}:
		var sb strings.Builder
		for _, item := range val {
			sb.WriteString(stringify(item))
		}

		return sb.String()
	case fmt.Stringer:
		return val.String()
	default:
		return fmt.Sprint(val)
	}
}

// Strip removes the leading whitespace shared by every non-blank line of s.
// Blank lines do not take part in finding that prefix and are kept as they
// are, except at the very start and end of s where they are dropped.
func Strip(s string) string {
	lines := strings.Split(s, "\n")

	start, end := 0, len(lines)
	for start < end && isBlank(lines[start]) {
		start++
	}

	for end > start && isBlank(lines[end-1]) {
		end--
	}

	lines = lines[start:end]

	prefix, found := "", false

	for _, line := range lines {
		if isBlank(line) {
			continue
		}

		lead := leading(line)
		if !found {
			prefix, found = lead, true

			continue
		}

		prefix = common(prefix, lead)
	}

	if prefix != "" {
		for i, line := range lines {
			if isBlank(line) {
				continue
			}

			lines[i] = strings.TrimPrefix(line, prefix)
		}
	}

	return strings.Join(lines, "\n")
}

func isBlank(line string) bool {
	return strings.TrimSpace(line) == ""
}

func leading(line string) string {
	return line[:len(line)-len(strings.TrimLeftFunc(line, unicode.IsSpace))]
}

func common(a, b string) string {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}

	i := 0
	for i < n && a[i] == b[i] {
		i++
	}

	return a[:i]
}
