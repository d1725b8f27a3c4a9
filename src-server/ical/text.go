package ical

import "strings"

// Escape a plain text value for use in an iCalendar TEXT property
// (RFC 5545 §3.3.11).
func EscapeText(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, ";", `\;`)
	s = strings.ReplaceAll(s, ",", `\,`)
	s = strings.ReplaceAll(s, "\n", `\n`)
	return s
}

// Reverse of EscapeText. Values coming off the wire keep their escape
// sequences until normalization; this is what normalization calls.
func UnescapeText(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] != '\\' || i == len(s)-1 {
			sb.WriteByte(s[i])
			continue
		}
		i++
		switch s[i] {
		case 'n', 'N':
			sb.WriteByte('\n')
		case ',', ';', '\\':
			sb.WriteByte(s[i])
		default:
			sb.WriteByte('\\')
			sb.WriteByte(s[i])
		}
	}
	return sb.String()
}

// Transform a normal writer into a writer that folds long content lines at
// 75 octets with a leading space on continuation lines (RFC 5545 §3.1).
func foldWriter(writer func(string) (int, error)) func(string) (int, error) {
	return func(str string) (int, error) {
		if len(str) <= 75 {
			if n, err := writer(str); err != nil {
				return n, err
			}
			return len(str), nil
		}

		// the input always carries its own trailing newline; fold the body
		body := strings.TrimSuffix(str, "\n")
		for i := 0; i < len(body); {
			end := i + 75
			if end >= len(body) {
				end = len(body)
			} else {
				// never split a multi-byte character across the fold
				for end > i && body[end]&0xC0 == 0x80 {
					end--
				}
			}
			line := body[i:end]
			if i > 0 {
				line = " " + line
			}
			if n, err := writer(line + "\n"); err != nil {
				return n, err
			}
			i = end
		}
		return len(str), nil
	}
}
