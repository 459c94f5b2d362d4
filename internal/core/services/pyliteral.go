package services

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

// pythonLiteralToJSON rewrites a Python literal (lists, dicts, strings,
// numbers, True/False/None) as JSON. Models asked for a list of records
// often answer in Python syntax: single-quoted strings, capitalised
// booleans, tuples and trailing commas.
//
// The output is not validated here; json.Unmarshal does that.
func pythonLiteralToJSON(src string) (string, error) {
	var out strings.Builder
	out.Grow(len(src))

	for i := 0; i < len(src); {
		c := src[i]
		switch {
		case c == '\'' || c == '"':
			s, n, err := readPythonString(src[i:])
			if err != nil {
				return "", err
			}
			writeJSONString(&out, s)
			i += n

		case c == ']' || c == '}' || c == ')':
			trimTrailingComma(&out)
			if c == ')' {
				c = ']'
			}
			out.WriteByte(c)
			i++

		case c == '(':
			out.WriteByte('[')
			i++

		case isIdentStart(c):
			j := i
			for j < len(src) && isIdentPart(src[j]) {
				j++
			}
			switch word := src[i:j]; word {
			case "True":
				out.WriteString("true")
			case "False":
				out.WriteString("false")
			case "None":
				out.WriteString("null")
			default:
				out.WriteString(word)
			}
			i = j

		default:
			out.WriteByte(c)
			i++
		}
	}
	return out.String(), nil
}

// readPythonString decodes the quoted string at the start of s and
// returns its value and the number of bytes consumed.
func readPythonString(s string) (string, int, error) {
	quote := s[0]
	var val strings.Builder
	for i := 1; i < len(s); {
		c := s[i]
		switch {
		case c == quote:
			return val.String(), i + 1, nil
		case c == '\\' && i+1 < len(s):
			r, n := decodeEscape(s[i:])
			val.WriteString(r)
			i += n
		default:
			val.WriteByte(c)
			i++
		}
	}
	return "", 0, fmt.Errorf("unterminated string literal")
}

// decodeEscape decodes the backslash escape at the start of s.
// Unknown escapes are kept verbatim, as Python does.
func decodeEscape(s string) (string, int) {
	switch s[1] {
	case 'n':
		return "\n", 2
	case 't':
		return "\t", 2
	case 'r':
		return "\r", 2
	case 'b':
		return "\b", 2
	case 'f':
		return "\f", 2
	case '\\':
		return "\\", 2
	case '\'':
		return "'", 2
	case '"':
		return "\"", 2
	case '/':
		return "/", 2
	case 'x':
		if r, ok := hexRune(s, 2, 2); ok {
			return string(r), 4
		}
	case 'u':
		if r, ok := hexRune(s, 2, 4); ok {
			return string(r), 6
		}
	case 'U':
		if r, ok := hexRune(s, 2, 8); ok {
			return string(r), 10
		}
	}
	return s[:2], 2
}

// hexRune parses n hex digits of s starting at offset.
func hexRune(s string, offset, n int) (rune, bool) {
	if len(s) < offset+n {
		return 0, false
	}
	v, err := strconv.ParseUint(s[offset:offset+n], 16, 32)
	if err != nil || !utf8.ValidRune(rune(v)) {
		return 0, false
	}
	return rune(v), true
}

// writeJSONString writes s as a JSON string literal.
func writeJSONString(out *strings.Builder, s string) {
	out.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			out.WriteString(`\"`)
		case '\\':
			out.WriteString(`\\`)
		case '\n':
			out.WriteString(`\n`)
		case '\r':
			out.WriteString(`\r`)
		case '\t':
			out.WriteString(`\t`)
		default:
			if r < 0x20 {
				fmt.Fprintf(out, `\u%04x`, r)
			} else {
				out.WriteRune(r)
			}
		}
	}
	out.WriteByte('"')
}

// trimTrailingComma drops a comma (and the whitespace after it) that ends out.
func trimTrailingComma(out *strings.Builder) {
	s := out.String()
	trimmed := strings.TrimRight(s, " \t\r\n")
	if strings.HasSuffix(trimmed, ",") {
		out.Reset()
		out.WriteString(trimmed[:len(trimmed)-1])
	}
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}

// unescapeQuoted decodes the escapes of a string that arrived wrapped in
// double quotes, such as "[{\"feature\": ...}]" or "[]".
func unescapeQuoted(inner string) string {
	if s, err := strconv.Unquote(`"` + inner + `"`); err == nil {
		return s
	}
	var out strings.Builder
	for i := 0; i < len(inner); {
		if inner[i] == '\\' && i+1 < len(inner) {
			r, n := decodeEscape(inner[i:])
			out.WriteString(r)
			i += n
			continue
		}
		out.WriteByte(inner[i])
		i++
	}
	return out.String()
}
