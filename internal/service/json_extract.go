package service

import "strings"

// extractFirstJSON devuelve el primer objeto ('{') o arreglo ('[') balanceado del texto,
// ignorando delimitadores dentro de strings. "" si no hay ninguno completo.
func extractFirstJSON(input string, open byte) string {
	var closing byte
	switch open {
	case '{':
		closing = '}'
	case '[':
		closing = ']'
	default:
		return ""
	}

	start := strings.IndexByte(input, open)
	if start == -1 {
		return ""
	}

	inString := false
	escape := false
	depth := 0

	for i := start; i < len(input); i++ {
		ch := input[i]

		if inString {
			if escape {
				escape = false
				continue
			}
			if ch == '\\' {
				escape = true
				continue
			}
			if ch == '"' {
				inString = false
			}
			continue
		}

		switch ch {
		case '"':
			inString = true
		case open:
			depth++
		case closing:
			depth--
			if depth == 0 {
				return input[start : i+1]
			}
			if depth < 0 {
				return ""
			}
		}
	}

	return ""
}
