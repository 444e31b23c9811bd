package analytics

import (
	"regexp"
	"strconv"
	"strings"

	"synthetic-audience/internal/domain"
)

const priceValuePattern = `\s*:\s*\$?\s*([\d,]+(?:\.\d{1,2})?)`

// tooSeparator acepta los mismos bytes que precededByToo.
const tooSeparator = `[_\s\v]`

var (
	tooExpensivePattern = regexp.MustCompile(`(?i)TOO` + tooSeparator + `EXPENSIVE` + priceValuePattern)
	expensivePattern    = regexp.MustCompile(`(?i)EXPENSIVE` + priceValuePattern)
	bargainPattern      = regexp.MustCompile(`(?i)BARGAIN` + priceValuePattern)
	tooCheapPattern     = regexp.MustCompile(`(?i)TOO` + tooSeparator + `CHEAP` + priceValuePattern)
)

// ParsePricePoints extrae las cuatro etiquetas Van Westendorp de una respuesta libre.
// Devuelve ok=false ("sin datos de precio") si falta alguna o no es numerica.
func ParsePricePoints(text string) (domain.PriceQuadruple, bool) {
	if strings.TrimSpace(text) == "" {
		return domain.PriceQuadruple{}, false
	}

	tooExpensive, ok := firstAmount(tooExpensivePattern, text)
	if !ok {
		return domain.PriceQuadruple{}, false
	}
	expensive, ok := standaloneExpensive(text)
	if !ok {
		return domain.PriceQuadruple{}, false
	}
	bargain, ok := firstAmount(bargainPattern, text)
	if !ok {
		return domain.PriceQuadruple{}, false
	}
	tooCheap, ok := firstAmount(tooCheapPattern, text)
	if !ok {
		return domain.PriceQuadruple{}, false
	}

	return domain.PriceQuadruple{
		TooCheap:     tooCheap,
		Bargain:      bargain,
		Expensive:    expensive,
		TooExpensive: tooExpensive,
	}, true
}

func firstAmount(re *regexp.Regexp, text string) (float64, bool) {
	m := re.FindStringSubmatch(text)
	if len(m) < 2 {
		return 0, false
	}
	return parseAmount(m[1])
}

// standaloneExpensive busca la primera etiqueta EXPENSIVE que no sea la cola de "TOO EXPENSIVE".
// RE2 no tiene lookbehind, asi que se revisan los 4 bytes previos a cada match.
func standaloneExpensive(text string) (float64, bool) {
	for _, m := range expensivePattern.FindAllStringSubmatchIndex(text, -1) {
		if precededByToo(text, m[0]) {
			continue
		}
		return parseAmount(text[m[2]:m[3]])
	}
	return 0, false
}

func precededByToo(text string, start int) bool {
	if start < 4 {
		return false
	}
	switch text[start-1] {
	case '_', ' ', '\t', '\n', '\r', '\f', '\v':
	default:
		return false
	}
	return strings.EqualFold(text[start-4:start-1], "too")
}

func parseAmount(raw string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.ReplaceAll(raw, ",", ""), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
