package analytics

import (
	"math"
	"strings"
	"unicode"
)

// Tablas de señales con peso. Son datos estaticos del proceso: nunca se mutan.
var positiveSignals = map[string]int{
	// fuertes
	"invest": 2, "excited": 2, "compelling": 2, "strong": 2,
	"excellent": 2, "impressive": 2, "outstanding": 2, "love": 2,
	"definitely": 2, "absolutely": 2, "confident": 2,
	// moderadas
	"interested": 1, "good": 1, "promising": 1, "potential": 1,
	"like": 1, "positive": 1, "solid": 1, "great": 1,
	"prefer": 1, "agree": 1, "recommend": 1, "support": 1,
	"valuable": 1, "useful": 1, "important": 1, "beneficial": 1,
	"opportunity": 1, "innovative": 1, "growth": 1, "traction": 1,
	"appealing": 1, "reasonable": 1, "fair": 1, "willing": 1,
	"upgrade": 1, "subscribe": 1, "adopt": 1,
}

var negativeSignals = map[string]int{
	// fuertes
	"pass": 2, "reject": 2, "terrible": 2, "awful": 2,
	"never": 2, "unacceptable": 2, "dealbreaker": 2, "overpriced": 2,
	"churn": 2, "cancel": 2, "leave": 2,
	// moderadas
	"concern": 1, "risk": 1, "worry": 1, "doubt": 1,
	"expensive": 1, "unclear": 1, "weak": 1, "problem": 1,
	"difficult": 1, "challenge": 1, "issue": 1, "missing": 1,
	"lack": 1, "insufficient": 1, "unlikely": 1, "hesitant": 1,
	"skeptical": 1, "cautious": 1, "limited": 1, "concerned": 1,
	"competitive": 1, "crowded": 1, "saturated": 1, "premature": 1,
	"confused": 1, "frustrated": 1, "disappointed": 1,
}

// ScoreSentiment devuelve un puntaje lexico en [-1, 1]; 0.0 si no hay ninguna señal.
func ScoreSentiment(text string) float64 {
	pos, neg := 0, 0
	for _, word := range tokenize(text) {
		pos += positiveSignals[word]
		neg += negativeSignals[word]
	}

	total := pos + neg
	if total == 0 {
		return 0.0
	}

	score := Round(float64(pos-neg)/float64(total), 2)
	return math.Max(-1.0, math.Min(1.0, score))
}

// tokenize separa en corridas maximas de letras. Las corridas con letras no ASCII no
// coinciden con ninguna tabla.
func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r)
	})
}
