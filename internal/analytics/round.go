package analytics

import (
	"math"
	"strconv"
)

// Round redondea a places decimales sobre el valor binario exacto, con empates al par.
// Pasa por strconv para no arrastrar el error de multiplicar por 10^n.
func Round(x float64, places int) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return x
	}
	v, err := strconv.ParseFloat(strconv.FormatFloat(x, 'f', places, 64), 64)
	if err != nil {
		return x
	}
	if v == 0 {
		return 0
	}
	return v
}

func roundPtr(x float64, places int) *float64 {
	v := Round(x, places)
	return &v
}
