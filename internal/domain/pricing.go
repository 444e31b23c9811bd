package domain

// PriceQuadruple son las cuatro respuestas Van Westendorp de un encuestado.
// No se exige orden entre los campos.
type PriceQuadruple struct {
	TooCheap     float64 `json:"too_cheap"`
	Bargain      float64 `json:"bargain"`
	Expensive    float64 `json:"expensive"`
	TooExpensive float64 `json:"too_expensive"`
}

// Ordered reporta si too_cheap <= bargain <= expensive <= too_expensive.
// Es informativo: los valores desordenados se aceptan igual.
func (q PriceQuadruple) Ordered() bool {
	return q.TooCheap <= q.Bargain && q.Bargain <= q.Expensive && q.Expensive <= q.TooExpensive
}

// CumulativePoint es una fila de la tabla acumulada; las fracciones estan en [0,1].
type CumulativePoint struct {
	Price        float64 `json:"price"`
	TooCheap     float64 `json:"too_cheap"`
	Bargain      float64 `json:"bargain"`
	Expensive    float64 `json:"expensive"`
	TooExpensive float64 `json:"too_expensive"`
}

type PriceRange struct {
	Low  *float64 `json:"low"`
	High *float64 `json:"high"`
}

// PricePoints es el desglose compacto por arquetipo.
type PricePoints struct {
	OPP *float64 `json:"opp"`
	IPP *float64 `json:"ipp"`
	PMC *float64 `json:"pmc"`
	PME *float64 `json:"pme"`
}

// PriceSensitivity es el resultado completo del analisis Van Westendorp.
type PriceSensitivity struct {
	OptimalPricePoint            *float64               `json:"optimal_price_point"`
	IndifferencePricePoint       *float64               `json:"indifference_price_point"`
	PointOfMarginalCheapness     *float64               `json:"point_of_marginal_cheapness"`
	PointOfMarginalExpensiveness *float64               `json:"point_of_marginal_expensiveness"`
	AcceptablePriceRange         PriceRange             `json:"acceptable_price_range"`
	CumulativeData               []CumulativePoint      `json:"cumulative_data"`
	ByArchetype                  map[string]PricePoints `json:"by_archetype"`
}

// Points devuelve los cuatro precios nombrados en forma compacta.
func (p PriceSensitivity) Points() PricePoints {
	return PricePoints{
		OPP: p.OptimalPricePoint,
		IPP: p.IndifferencePricePoint,
		PMC: p.PointOfMarginalCheapness,
		PME: p.PointOfMarginalExpensiveness,
	}
}
