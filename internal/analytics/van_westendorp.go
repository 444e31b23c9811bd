package analytics

import (
	"math"
	"sort"

	"synthetic-audience/internal/domain"
)

// MinPriceSamples es el minimo de cuadruplas validas para calcular curvas.
const MinPriceSamples = 2

const parallelEpsilon = 1e-10

type curve int

const (
	curveTooCheap curve = iota
	curveBargain
	curveExpensive
	curveTooExpensive
)

func curveValue(p domain.CumulativePoint, c curve) float64 {
	switch c {
	case curveTooCheap:
		return p.TooCheap
	case curveBargain:
		return p.Bargain
	case curveExpensive:
		return p.Expensive
	default:
		return p.TooExpensive
	}
}

// PriceSample es una cuadrupla etiquetada con su categoria (nombre de arquetipo).
type PriceSample struct {
	Category string
	Prices   domain.PriceQuadruple
}

// EmptyPriceSensitivity es la forma sin datos: todo nulo, tabla vacia.
func EmptyPriceSensitivity() domain.PriceSensitivity {
	return domain.PriceSensitivity{
		CumulativeData: []domain.CumulativePoint{},
		ByArchetype:    map[string]domain.PricePoints{},
	}
}

// PriceSamplesFromResults parsea las respuestas exitosas; las que no traen precios se descartan.
func PriceSamplesFromResults(results []domain.ExecutionResult) []PriceSample {
	var samples []PriceSample
	for _, r := range results {
		if !r.Succeeded() {
			continue
		}
		prices, ok := ParsePricePoints(r.ResponseText())
		if !ok {
			continue
		}
		samples = append(samples, PriceSample{Category: r.ArchetypeName, Prices: prices})
	}
	return samples
}

// AnalyzePriceSensitivity calcula las intersecciones globales y por categoria.
// Las categorias con menos de MinPriceSamples se omiten.
func AnalyzePriceSensitivity(samples []PriceSample) domain.PriceSensitivity {
	if len(samples) < MinPriceSamples {
		return EmptyPriceSensitivity()
	}

	all := make([]domain.PriceQuadruple, 0, len(samples))
	byCategory := make(map[string][]domain.PriceQuadruple)
	for _, s := range samples {
		all = append(all, s.Prices)
		byCategory[s.Category] = append(byCategory[s.Category], s.Prices)
	}

	overall := CalculateIntersections(all)
	for category, quads := range byCategory {
		if len(quads) < MinPriceSamples {
			continue
		}
		overall.ByArchetype[category] = CalculateIntersections(quads).Points()
	}
	return overall
}

// CalculateIntersections construye las curvas acumuladas y busca los cuatro cruces Van Westendorp.
func CalculateIntersections(quads []domain.PriceQuadruple) domain.PriceSensitivity {
	if len(quads) < MinPriceSamples {
		return EmptyPriceSensitivity()
	}

	axis := priceAxis(quads)
	cumulative := cumulativeTable(axis, quads)

	pmc := findIntersection(cumulative, curveTooCheap, curveExpensive)
	pme := findIntersection(cumulative, curveTooExpensive, curveBargain)

	low, high := axis[0], axis[len(axis)-1]
	if pmc != nil {
		low = *pmc
	}
	if pme != nil {
		high = *pme
	}

	return domain.PriceSensitivity{
		OptimalPricePoint:            findIntersection(cumulative, curveTooExpensive, curveTooCheap),
		IndifferencePricePoint:       findIntersection(cumulative, curveExpensive, curveBargain),
		PointOfMarginalCheapness:     pmc,
		PointOfMarginalExpensiveness: pme,
		AcceptablePriceRange: domain.PriceRange{
			Low:  roundPtr(low, 2),
			High: roundPtr(high, 2),
		},
		CumulativeData: cumulative,
		ByArchetype:    map[string]domain.PricePoints{},
	}
}

// priceAxis son todos los valores distintos de las cuatro preguntas, ordenados.
func priceAxis(quads []domain.PriceQuadruple) []float64 {
	seen := make(map[float64]struct{}, len(quads)*4)
	axis := make([]float64, 0, len(quads)*4)
	for _, q := range quads {
		for _, v := range [...]float64{q.TooCheap, q.Bargain, q.Expensive, q.TooExpensive} {
			if _, ok := seen[v]; ok {
				continue
			}
			seen[v] = struct{}{}
			axis = append(axis, v)
		}
	}
	sort.Float64s(axis)
	return axis
}

// cumulativeTable: "barato"/"ganga" cuentan respuestas >= p, "caro"/"demasiado caro" respuestas <= p.
func cumulativeTable(axis []float64, quads []domain.PriceQuadruple) []domain.CumulativePoint {
	n := float64(len(quads))
	table := make([]domain.CumulativePoint, 0, len(axis))
	for _, price := range axis {
		var tooCheap, bargain, expensive, tooExpensive int
		for _, q := range quads {
			if q.TooCheap >= price {
				tooCheap++
			}
			if q.Bargain >= price {
				bargain++
			}
			if q.Expensive <= price {
				expensive++
			}
			if q.TooExpensive <= price {
				tooExpensive++
			}
		}
		table = append(table, domain.CumulativePoint{
			Price:        price,
			TooCheap:     Round(float64(tooCheap)/n, 4),
			Bargain:      Round(float64(bargain)/n, 4),
			Expensive:    Round(float64(expensive)/n, 4),
			TooExpensive: Round(float64(tooExpensive)/n, 4),
		})
	}
	return table
}

// findIntersection recorre muestras consecutivas buscando un cambio de signo en (a - b)
// o un cero exacto; interpola linealmente el precio del cruce. nil si no hay cruce.
func findIntersection(points []domain.CumulativePoint, a, b curve) *float64 {
	for i := 0; i+1 < len(points); i++ {
		a1, b1 := curveValue(points[i], a), curveValue(points[i], b)
		a2, b2 := curveValue(points[i+1], a), curveValue(points[i+1], b)
		diff1 := a1 - b1
		diff2 := a2 - b2

		if diff1*diff2 < 0 {
			p1, p2 := points[i].Price, points[i+1].Price
			denom := (a2 - a1) - (b2 - b1)
			if math.Abs(denom) < parallelEpsilon {
				return roundPtr((p1+p2)/2, 2)
			}
			t := (b1 - a1) / denom
			return roundPtr(p1+t*(p2-p1), 2)
		}

		if math.Abs(diff1) < parallelEpsilon {
			return roundPtr(points[i].Price, 2)
		}
	}

	if n := len(points); n > 0 {
		last := points[n-1]
		if math.Abs(curveValue(last, a)-curveValue(last, b)) < parallelEpsilon {
			return roundPtr(last.Price, 2)
		}
	}
	return nil
}
