package analytics

import (
	"time"

	"synthetic-audience/internal/domain"
)

// Aggregate reduce en serie los resultados ya completos a las metricas del run.
// Es pura: mismo input, mismas metricas. Ninguna reduccion falla con input vacio.
func Aggregate(results []domain.ExecutionResult, totalPersonas int, elapsed time.Duration) domain.ExperimentMetrics {
	var (
		successful   int
		failed       int
		sentimentSum float64
		tokens       domain.TokenUsage
	)
	type archetypeAcc struct {
		sum   float64
		count int
	}
	byArchetype := make(map[string]archetypeAcc)

	for _, r := range results {
		if !r.Succeeded() {
			failed++
			continue
		}
		successful++
		sentimentSum += r.Sentiment
		tokens = tokens.Add(r.Tokens)

		acc := byArchetype[r.ArchetypeName]
		acc.sum += r.Sentiment
		acc.count++
		byArchetype[r.ArchetypeName] = acc
	}

	avg := 0.0
	if successful > 0 {
		avg = Round(sentimentSum/float64(successful), 3)
	}

	archetypeSentiments := make(map[string]float64, len(byArchetype))
	for name, acc := range byArchetype {
		archetypeSentiments[name] = Round(acc.sum/float64(acc.count), 3)
	}

	return domain.ExperimentMetrics{
		TotalPersonas:       totalPersonas,
		SuccessfulResponses: successful,
		FailedResponses:     failed,
		AvgSentiment:        avg,
		ArchetypeSentiments: archetypeSentiments,
		TotalTokens:         tokens,
		ElapsedSeconds:      Round(elapsed.Seconds(), 2),
	}
}
