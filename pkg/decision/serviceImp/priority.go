package serviceImp

import (
	"fmt"
	"math"

	"canaswarm/entities"
)

const (
	maxScore = 10.0
	minScore = 0.0
)

// calculatePriority classifies the whole field. Rows are checked top-down
// and the first match wins.
func calculatePriority(critical, warning int, avgScore float64) entities.PriorityLevel {
	switch {
	case critical > 0:
		score := math.Min(9.0+math.Min(float64(critical)*0.5, 1.0), maxScore)
		// a critical field never ranks below the same field without its critical zones
		score = math.Max(score, calculatePriority(0, warning, avgScore).Score)
		return entities.PriorityLevel{
			Level:  entities.PriorityCritical,
			Score:  clampScore(score),
			Reason: fmt.Sprintf("%d critical zone(s) require immediate intervention", critical),
		}
	case warning > 1:
		return entities.PriorityLevel{
			Level:  entities.PriorityHigh,
			Score:  clampScore(math.Min(7.0+math.Min(float64(warning)*0.5, 2.0), maxScore)),
			Reason: fmt.Sprintf("%d zone(s) require intervention", warning),
		}
	case warning == 1:
		return entities.PriorityLevel{
			Level:  entities.PriorityMedium,
			Score:  clampScore(math.Min(5.0+avgScore/2, maxScore)),
			Reason: "1 zone requires attention",
		}
	default:
		return entities.PriorityLevel{
			Level:  entities.PriorityLow,
			Score:  clampScore(avgScore),
			Reason: "Field performing optimally",
		}
	}
}

func clampScore(v float64) float64 {
	if math.IsNaN(v) {
		return minScore
	}
	return math.Max(minScore, math.Min(v, maxScore))
}
