package serviceImp

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"canaswarm/entities"
)

func TestCalculatePriority(t *testing.T) {
	tests := []struct {
		name     string
		critical int
		warning  int
		avg      float64
		level    entities.Priority
		score    float64
		reason   string
	}{
		{"one critical", 1, 0, 8, entities.PriorityCritical, 9.5, "1 critical zone(s) require immediate intervention"},
		{"critical caps at ten", 5, 3, 2, entities.PriorityCritical, 10, "5 critical zone(s) require immediate intervention"},
		{"two warnings", 0, 2, 6, entities.PriorityHigh, 8, "2 zone(s) require intervention"},
		{"warning bonus caps", 0, 7, 6, entities.PriorityHigh, 9, "7 zone(s) require intervention"},
		{"single warning", 0, 1, 6, entities.PriorityMedium, 8, "1 zone requires attention"},
		{"single warning caps", 0, 1, 14, entities.PriorityMedium, 10, "1 zone requires attention"},
		{"optimal field", 0, 0, 7.3, entities.PriorityLow, 7.3, "Field performing optimally"},
		{"optimal score clamped high", 0, 0, 12, entities.PriorityLow, 10, "Field performing optimally"},
		{"optimal score clamped low", 0, 0, -3, entities.PriorityLow, 0, "Field performing optimally"},
		{"single warning clamped low", 0, 1, -20, entities.PriorityMedium, 0, "1 zone requires attention"},
		{"critical keeps high baseline", 1, 0, 9.8, entities.PriorityCritical, 9.8, "1 critical zone(s) require immediate intervention"},
		{"critical floored at single warning score", 1, 1, 10, entities.PriorityCritical, 10, "1 critical zone(s) require immediate intervention"},
		{"critical above single warning score", 1, 1, 6, entities.PriorityCritical, 9.5, "1 critical zone(s) require immediate intervention"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := calculatePriority(tt.critical, tt.warning, tt.avg)
			assert.Equal(t, tt.level, got.Level)
			assert.InDelta(t, tt.score, got.Score, 1e-9)
			assert.Equal(t, tt.reason, got.Reason)
		})
	}
}

func TestPriorityMonotonicInCriticalZones(t *testing.T) {
	for _, avg := range []float64{-2, 0, 3.5, 8, 9.4, 9.9, 10, 15} {
		for warning := 0; warning <= 6; warning++ {
			prev := calculatePriority(0, warning, avg).Score
			for critical := 1; critical <= 8; critical++ {
				score := calculatePriority(critical, warning, avg).Score
				assert.GreaterOrEqual(t, score, prev, "avg=%v warning=%d critical=%d", avg, warning, critical)
				prev = score
			}
		}
	}
}

func TestPriorityScoreWithinBounds(t *testing.T) {
	for _, avg := range []float64{-100, -1, 0, 5, 10, 100} {
		for critical := 0; critical <= 4; critical++ {
			for warning := 0; warning <= 4; warning++ {
				s := calculatePriority(critical, warning, avg).Score
				assert.GreaterOrEqual(t, s, 0.0)
				assert.LessOrEqual(t, s, 10.0)
			}
		}
	}
}
