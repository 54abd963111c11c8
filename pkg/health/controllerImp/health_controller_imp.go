package controllerImp

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"canaswarm/entities"
	"canaswarm/pkg/storage/repository"
)

var appStart = time.Now()

// StatsSource reports storage counters.
type StatsSource interface {
	Stats() (*entities.StorageStats, error)
}

type HealthCtrl struct {
	stats  StatsSource
	pinger repository.Pinger
}

// NewHealthCtrl builds the health handler. pinger may be nil for stores
// without a medium to probe.
func NewHealthCtrl(stats StatsSource, pinger repository.Pinger) *HealthCtrl {
	return &HealthCtrl{stats: stats, pinger: pinger}
}

func (h *HealthCtrl) Health(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 800*time.Millisecond)
	defer cancel()

	type sub struct {
		OK  bool   `json:"ok"`
		Err string `json:"err,omitempty"`
	}

	storage := sub{OK: true}
	if h.pinger != nil {
		if err := h.pinger.Ping(ctx); err != nil {
			storage = sub{Err: "ping: " + err.Error()}
		}
	}

	fields := map[string]any{}
	st, err := h.stats.Stats()
	if err != nil {
		storage = sub{Err: "stats: " + err.Error()}
	} else {
		fields["backend"] = st.Backend
		fields["stored_fields"] = st.TotalFields
		fields["total_decisions"] = st.TotalDecisions
	}

	status := http.StatusOK
	state := "healthy"
	if !storage.OK {
		status = http.StatusServiceUnavailable
		state = "unhealthy"
	}

	return c.JSON(status, map[string]any{
		"status":     state,
		"uptime_sec": int(time.Since(appStart).Seconds()),
		"checks": map[string]any{
			"storage": storage,
		},
		"storage": fields,
		"time":    time.Now().UTC().Format(time.RFC3339),
	})
}
