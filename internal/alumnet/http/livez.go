package http

import (
	"maps"
	"net/http"
	"slices"
	"time"

	"github.com/aussiebroadwan/alumnet/pkg/alumnetsdk"
	"github.com/aussiebroadwan/alumnet/pkg/httpx"
)

// Worker is a background loop whose death makes the process unhealthy: the
// mail outbox dispatcher and the invite housekeeping sweeper.
type Worker interface {
	Running() bool
}

// LivezHandler godoc
//
//	@Summary		Liveness probe
//	@Description	Returns 200 while the process is serving and every background worker (mail dispatcher, housekeeping) is running. A stopped worker means queued invitations are no longer sent, so the probe fails with 503.
//	@Tags			Health
//	@Produce		json
//	@Success		200	{object}	alumnetsdk.HealthResponse	"status, uptime, version, workers"
//	@Failure		503	{object}	alumnetsdk.HealthResponse	"a background worker stopped"
//	@Router			/livez [get].
func LivezHandler(startTime time.Time, version string, workers map[string]Worker) http.HandlerFunc {
	names := slices.Sorted(maps.Keys(workers))

	return func(w http.ResponseWriter, r *http.Request) {
		res := alumnetsdk.HealthResponse{
			Status:  "ok",
			Uptime:  time.Since(startTime).Round(time.Second).String(),
			Version: version,
		}
		code := http.StatusOK

		if len(names) > 0 {
			res.Checks = &alumnetsdk.HealthChecks{Workers: make(map[string]string, len(names))}
			for _, name := range names {
				state := "ok"
				if !workers[name].Running() {
					state = "stopped"
					res.Status = "degraded"
					code = http.StatusServiceUnavailable
				}
				res.Checks.Workers[name] = state
			}
		}

		httpx.WriteJSON(w, code, res)
	}
}
