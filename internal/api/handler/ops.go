// Package handler provides HTTP handlers for the Kango API.
package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/Isira-Kodikara/Kango-bus-app-sub000/internal/api/models"
	"github.com/Isira-Kodikara/Kango-bus-app-sub000/internal/api/response"
	"github.com/Isira-Kodikara/Kango-bus-app-sub000/internal/provider/resilience"
)

// readinessTimeout bounds each dependency check.
const readinessTimeout = 2 * time.Second

// Pinger is a dependency that can report its reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Dependency is a named readiness check, e.g. the database.
type Dependency struct {
	Name string
	Pinger
	// Optional dependencies degrade the service instead of failing readiness.
	Optional bool
}

// OpsHandler handles operational endpoints.
type OpsHandler struct {
	version      string
	buildTime    string
	dependencies []Dependency
	providers    *resilience.Registry
	now          func() time.Time
}

// NewOpsHandler creates a new OpsHandler. providers may be nil.
func NewOpsHandler(version, buildTime string, dependencies []Dependency, providers *resilience.Registry) *OpsHandler {
	return &OpsHandler{
		version:      version,
		buildTime:    buildTime,
		dependencies: dependencies,
		providers:    providers,
		now:          time.Now,
	}
}

// HealthCheck handles GET /v1/ops/health - liveness check.
func (h *OpsHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	health := models.Health{
		Status: models.HealthStatusOK,
		Time:   models.Timestamp(h.now()),
		Details: map[string]interface{}{
			"version":   h.version,
			"buildTime": h.buildTime,
		},
	}
	response.JSON(w, r, http.StatusOK, health)
}

// ReadinessCheck handles GET /v1/ops/ready. It fails with 503 when a
// required dependency cannot be reached.
func (h *OpsHandler) ReadinessCheck(w http.ResponseWriter, r *http.Request) {
	subsystems, status := h.checkDependencies(r.Context())

	health := models.Health{
		Status: status,
		Time:   models.Timestamp(h.now()),
	}
	if status != models.HealthStatusOK {
		details := make(map[string]interface{}, len(subsystems))
		for _, s := range subsystems {
			details[s.Name] = s.Status
		}
		health.Details = details
	}

	code := http.StatusOK
	if status == models.HealthStatusFail {
		code = http.StatusServiceUnavailable
	}
	response.JSON(w, r, code, health)
}

// SystemStatus handles GET /v1/ops/status - dependency and provider status.
func (h *OpsHandler) SystemStatus(w http.ResponseWriter, r *http.Request) {
	subsystems, status := h.checkDependencies(r.Context())

	providers := []models.ProviderStatus{}
	if h.providers != nil {
		for _, p := range h.providers.Snapshot() {
			ps := models.ProviderStatus{
				Provider:            p.Name,
				Status:              providerStatus(p.Status()),
				CircuitState:        p.CircuitState.String(),
				ConsecutiveFailures: int(p.Counts.ConsecutiveFailures),
				LastSuccessAt:       timestampPtr(p.LastSuccessAt),
				LastFailureAt:       timestampPtr(p.LastFailureAt),
			}
			if p.LastError != "" {
				msg := p.LastError
				ps.Message = &msg
			}
			if ps.Status != models.HealthStatusOK && status == models.HealthStatusOK {
				status = models.HealthStatusDegraded
			}
			providers = append(providers, ps)
		}
	}

	response.JSON(w, r, http.StatusOK, models.SystemStatus{
		Status:     status,
		Time:       models.Timestamp(h.now()),
		Subsystems: subsystems,
		Providers:  providers,
	})
}

func (h *OpsHandler) checkDependencies(ctx context.Context) ([]models.SubsystemStatus, models.HealthStatus) {
	overall := models.HealthStatusOK
	subsystems := make([]models.SubsystemStatus, 0, len(h.dependencies))

	for _, dep := range h.dependencies {
		cctx, cancel := context.WithTimeout(ctx, readinessTimeout)
		err := dep.Ping(cctx)
		cancel()

		s := models.SubsystemStatus{Name: dep.Name, Status: models.HealthStatusOK}
		if err != nil {
			detail := err.Error()
			s.Detail = &detail
			if dep.Optional {
				s.Status = models.HealthStatusDegraded
				if overall == models.HealthStatusOK {
					overall = models.HealthStatusDegraded
				}
			} else {
				s.Status = models.HealthStatusFail
				overall = models.HealthStatusFail
			}
		}
		subsystems = append(subsystems, s)
	}

	return subsystems, overall
}

func providerStatus(s resilience.HealthStatus) models.HealthStatus {
	switch s {
	case resilience.HealthHealthy:
		return models.HealthStatusOK
	case resilience.HealthDegraded:
		return models.HealthStatusDegraded
	default:
		return models.HealthStatusFail
	}
}

func timestampPtr(t *time.Time) *models.Timestamp {
	if t == nil {
		return nil
	}
	ts := models.Timestamp(*t)
	return &ts
}
