package audit

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/az-tools/protection-atlas/pkg/adapters"
	"github.com/az-tools/protection-atlas/pkg/models/api"
	"github.com/az-tools/protection-atlas/pkg/models/domain"
	storemodels "github.com/az-tools/protection-atlas/pkg/models/store"
	auditsvc "github.com/az-tools/protection-atlas/pkg/services/audit"
	"github.com/az-tools/protection-atlas/pkg/services/health"
	"github.com/az-tools/protection-atlas/pkg/store/duckdb/findings"
)

const defaultHistoryDays = 30

// Service is the audit operation the handler exposes.
type Service interface {
	Audit(ctx context.Context, resourceGroup string, settings auditsvc.Settings) (domain.AuditReport, error)
}

type Handler struct {
	service   Service
	store     findings.Store
	platforms []string
}

func NewHandler(service Service, store findings.Store, platforms []string) *Handler {
	return &Handler{
		service:   service,
		store:     store,
		platforms: platforms,
	}
}

func (h *Handler) ListPlatforms(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := zerolog.Ctx(ctx)

	response := make([]api.Platform, 0, len(h.platforms))
	for _, p := range h.platforms {
		response = append(response, api.Platform{Name: p})
	}

	if err := json.NewEncoder(w).Encode(response); err != nil {
		logger.Error().
			Err(err).
			Msg("failed to encode platforms")
	}
}

func (h *Handler) RunAudit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := zerolog.Ctx(ctx)
	resourceGroup := chi.URLParam(r, "resourceGroup")

	settings := auditsvc.DefaultSettings()
	if v := r.URL.Query().Get("staleness_days"); v != "" {
		days, err := strconv.Atoi(v)
		if err != nil || days <= 0 {
			http.Error(w, "staleness_days must be a positive integer", http.StatusBadRequest)
			return
		}
		settings.StalenessDays = days
	}

	report, err := h.service.Audit(ctx, resourceGroup, settings)
	if err != nil {
		logger.Error().
			Err(err).
			Str("resource_group", resourceGroup).
			Msg("audit failed")
		http.Error(w, "audit failed", http.StatusInternalServerError)
		return
	}

	h.persist(ctx, report)

	response := adapters.MapAuditReportDomainToApi(report)
	for _, rh := range health.Evaluate(report).Resources {
		response.Health = append(response.Health, adapters.MapResourceHealthDomainToApi(rh))
	}

	if err := json.NewEncoder(w).Encode(response); err != nil {
		logger.Error().
			Err(err).
			Str("resource_group", resourceGroup).
			Msg("failed to encode audit report")
	}
}

// persist is best-effort: a storage failure must not fail the request that
// already has a complete report in hand.
func (h *Handler) persist(ctx context.Context, report domain.AuditReport) {
	if h.store == nil {
		return
	}
	logger := zerolog.Ctx(ctx)

	run := storemodels.AuditRun{
		ID:            uuid.NewString(),
		ResourceGroup: report.ResourceGroup,
		StartedAt:     report.GeneratedAt,
		FindingCount:  len(report.Findings),
		WarningCount:  len(report.Warnings),
	}
	records := make([]storemodels.Finding, 0, len(report.Findings))
	for _, f := range report.Findings {
		records = append(records, adapters.MapFindingDomainToStore(run.ID, f))
	}

	if err := h.store.Add(ctx, run, records); err != nil {
		logger.Error().
			Err(err).
			Str("run_id", run.ID).
			Msg("failed to persist audit run")
	}
}

func (h *Handler) ListFindings(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := zerolog.Ctx(ctx)
	resourceGroup := chi.URLParam(r, "resourceGroup")

	if h.store == nil {
		http.Error(w, "finding history is not enabled", http.StatusNotFound)
		return
	}

	days := defaultHistoryDays
	if v := r.URL.Query().Get("days"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed <= 0 {
			http.Error(w, "days must be a positive integer", http.StatusBadRequest)
			return
		}
		days = parsed
	}

	records, err := h.store.GetFindings(ctx, resourceGroup, time.Now().AddDate(0, 0, -days))
	if err != nil {
		logger.Error().
			Err(err).
			Str("resource_group", resourceGroup).
			Msg("failed to load finding history")
		http.Error(w, "failed to load finding history", http.StatusInternalServerError)
		return
	}

	response := make([]api.Finding, 0, len(records))
	for _, f := range records {
		response = append(response, adapters.MapFindingStoreToApi(f))
	}

	if err := json.NewEncoder(w).Encode(response); err != nil {
		logger.Error().
			Err(err).
			Str("resource_group", resourceGroup).
			Msg("failed to encode findings")
	}
}
