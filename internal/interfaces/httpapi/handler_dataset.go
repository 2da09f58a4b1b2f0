package httpapi

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/riskibarqy/fantasy-forecast/internal/domain/dataset"
	"github.com/riskibarqy/fantasy-forecast/internal/domain/player"
	"github.com/riskibarqy/fantasy-forecast/internal/domain/split"
	"github.com/riskibarqy/fantasy-forecast/internal/usecase"
)

type snapshotDTO struct {
	Run    dataset.RunSummary   `json:"run"`
	Cutoff int                  `json:"cutoff"`
	Rows   []dataset.FeatureRow `json:"rows"`
}

type splitsDTO struct {
	Run   dataset.RunSummary `json:"run"`
	Plans []split.Plan       `json:"plans"`
}

func (h *Handler) GetLatestRun(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetLatestRun")
	defer span.End()

	season := r.PathValue("season")
	run, err := h.datasetService.LatestRun(ctx, season)
	if err != nil {
		h.logger.WarnContext(ctx, "get latest run failed", "season", season, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, run)
}

// GetLatestSnapshot serves the snapshot rows of the latest run. The optional
// position and player_id query parameters filter the rows.
func (h *Handler) GetLatestSnapshot(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetLatestSnapshot")
	defer span.End()

	season := r.PathValue("season")
	query := r.URL.Query()

	var position player.Position
	if raw := strings.TrimSpace(query.Get("position")); raw != "" {
		parsed, err := player.ParsePosition(raw)
		if err != nil {
			writeError(ctx, w, fmt.Errorf("%w: %v", usecase.ErrInvalidInput, err))
			return
		}
		position = parsed
	}
	playerID := strings.TrimSpace(query.Get("player_id"))

	run, rows, err := h.datasetService.LatestSnapshot(ctx, season)
	if err != nil {
		h.logger.WarnContext(ctx, "get latest snapshot failed", "season", season, "error", err)
		writeError(ctx, w, err)
		return
	}

	filtered := make([]dataset.FeatureRow, 0, len(rows))
	for _, row := range rows {
		if position != "" && row.Position != position {
			continue
		}
		if playerID != "" && row.PlayerID != playerID {
			continue
		}
		filtered = append(filtered, row)
	}

	writeSuccess(ctx, w, http.StatusOK, snapshotDTO{
		Run:    run,
		Cutoff: run.MaxFinishedGW,
		Rows:   filtered,
	})
}

// GetLatestSplits serves the split plans of the latest run, optionally for
// one horizon.
func (h *Handler) GetLatestSplits(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetLatestSplits")
	defer span.End()

	season := r.PathValue("season")

	horizon := 0
	if raw := strings.TrimSpace(r.URL.Query().Get("horizon")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			writeError(ctx, w, fmt.Errorf("%w: horizon must be a positive integer", usecase.ErrInvalidInput))
			return
		}
		horizon = parsed
	}

	run, plans, err := h.datasetService.LatestPlans(ctx, season)
	if err != nil {
		h.logger.WarnContext(ctx, "get latest splits failed", "season", season, "error", err)
		writeError(ctx, w, err)
		return
	}

	if horizon > 0 {
		selected := make([]split.Plan, 0, 1)
		for _, plan := range plans {
			if plan.Horizon == horizon {
				selected = append(selected, plan)
			}
		}
		if len(selected) == 0 {
			writeError(ctx, w, fmt.Errorf("%w: no plan for horizon=%d", usecase.ErrNotFound, horizon))
			return
		}
		plans = selected
	}

	writeSuccess(ctx, w, http.StatusOK, splitsDTO{Run: run, Plans: plans})
}
