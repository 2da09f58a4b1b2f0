package httpapi

import (
	"net/http"

	"github.com/riskibarqy/fantasy-forecast/internal/platform/logging"
	"github.com/riskibarqy/fantasy-forecast/internal/usecase"
)

type Handler struct {
	datasetService *usecase.DatasetQueryService
	logger         *logging.Logger
}

func NewHandler(datasetService *usecase.DatasetQueryService, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}

	return &Handler{
		datasetService: datasetService,
		logger:         logger,
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}
