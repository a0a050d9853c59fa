package api

import (
	"context"
	"net/http"
	"time"

	"github.com/newthinker/valuator/internal/analysis"
	"github.com/newthinker/valuator/internal/api/response"
	"go.uber.org/zap"
)

const analysisTimeout = 2 * time.Minute

// Analyst runs valuations. analysis.Service satisfies it.
type Analyst interface {
	Run(ctx context.Context, symbol string) (analysis.Report, error)
	RunBatch(ctx context.Context, symbols []string, workers int) []analysis.BatchResult
}

// AnalysisHandler serves single-ticker analyses.
type AnalysisHandler struct {
	analyst Analyst
	logger  *zap.Logger
}

// NewAnalysisHandler creates a new analysis handler.
func NewAnalysisHandler(analyst Analyst, logger *zap.Logger) *AnalysisHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AnalysisHandler{analyst: analyst, logger: logger}
}

// Get handles GET /api/v1/analysis/{symbol}.
func (h *AnalysisHandler) Get(w http.ResponseWriter, r *http.Request) {
	symbol := r.PathValue("symbol")

	ctx, cancel := context.WithTimeout(r.Context(), analysisTimeout)
	defer cancel()

	report, err := h.analyst.Run(ctx, symbol)
	if err != nil {
		h.logger.Warn("analysis failed", zap.String("symbol", symbol), zap.Error(err))
		response.Error(w, response.StatusFor(err), err)
		return
	}

	response.JSON(w, http.StatusOK, report)
}
