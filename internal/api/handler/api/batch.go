package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/newthinker/valuator/internal/api/job"
	"github.com/newthinker/valuator/internal/api/response"
	"github.com/newthinker/valuator/internal/core"
	"go.uber.org/zap"
)

const (
	batchTimeout = 10 * time.Minute

	// MaxBatchSymbols caps the tickers accepted in one request.
	MaxBatchSymbols = 50

	jobTypeBatch = "batch"
)

// BatchRequest is the request body for starting a batch analysis.
type BatchRequest struct {
	Symbols []string `json:"symbols"`
}

// BatchHandler runs multi-ticker analyses as async jobs.
type BatchHandler struct {
	jobStore *job.Store
	analyst  Analyst
	workers  int
	logger   *zap.Logger

	// onActive receives the number of unfinished jobs after every change.
	onActive func(int)
}

// NewBatchHandler creates a new batch handler.
func NewBatchHandler(jobStore *job.Store, analyst Analyst, workers int, logger *zap.Logger) *BatchHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BatchHandler{
		jobStore: jobStore,
		analyst:  analyst,
		workers:  workers,
		logger:   logger,
		onActive: func(int) {},
	}
}

// OnActiveChange registers a callback for the unfinished job count.
func (h *BatchHandler) OnActiveChange(fn func(int)) {
	if fn != nil {
		h.onActive = fn
	}
}

// Create handles POST /api/v1/batch.
func (h *BatchHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req BatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest,
			core.WrapError(core.ErrConfigInvalid, err))
		return
	}

	if len(req.Symbols) == 0 {
		response.Error(w, http.StatusBadRequest,
			core.Errorf(core.ErrConfigMissing, "symbols required"))
		return
	}
	if len(req.Symbols) > MaxBatchSymbols {
		response.Error(w, http.StatusBadRequest,
			core.Errorf(core.ErrConfigInvalid, "at most %d symbols per batch, got %d", MaxBatchSymbols, len(req.Symbols)))
		return
	}

	j := h.jobStore.Create(jobTypeBatch, len(req.Symbols))
	h.onActive(h.jobStore.Active())

	go h.runBatch(j.ID, req.Symbols)

	response.JSON(w, http.StatusAccepted, map[string]any{
		"job_id": j.ID,
		"status": j.Status,
	})
}

// runBatch executes the batch and updates job status.
func (h *BatchHandler) runBatch(jobID string, symbols []string) {
	defer func() { h.onActive(h.jobStore.Active()) }()

	h.jobStore.Update(jobID, func(j *job.Job) {
		j.Status = job.StatusRunning
	})

	ctx, cancel := context.WithTimeout(context.Background(), batchTimeout)
	defer cancel()
	results := h.analyst.RunBatch(ctx, symbols, h.workers)

	var errs []error
	for _, res := range results {
		if res.Err != nil {
			errs = append(errs, res.Err)
		}
	}

	h.jobStore.Update(jobID, func(j *job.Job) {
		j.Completed = len(results)
		j.Result = results
		if len(errs) == len(results) {
			j.Status = job.StatusFailed
			j.Error = jobError(errs)
			return
		}
		j.Status = job.StatusComplete
	})

	h.logger.Info("batch finished",
		zap.String("job_id", jobID),
		zap.Int("symbols", len(symbols)),
		zap.Int("failed", len(errs)))
}

func jobError(errs []error) *core.Error {
	var coreErr *core.Error
	if len(errs) > 0 && errors.As(errs[0], &coreErr) {
		return core.WrapError(coreErr, errors.Join(errs...))
	}
	return core.WrapError(core.ErrNoData, errors.Join(errs...))
}

// GetStatus handles GET /api/v1/jobs/{id}.
func (h *BatchHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	j, err := h.jobStore.Get(r.PathValue("id"))
	if err != nil {
		response.Error(w, http.StatusNotFound, err)
		return
	}

	resp := map[string]any{
		"job_id":    j.ID,
		"status":    j.Status,
		"total":     j.Total,
		"completed": j.Completed,
	}

	if j.Status.Done() {
		resp["result"] = j.Result
	}
	if j.Status == job.StatusFailed && j.Error != nil {
		resp["error"] = map[string]string{
			"code":    j.Error.Code,
			"message": j.Error.Message,
		}
	}

	response.JSON(w, http.StatusOK, resp)
}
