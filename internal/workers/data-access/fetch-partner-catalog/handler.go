// internal/workers/data-access/fetch-partner-catalog/handler.go
package fetchpartnercatalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	commonerrors "partner-match-workers/internal/common/errors"
	"partner-match-workers/internal/common/logger"
	"partner-match-workers/internal/common/metrics"
	"partner-match-workers/internal/common/validation"
	"partner-match-workers/internal/models"
	"partner-match-workers/internal/workers/data-access/fetch-partner-catalog/queries"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/redis/go-redis/v9"
)

const (
	TaskType = "fetch-partner-catalog"
)

var (
	ErrCatalogFetchFailed  = errors.New("CATALOG_FETCH_FAILED")
	ErrCatalogQueryTimeout = errors.New("CATALOG_QUERY_TIMEOUT")
	ErrInvalidQueryType    = errors.New("INVALID_QUERY_TYPE")
)

type Handler struct {
	config *Config
	db     *sql.DB
	redis  *redis.Client
	logger logger.Logger
}

func NewHandler(config *Config, db *sql.DB, redis *redis.Client, log logger.Logger) *Handler {
	return &Handler{
		config: config,
		db:     db,
		redis:  redis,
		logger: log.WithFields(map[string]interface{}{"taskType": TaskType}),
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	start := time.Now()
	metrics.WorkerJobsActive.WithLabelValues(TaskType).Inc()
	defer metrics.WorkerJobsActive.WithLabelValues(TaskType).Dec()

	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	var variables map[string]interface{}
	if err := json.Unmarshal([]byte(job.Variables), &variables); err != nil {
		metrics.WorkerJobsFailed.WithLabelValues(TaskType, "PARSE_ERROR").Inc()
		h.failJob(client, job, "PARSE_ERROR", fmt.Sprintf("parse input: %v", err), 0)
		return
	}

	if result := validation.ValidateInput(variables, GetInputSchema()); !result.Valid {
		metrics.WorkerJobsFailed.WithLabelValues(TaskType, "INVALID_QUERY_TYPE").Inc()
		h.failJob(client, job, "INVALID_QUERY_TYPE",
			fmt.Sprintf("validation errors: %v", result.GetErrorMessages()), 0)
		return
	}

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		metrics.WorkerJobsFailed.WithLabelValues(TaskType, "PARSE_ERROR").Inc()
		h.failJob(client, job, "PARSE_ERROR", fmt.Sprintf("parse input: %v", err), 0)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.execute(ctx, &input)
	if err != nil {
		stdErr := h.toStandardError(err, input.QueryType)
		metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(stdErr.Code)).Inc()
		h.failJob(client, job, string(stdErr.Code),
			fmt.Sprintf("%s: %s", stdErr.Message, stdErr.Details),
			int32(commonerrors.GetRetryCount(stdErr.Code)))
		return
	}

	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
	metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(time.Since(start).Seconds())
	h.completeJob(client, job, output)
}

// toStandardError maps execute sentinels onto the shared error taxonomy
// so error codes and retry counts stay consistent across workers.
func (h *Handler) toStandardError(err error, queryType string) *commonerrors.StandardError {
	switch {
	case errors.Is(err, ErrCatalogQueryTimeout):
		return commonerrors.NewCatalogQueryTimeoutError(queryType)
	case errors.Is(err, ErrInvalidQueryType):
		return commonerrors.NewInvalidQueryTypeError(queryType)
	default:
		return commonerrors.NewCatalogFetchFailedError(err)
	}
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input == nil {
		return nil, fmt.Errorf("input cannot be nil")
	}

	queryType := models.CatalogQueryType(input.QueryType)
	if _, exists := queries.Registry[queryType]; !exists {
		return nil, fmt.Errorf("%w: %s", ErrInvalidQueryType, input.QueryType)
	}

	cacheKey := h.cacheKey(input)
	if !input.SkipCache && h.redis != nil {
		if val, err := h.redis.Get(ctx, cacheKey).Result(); err == nil {
			var cached []models.Partner
			if err := json.Unmarshal([]byte(val), &cached); err == nil {
				return &Output{
					Partners:  cached,
					RowCount:  len(cached),
					FromCache: true,
				}, nil
			}
		}
	}

	params := make(map[string]interface{})
	if input.Sector != "" {
		params["sector"] = input.Sector
	}
	if input.Region != "" {
		params["region"] = input.Region
	}

	partners, rowCount, execTime, err := queries.Execute(ctx, h.db, queryType, params)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, ErrCatalogQueryTimeout
		}
		if errors.Is(err, queries.ErrMissingParam) {
			return nil, fmt.Errorf("%w: %v", ErrInvalidQueryType, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrCatalogFetchFailed, err)
	}

	if h.redis != nil {
		if data, marshalErr := json.Marshal(partners); marshalErr == nil {
			h.redis.Set(ctx, cacheKey, data, h.config.CacheTTL)
		}
	}

	return &Output{
		Partners:           partners,
		RowCount:           rowCount,
		QueryExecutionTime: execTime,
	}, nil
}

// cacheKey namespaces snapshots per query shape so a sector snapshot
// never shadows the full catalog.
func (h *Handler) cacheKey(input *Input) string {
	key := "catalog:" + input.QueryType
	if input.Sector != "" {
		key += ":sector:" + input.Sector
	}
	if input.Region != "" {
		key += ":region:" + input.Region
	}
	return key
}

func (h *Handler) completeJob(client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}
	_, err = cmd.Send(context.Background())
	if err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error": err.Error(),
		})
	}
}

func (h *Handler) failJob(client worker.JobClient, job entities.Job, errorCode, errorMessage string, retries int32) {
	h.logger.Error("job failed", map[string]interface{}{
		"jobKey":       job.Key,
		"errorCode":    errorCode,
		"errorMessage": errorMessage,
		"retries":      retries,
	})

	_, err := client.NewThrowErrorCommand().
		JobKey(job.Key).
		ErrorCode(errorCode).
		ErrorMessage(errorMessage).
		Send(context.Background())
	if err != nil {
		h.logger.Error("failed to throw error", map[string]interface{}{
			"error": err.Error(),
		})
	}
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
