// internal/workers/matching/generate-recommendations/handler.go
package generaterecommendations

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
	"partner-match-workers/internal/matching"
	"partner-match-workers/internal/models"
	"partner-match-workers/internal/workers/data-access/fetch-partner-catalog/queries"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	TaskType = "generate-recommendations"

	catalogCacheKey = "catalog:all_partners"
)

type Handler struct {
	config       *Config
	db           *sql.DB
	redis        *redis.Client
	logger       logger.Logger
	errorHandler *commonerrors.ErrorHandler
}

func NewHandler(config *Config, db *sql.DB, redis *redis.Client, log logger.Logger) *Handler {
	workerLog := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		db:           db,
		redis:        redis,
		logger:       workerLog,
		errorHandler: commonerrors.NewErrorHandler(workerLog),
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

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		metrics.WorkerJobsFailed.WithLabelValues(TaskType, "PARSE_ERROR").Inc()
		h.errorHandler.HandleJobError(context.Background(), client, job,
			commonerrors.NewInvalidCriteriaError(fmt.Sprintf("parse input: %v", err)))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.execute(ctx, &input)
	if err != nil {
		metrics.WorkerJobsFailed.WithLabelValues(TaskType, errorCodeOf(err)).Inc()
		h.errorHandler.HandleJobError(ctx, client, job, err)
		return
	}

	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
	metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(time.Since(start).Seconds())
	h.completeJob(client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input == nil {
		return nil, commonerrors.NewInvalidCriteriaError("input cannot be nil")
	}

	start := time.Now()

	requestID := input.RequestID
	if requestID == "" {
		requestID = uuid.New().String()
	}

	if err := matching.ValidateCriteria(input.Criteria); err != nil {
		return nil, commonerrors.NewInvalidCriteriaError(err.Error())
	}

	catalog := input.Partners
	source := "inline"
	if len(catalog) == 0 {
		loaded, loadedSource, err := h.loadCatalog(ctx, input.SkipCache)
		if err != nil {
			return nil, err
		}
		catalog, source = loaded, loadedSource
	}

	if err := validateCatalog(catalog); err != nil {
		return nil, commonerrors.NewCatalogInvalidError(err.Error())
	}

	scores, warnings, err := matching.Rank(catalog, input.Criteria, h.config.MaxCatalogSize)
	if err != nil {
		switch {
		case errors.Is(err, matching.ErrInvalidCriteria):
			return nil, commonerrors.NewInvalidCriteriaError(err.Error())
		case errors.Is(err, matching.ErrCatalogTooLarge):
			return nil, commonerrors.NewCatalogTooLargeError(len(catalog), h.config.MaxCatalogSize)
		default:
			return nil, commonerrors.NewRecommendationFailedError(err)
		}
	}

	metrics.PartnersScored.Add(float64(len(catalog)))
	metrics.PartnersSkipped.Add(float64(len(warnings)))

	recommendations := matching.BuildRecommendations(catalog, input.Criteria, input.CurrentProjects, scores)
	metrics.RecommendationsGenerated.Add(float64(len(recommendations)))

	durationMs := time.Since(start).Milliseconds()

	output := &Output{
		RequestID:       requestID,
		Recommendations: recommendations,
		Warnings:        warnings,
		CatalogSize:     len(catalog),
		CatalogSource:   source,
		DurationMs:      durationMs,
	}
	if len(recommendations) > 0 {
		top := recommendations[0]
		output.TopRecommendation = &top
	}

	if durationMs > h.config.SlowRankingMs {
		h.logger.Warn("ranking exceeded latency budget", map[string]interface{}{
			"requestId":   requestID,
			"catalogSize": len(catalog),
			"durationMs":  durationMs,
		})
	}

	h.logger.Info("recommendations generated", map[string]interface{}{
		"requestId":     requestID,
		"catalogSize":   len(catalog),
		"catalogSource": source,
		"returned":      len(recommendations),
		"skipped":       len(warnings),
		"durationMs":    durationMs,
	})

	return output, nil
}

// loadCatalog reads the full-catalog snapshot from Redis, falling back to
// the database on a miss. An unreadable snapshot is treated as a miss,
// never as a failure.
func (h *Handler) loadCatalog(ctx context.Context, skipCache bool) ([]models.Partner, string, error) {
	if !skipCache && h.redis != nil {
		if val, err := h.redis.Get(ctx, catalogCacheKey).Result(); err == nil {
			var cached []models.Partner
			if unmarshalErr := json.Unmarshal([]byte(val), &cached); unmarshalErr == nil {
				return cached, "cache", nil
			}
			h.logger.Warn("discarding unreadable catalog snapshot", map[string]interface{}{
				"cacheKey": catalogCacheKey,
			})
		}
	}

	if h.db == nil {
		return nil, "", commonerrors.NewCatalogFetchFailedError(
			fmt.Errorf("no inline catalog and no database configured"))
	}

	catalog, _, _, err := queries.AllPartners(ctx, h.db, nil)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, "", commonerrors.NewCatalogQueryTimeoutError(string(models.CatalogQueryAllPartners))
		}
		return nil, "", commonerrors.NewCatalogFetchFailedError(err)
	}

	if h.redis != nil {
		if data, marshalErr := json.Marshal(catalog); marshalErr == nil {
			h.redis.Set(ctx, catalogCacheKey, data, h.config.CacheTTL)
		}
	}

	return catalog, "database", nil
}

func errorCodeOf(err error) string {
	var stdErr *commonerrors.StandardError
	if errors.As(err, &stdErr) {
		return string(stdErr.Code)
	}
	return "INTERNAL_ERROR"
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

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
