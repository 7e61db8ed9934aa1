package analyzeimport

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"proposal-workers/internal/common/logger"
	"proposal-workers/internal/common/metrics"
	"proposal-workers/internal/common/validation"
	"proposal-workers/internal/engine/fieldmap"
)

const (
	TaskType = "analyze-import"

	previewKeyPrefix = "import-preview:"
)

var (
	ErrInvalidInput      = errors.New("INVALID_INPUT")
	ErrPayloadInvalid    = errors.New("PAYLOAD_INVALID")
	ErrImportParseFailed = errors.New("IMPORT_PARSE_FAILED")
)

// inputSchema is the envelope contract for incoming import jobs. A file name
// is mandatory and at least one of content/record must be present; the
// parsing itself stays best-effort.
const inputSchema = `{
	"type": "object",
	"properties": {
		"fileName":     {"type": "string", "minLength": 1},
		"content":      {"type": "string"},
		"record":       {"type": "object"},
		"existingData": {"type": "object"}
	},
	"required": ["fileName"],
	"anyOf": [
		{"required": ["content"]},
		{"required": ["record"]}
	]
}`

type Handler struct {
	config   *Config
	analyzer *fieldmap.Analyzer
	cache    *redis.Client
	logger   logger.Logger
}

func NewHandler(config *Config, analyzer *fieldmap.Analyzer, cache *redis.Client, log logger.Logger) *Handler {
	return &Handler{
		config:   config,
		analyzer: analyzer,
		cache:    cache,
		logger:   log.WithFields(map[string]interface{}{"taskType": TaskType}),
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	var payload map[string]interface{}
	if err := json.Unmarshal([]byte(job.Variables), &payload); err != nil {
		h.failJob(client, job, "PARSE_ERROR", fmt.Sprintf("parse input: %v", err), 0)
		return
	}
	if err := validateEnvelope(payload); err != nil {
		h.failJob(client, job, "PAYLOAD_INVALID", err.Error(), 0)
		return
	}

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.failJob(client, job, "PARSE_ERROR", fmt.Sprintf("parse input: %v", err), 0)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.execute(ctx, &input)
	if err != nil {
		errorCode := "INVALID_INPUT"
		if errors.Is(err, ErrImportParseFailed) {
			errorCode = "IMPORT_PARSE_FAILED"
		}
		h.failJob(client, job, errorCode, err.Error(), 0)
		return
	}

	h.completeJob(client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input == nil || input.FileName == "" {
		return nil, fmt.Errorf("%w: fileName is required", ErrInvalidInput)
	}
	if input.Content == "" && input.Record == nil {
		return nil, fmt.Errorf("%w: nothing to analyze, provide content or a record", ErrImportParseFailed)
	}

	start := time.Now()

	var analysis fieldmap.ImportAnalysis
	if input.Record != nil {
		analysis = h.analyzer.AnalyzeRecord(input.FileName, input.Record)
	} else {
		analysis = h.analyzer.AnalyzeText(input.FileName, input.Content)
	}
	metrics.ImportFieldsDetected.Observe(float64(len(analysis.Fields)))

	preview := h.analyzer.CreateImportPreview(analysis, input.ExistingData)

	output := &Output{
		SessionID:      uuid.NewString(),
		Analysis:       preview.Analysis,
		Rules:          preview.Rules,
		PreviewData:    preview.PreviewData,
		Conflicts:      preview.Conflicts,
		FieldCount:     len(analysis.Fields),
		AnalysisTimeMs: time.Since(start).Milliseconds(),
	}

	h.cachePreview(ctx, output.SessionID, preview)

	h.logger.Info("import analyzed", map[string]interface{}{
		"fileName":   input.FileName,
		"sessionId":  output.SessionID,
		"fieldCount": output.FieldCount,
		"conflicts":  len(output.Conflicts),
	})
	return output, nil
}

// cachePreview stores the transient preview so the review step can commit or
// discard it later without re-running detection. Best effort.
func (h *Handler) cachePreview(ctx context.Context, sessionID string, preview fieldmap.ImportPreview) {
	if h.cache == nil {
		return
	}

	raw, err := json.Marshal(preview)
	if err != nil {
		return
	}
	if err := h.cache.Set(ctx, previewKeyPrefix+sessionID, raw, h.config.PreviewTTL).Err(); err != nil {
		h.logger.Warn("failed to cache import preview", map[string]interface{}{
			"sessionId": sessionID,
			"error":     err.Error(),
		})
	}
}

func validateEnvelope(payload map[string]interface{}) error {
	result, err := validation.ValidatePayload(payload, inputSchema)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPayloadInvalid, err)
	}
	if !result.Valid {
		return fmt.Errorf("%w: %s", ErrPayloadInvalid, strings.Join(result.GetErrorMessages(), "; "))
	}
	return nil
}

func (h *Handler) completeJob(client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"error": err,
		})
		return
	}
	_, err = cmd.Send(context.Background())
	if err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error": err,
		})
		return
	}
	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
}

func (h *Handler) failJob(client worker.JobClient, job entities.Job, errorCode, errorMessage string, _ int32) {
	h.logger.Error("job failed", map[string]interface{}{
		"jobKey":       job.Key,
		"errorCode":    errorCode,
		"errorMessage": errorMessage,
	})
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, errorCode).Inc()

	_, err := client.NewThrowErrorCommand().
		JobKey(job.Key).
		ErrorCode(errorCode).
		ErrorMessage(errorMessage).
		Send(context.Background())
	if err != nil {
		h.logger.Error("failed to throw error", map[string]interface{}{
			"error": err,
		})
	}
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
