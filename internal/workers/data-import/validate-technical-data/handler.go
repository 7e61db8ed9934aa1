package validatetechnicaldata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"proposal-workers/internal/common/logger"
	"proposal-workers/internal/common/metrics"
	"proposal-workers/internal/engine/catalog"
	"proposal-workers/internal/engine/techcheck"
)

const (
	TaskType = "validate-technical-data"
)

var (
	ErrInvalidInput      = errors.New("INVALID_INPUT")
	ErrUnsupportedSector = errors.New("UNSUPPORTED_SECTOR")
)

type Handler struct {
	config  *Config
	checker *techcheck.Checker
	logger  logger.Logger
}

func NewHandler(config *Config, checker *techcheck.Checker, log logger.Logger) *Handler {
	return &Handler{
		config:  config,
		checker: checker,
		logger:  log.WithFields(map[string]interface{}{"taskType": TaskType}),
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

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
		if errors.Is(err, ErrUnsupportedSector) {
			errorCode = "UNSUPPORTED_SECTOR"
		}
		h.failJob(client, job, errorCode, err.Error(), 0)
		return
	}

	h.completeJob(client, job, output)
}

func (h *Handler) execute(_ context.Context, input *Input) (*Output, error) {
	if input == nil || input.Sector == "" {
		return nil, fmt.Errorf("%w: sector is required", ErrInvalidInput)
	}

	singleField := input.FieldID != "" && input.Value != nil
	if !singleField && len(input.Data) == 0 {
		return nil, fmt.Errorf("%w: provide a fieldId with a value, or a data set", ErrInvalidInput)
	}

	start := time.Now()
	checkCtx := techcheck.Context{
		Sector:       catalog.Sector(input.Sector),
		ExistingData: mergeData(input.ExistingData, input.Data),
	}

	output := &Output{}
	if singleField {
		result, err := h.checker.ValidateField(input.FieldID, *input.Value, checkCtx)
		if err != nil {
			return nil, mapCheckError(err)
		}
		output.Results = []techcheck.Result{result}
	} else {
		fieldIDs := make([]string, 0, len(input.Data))
		for fieldID := range input.Data {
			fieldIDs = append(fieldIDs, fieldID)
		}
		sort.Strings(fieldIDs)

		for _, fieldID := range fieldIDs {
			result, err := h.checker.ValidateField(fieldID, input.Data[fieldID], checkCtx)
			if err != nil {
				return nil, mapCheckError(err)
			}
			output.Results = append(output.Results, result)
		}
		output.ConsistencyResults = h.checker.ValidateConsistency(checkCtx.ExistingData, checkCtx)
	}

	for _, result := range append(output.Results, output.ConsistencyResults...) {
		switch result.Level {
		case techcheck.LevelError:
			output.ErrorCount++
		case techcheck.LevelWarning:
			output.WarningCount++
		}
	}
	output.IsValid = output.ErrorCount == 0
	output.ValidationTimeMs = time.Since(start).Milliseconds()

	h.logger.Info("technical data validated", map[string]interface{}{
		"sector":   input.Sector,
		"checks":   len(output.Results) + len(output.ConsistencyResults),
		"errors":   output.ErrorCount,
		"warnings": output.WarningCount,
	})
	return output, nil
}

// mergeData overlays the incoming batch on top of the project's existing
// data, so refinements see the freshest value for each related field.
func mergeData(existing, incoming map[string]float64) map[string]float64 {
	merged := make(map[string]float64, len(existing)+len(incoming))
	for k, v := range existing {
		merged[k] = v
	}
	for k, v := range incoming {
		merged[k] = v
	}
	return merged
}

func mapCheckError(err error) error {
	if errors.Is(err, techcheck.ErrUnsupportedSector) {
		return fmt.Errorf("%w: %v", ErrUnsupportedSector, err)
	}
	return fmt.Errorf("%w: %v", ErrInvalidInput, err)
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
