package auditproposal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"proposal-workers/internal/common/logger"
	"proposal-workers/internal/common/metrics"
	"proposal-workers/internal/engine/catalog"
	"proposal-workers/internal/engine/redflags"
	"proposal-workers/internal/models"
)

const (
	TaskType = "audit-proposal"
)

var (
	ErrInvalidInput           = errors.New("INVALID_INPUT")
	ErrProvenCaseSearchFailed = errors.New("PROVEN_CASE_SEARCH_FAILED")
)

// CaseProvider looks up historical projects similar to the audited
// proposal. Backed by provencase.Service in production.
type CaseProvider interface {
	FindSimilar(ctx context.Context, sector catalog.Sector, designFlow float64, maxResults int) ([]models.ProvenCase, error)
}

type Handler struct {
	config *Config
	cases  CaseProvider
	logger logger.Logger
}

func NewHandler(config *Config, cases CaseProvider, log logger.Logger) *Handler {
	return &Handler{
		config: config,
		cases:  cases,
		logger: log.WithFields(map[string]interface{}{"taskType": TaskType}),
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
		retries := int32(0)
		if errors.Is(err, ErrProvenCaseSearchFailed) {
			errorCode = "PROVEN_CASE_SEARCH_FAILED"
			retries = 3
		}
		h.failJob(client, job, errorCode, err.Error(), retries)
		return
	}

	h.completeJob(client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input == nil || input.Proposal.ID == "" {
		return nil, fmt.Errorf("%w: proposal with an ID is required", ErrInvalidInput)
	}

	start := time.Now()
	proposal := input.Proposal

	// Attach proven cases when generation left them out; the audit rules
	// are strictly weaker without them.
	if proposal.AIMetadata != nil && len(proposal.AIMetadata.ProvenCases) == 0 && h.cases != nil {
		found, err := h.cases.FindSimilar(ctx, proposal.Sector, proposal.DesignFlow, h.config.MaxProvenCases)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrProvenCaseSearchFailed, err)
		}
		proposal.AIMetadata.ProvenCases = found
	}

	flags := redflags.AnalyzeProposal(proposal)

	criticalCount := 0
	for _, flag := range flags {
		metrics.RedFlagsEmitted.WithLabelValues(string(flag.Severity)).Inc()
		if flag.Severity == redflags.SeverityCritical {
			criticalCount++
		}
	}

	return &Output{
		ProposalID:    proposal.ID,
		Flags:         flags,
		FlagCount:     len(flags),
		CriticalCount: criticalCount,
		AuditTimeMs:   time.Since(start).Milliseconds(),
	}, nil
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
