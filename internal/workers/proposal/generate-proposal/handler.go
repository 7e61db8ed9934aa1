package generateproposal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"

	"proposal-workers/internal/common/logger"
	"proposal-workers/internal/common/metrics"
	"proposal-workers/internal/engine/catalog"
	"proposal-workers/internal/engine/costing"
	"proposal-workers/internal/engine/selection"
	"proposal-workers/internal/models"
)

const (
	TaskType = "generate-proposal"
)

var (
	ErrInvalidInput      = errors.New("INVALID_INPUT")
	ErrUnsupportedSector = errors.New("UNSUPPORTED_SECTOR")
)

type Handler struct {
	config     *Config
	selector   *selection.Selector
	calculator *costing.Calculator
	logger     logger.Logger
}

func NewHandler(config *Config, cat *catalog.Catalog, log logger.Logger) *Handler {
	return &Handler{
		config:     config,
		selector:   selection.NewSelector(cat),
		calculator: costing.NewCalculator(cat),
		logger:     log.WithFields(map[string]interface{}{"taskType": TaskType}),
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
	if input == nil {
		return nil, fmt.Errorf("%w: input cannot be nil", ErrInvalidInput)
	}
	if input.DesignFlow <= 0 {
		return nil, fmt.Errorf("%w: design flow must be positive, got %v", ErrInvalidInput, input.DesignFlow)
	}

	start := time.Now()
	sector := catalog.Sector(input.Sector)

	selected, err := h.selector.Select(selection.Input{
		Sector:           sector,
		DesignFlow:       input.DesignFlow,
		OrganicLoad:      input.OrganicLoad,
		Population:       input.Population,
		TargetEfficiency: input.TargetEfficiency,
	})
	if err != nil {
		if errors.Is(err, selection.ErrUnsupportedSector) {
			return nil, fmt.Errorf("%w: %s", ErrUnsupportedSector, input.Sector)
		}
		return nil, err
	}

	capex, err := h.calculator.CAPEX(input.DesignFlow, selected.SelectedTechnologies, sector)
	if err != nil {
		return nil, mapCostingError(err)
	}

	opex, err := h.calculator.OPEX(input.DesignFlow, selected.SelectedTechnologies, sector)
	if err != nil {
		return nil, mapCostingError(err)
	}

	metrics.ProposalsGenerated.WithLabelValues(input.Sector).Inc()

	return &Output{
		ProposalID:           uuid.New().String(),
		Sector:               input.Sector,
		SelectedTechnologies: selected.SelectedTechnologies,
		Reasoning:            selected.Reasoning,
		CAPEX:                capex,
		OPEX:                 opex,
		EquipmentList:        buildEquipmentList(selected.SelectedTechnologies, capex),
		TreatmentEfficiency:  evaluateEfficiency(selected.SelectedTechnologies, input.TargetEfficiency),
		GenerationTimeMs:     time.Since(start).Milliseconds(),
	}, nil
}

func mapCostingError(err error) error {
	if errors.Is(err, costing.ErrUnsupportedSector) {
		return fmt.Errorf("%w: %v", ErrUnsupportedSector, err)
	}
	return fmt.Errorf("%w: %v", ErrInvalidInput, err)
}

// buildEquipmentList derives one line item per selected technology; the
// equipment share of CAPEX is split evenly across the train.
func buildEquipmentList(technologies []catalog.TechnologyOption, capex costing.CostBreakdown) []models.EquipmentItem {
	if len(technologies) == 0 {
		return nil
	}

	unitCost := capex.Equipment / float64(len(technologies))
	items := make([]models.EquipmentItem, 0, len(technologies))
	for _, tech := range technologies {
		items = append(items, models.EquipmentItem{
			Name:     tech.Name,
			Stage:    string(tech.Stage),
			Quantity: 1,
			UnitCost: unitCost,
		})
	}
	return items
}

// evaluateEfficiency compares the train's removal efficiency against the
// requested target. With no target, any selected train complies.
func evaluateEfficiency(technologies []catalog.TechnologyOption, targetEfficiency float64) models.TreatmentEfficiency {
	best := 0
	for _, tech := range technologies {
		if tech.Efficiency > best {
			best = tech.Efficiency
		}
	}

	return models.TreatmentEfficiency{
		OverallCompliance: targetEfficiency <= 0 || float64(best) >= targetEfficiency,
		ByParameter:       map[string]float64{"bod": float64(best)},
	}
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
