// Package redflags audits a finished proposal snapshot and produces a
// severity-ordered list of actionable issues for the human reviewer. Every
// matching rule emits a flag (not first-wins); flags are recomputed on each
// view so they always reflect current data, and they never block the
// proposal from being viewable.
package redflags

import (
	"fmt"
	"sort"

	"github.com/google/uuid"

	"proposal-workers/internal/models"
)

// Severities, in review order.
const (
	SeverityCritical = "critical"
	SeverityHigh     = "high"
	SeverityMedium   = "medium"
)

// Audit thresholds, centralized so tuning stays separate from the rules.
const (
	excessiveAssumptionCount = 5
	assumptionActionCap      = 3
	capexHighRatio           = 1.5
	capexLowRatio            = 0.6
	lowSimilarityThreshold   = 0.7
)

// SmartFlag is one prioritized issue surfaced before proposal finalization.
type SmartFlag struct {
	ID       string   `json:"id"`
	Severity string   `json:"severity"`
	Title    string   `json:"title"`
	Message  string   `json:"message"`
	Impact   []string `json:"impact,omitempty"`
	Actions  []string `json:"actions,omitempty"`
}

var severityRank = map[string]int{
	SeverityCritical: 0,
	SeverityHigh:     1,
	SeverityMedium:   2,
}

// AnalyzeProposal runs the full rule set against the proposal snapshot and
// returns flags sorted critical → high → medium. Proposals without AI
// metadata produce no flags: there is nothing to audit.
func AnalyzeProposal(p models.Proposal) []SmartFlag {
	if p.AIMetadata == nil {
		return nil
	}

	var flags []SmartFlag
	flags = appendComplianceFlag(flags, p)
	flags = appendConfidenceFlag(flags, p)
	flags = appendAssumptionFlag(flags, p)
	flags = appendCapexFlags(flags, p)
	flags = appendProvenCaseFlags(flags, p)

	sort.SliceStable(flags, func(i, j int) bool {
		return severityRank[flags[i].Severity] < severityRank[flags[j].Severity]
	})
	return flags
}

func appendComplianceFlag(flags []SmartFlag, p models.Proposal) []SmartFlag {
	if p.TreatmentEfficiency.OverallCompliance {
		return flags
	}
	return append(flags, SmartFlag{
		ID:       uuid.NewString(),
		Severity: SeverityCritical,
		Title:    "Compliance failure",
		Message:  "The proposed treatment train does not meet the discharge targets for this project.",
		Impact:   []string{"permit rejection", "redesign of the treatment train"},
		Actions:  []string{"Review removal efficiencies per parameter", "Add or resize a polishing stage"},
	})
}

func appendConfidenceFlag(flags []SmartFlag, p models.Proposal) []SmartFlag {
	if p.AIMetadata.ConfidenceLevel != "Low" {
		return flags
	}
	return append(flags, SmartFlag{
		ID:       uuid.NewString(),
		Severity: SeverityCritical,
		Title:    "Low AI confidence",
		Message:  "The generator reports low confidence in this proposal; reference support is weak.",
		Impact:   []string{"sizing and cost figures may be unreliable"},
		Actions:  []string{"Have a process engineer verify sizing and costs before sending"},
	})
}

func appendAssumptionFlag(flags []SmartFlag, p models.Proposal) []SmartFlag {
	assumptions := p.AIMetadata.Assumptions
	if len(assumptions) < excessiveAssumptionCount {
		return flags
	}
	actions := make([]string, 0, assumptionActionCap)
	for i, assumption := range assumptions {
		if i == assumptionActionCap {
			break
		}
		actions = append(actions, "Confirm assumption: "+assumption)
	}
	return append(flags, SmartFlag{
		ID:       uuid.NewString(),
		Severity: SeverityHigh,
		Title:    "Excessive assumptions",
		Message:  fmt.Sprintf("The proposal rests on %d assumptions; each unconfirmed assumption widens the error bars.", len(assumptions)),
		Impact:   []string{"cost and sizing uncertainty"},
		Actions:  actions,
	})
}

func appendCapexFlags(flags []SmartFlag, p models.Proposal) []SmartFlag {
	avg := averageProvenCapex(p.AIMetadata.ProvenCases)
	if avg <= 0 || p.CAPEX.Total <= 0 {
		return flags
	}
	ratio := p.CAPEX.Total / avg
	switch {
	case ratio > capexHighRatio:
		return append(flags, SmartFlag{
			ID:       uuid.NewString(),
			Severity: SeverityHigh,
			Title:    "CAPEX significantly higher than proven cases",
			Message:  fmt.Sprintf("Proposal CAPEX is %.1fx the average of comparable proven cases.", ratio),
			Impact:   []string{"client pushback on price"},
			Actions:  []string{"Check unit costs and the complexity multiplier", "Compare the equipment list against the nearest proven case"},
		})
	case ratio < capexLowRatio:
		return append(flags, SmartFlag{
			ID:       uuid.NewString(),
			Severity: SeverityHigh,
			Title:    "CAPEX unusually low",
			Message:  fmt.Sprintf("Proposal CAPEX is %.1fx the average of comparable proven cases; scope may be missing.", ratio),
			Impact:   []string{"underestimated scope", "margin erosion during execution"},
			Actions:  []string{"Verify nothing is missing from the equipment list", "Re-check the flow figure the costing used"},
		})
	}
	return flags
}

func appendProvenCaseFlags(flags []SmartFlag, p models.Proposal) []SmartFlag {
	cases := p.AIMetadata.ProvenCases
	if len(cases) == 0 {
		return append(flags, SmartFlag{
			ID:       uuid.NewString(),
			Severity: SeverityMedium,
			Title:    "No proven cases consulted",
			Message:  "The proposal was generated without reference projects; there is no empirical anchor for its figures.",
			Actions:  []string{"Search the proven-case index for comparable projects"},
		})
	}

	var sum float64
	for _, c := range cases {
		sum += c.Similarity
	}
	if avg := sum / float64(len(cases)); avg < lowSimilarityThreshold {
		flags = append(flags, SmartFlag{
			ID:       uuid.NewString(),
			Severity: SeverityMedium,
			Title:    "Low similarity to proven cases",
			Message:  fmt.Sprintf("Average similarity to the consulted proven cases is %.2f; the references are a weak match.", avg),
			Actions:  []string{"Widen the proven-case search or relax the sector filter"},
		})
	}
	return flags
}

// averageProvenCapex averages CAPEX across cases with a positive figure.
func averageProvenCapex(cases []models.ProvenCase) float64 {
	var sum float64
	var n int
	for _, c := range cases {
		if c.CapexUSD > 0 {
			sum += c.CapexUSD
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}
