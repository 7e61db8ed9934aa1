// Package selection chooses treatment technologies for a project using an
// ordered per-sector rule table. Rules are evaluated top to bottom and the
// first match wins; every decision appends a human-readable reasoning entry
// naming the threshold that drove it.
package selection

import (
	"errors"
	"fmt"

	"proposal-workers/internal/engine/catalog"
)

var ErrUnsupportedSector = errors.New("UNSUPPORTED_SECTOR")

// Decision thresholds. Kept in one place so the rule table below stays pure
// control flow.
const (
	municipalLargePopulation = 50000
	municipalSmallFlowM3d    = 500
	industrialHighBODMgL     = 800
	residentialSmallFlowM3d  = 100

	tertiaryOrganicLoadMgL      = 400
	tertiaryTargetEfficiencyPct = 90
)

// Input carries the project parameters the rules dispatch on.
type Input struct {
	Sector           catalog.Sector `json:"sector"`
	DesignFlow       float64        `json:"designFlow"`  // m3/d
	OrganicLoad      float64        `json:"organicLoad"` // BOD, mg/L
	Population       int            `json:"population,omitempty"`
	TargetEfficiency float64        `json:"targetEfficiency,omitempty"` // %
}

// Result is the selected train plus the reasoning trail consumed by the
// transparency UI.
type Result struct {
	SelectedTechnologies []catalog.TechnologyOption `json:"selectedTechnologies"`
	Reasoning            []string                   `json:"reasoning"`
}

// rule pairs a predicate with the technology it selects and the reasoning
// entry explaining why. First matching rule per sector wins; the last rule
// of each sector acts as the default and must always match.
type rule struct {
	matches    func(in Input) bool
	technology string
	reason     func(in Input) string
}

// Selector resolves rule outcomes against an injected catalog.
type Selector struct {
	catalog *catalog.Catalog
	rules   map[catalog.Sector][]rule
}

func NewSelector(cat *catalog.Catalog) *Selector {
	return &Selector{catalog: cat, rules: sectorRules()}
}

func sectorRules() map[catalog.Sector][]rule {
	return map[catalog.Sector][]rule{
		catalog.SectorMunicipal: {
			{
				matches:    func(in Input) bool { return in.Population > municipalLargePopulation },
				technology: "Conventional Activated Sludge",
				reason: func(in Input) string {
					return fmt.Sprintf("Population > 50,000 (%d): a high-efficiency biological process is required to meet discharge limits at municipal scale", in.Population)
				},
			},
			{
				matches:    func(in Input) bool { return in.DesignFlow < municipalSmallFlowM3d },
				technology: "Constructed Wetlands",
				reason: func(in Input) string {
					return fmt.Sprintf("Design flow < 500 m³/d (%.0f): a low-energy natural treatment keeps operating cost down for small municipalities", in.DesignFlow)
				},
			},
			{
				matches:    func(Input) bool { return true },
				technology: "UASB + Trickling Filter",
				reason: func(in Input) string {
					return fmt.Sprintf("Mid-size municipal flow (%.0f m³/d): anaerobic pretreatment with aerobic polishing balances energy use and effluent quality", in.DesignFlow)
				},
			},
		},
		catalog.SectorIndustrial: {
			{
				matches:    func(in Input) bool { return in.OrganicLoad > industrialHighBODMgL },
				technology: "DAF + Coagulation/Flocculation",
				reason: func(in Input) string {
					return fmt.Sprintf("BOD > 800 mg/L (%.0f): physicochemical pretreatment is needed before any biological stage can cope with the organic load", in.OrganicLoad)
				},
			},
			{
				matches:    func(Input) bool { return true },
				technology: "Sequencing Batch Reactor",
				reason: func(in Input) string {
					return fmt.Sprintf("Moderate industrial load (%.0f mg/L BOD): a batch reactor handles production-driven flow and load variability", in.OrganicLoad)
				},
			},
		},
		catalog.SectorResidential: {
			{
				matches:    func(in Input) bool { return in.DesignFlow < residentialSmallFlowM3d },
				technology: "Septic Tank + Biofilter",
				reason: func(in Input) string {
					return fmt.Sprintf("Design flow < 100 m³/d (%.0f): a simple passive system avoids operator dependence at household scale", in.DesignFlow)
				},
			},
			{
				matches:    func(Input) bool { return true },
				technology: "Membrane Bioreactor",
				reason: func(in Input) string {
					return fmt.Sprintf("Design flow ≥ 100 m³/d (%.0f): membrane treatment delivers reuse-grade quality for larger residential developments", in.DesignFlow)
				},
			},
		},
		catalog.SectorCommercial: {
			{
				matches:    func(Input) bool { return true },
				technology: "Extended Aeration",
				reason: func(Input) string {
					return "Commercial sector default: extended aeration tolerates the intermittent loads typical of commercial facilities"
				},
			},
		},
	}
}

// Select runs the sector's rule table against the input. Unknown sectors
// fail immediately; tertiary-treatment advisories are appended to the
// reasoning trail without changing the selected train (tertiary equipment
// composition is decided downstream).
func (s *Selector) Select(in Input) (Result, error) {
	rules, ok := s.rules[in.Sector]
	if !ok || !s.catalog.HasSector(in.Sector) {
		return Result{}, fmt.Errorf("%w: %s", ErrUnsupportedSector, in.Sector)
	}

	var result Result
	for _, r := range rules {
		if !r.matches(in) {
			continue
		}
		tech, err := s.catalog.Technology(in.Sector, r.technology)
		if err != nil {
			return Result{}, err
		}
		result.SelectedTechnologies = append(result.SelectedTechnologies, tech)
		result.Reasoning = append(result.Reasoning, r.reason(in))
		break
	}

	if in.OrganicLoad > tertiaryOrganicLoadMgL {
		result.Reasoning = append(result.Reasoning,
			fmt.Sprintf("Organic load > 400 mg/L (%.0f): tertiary treatment is warranted; equipment sizing will add the polishing stage", in.OrganicLoad))
	} else if in.TargetEfficiency > tertiaryTargetEfficiencyPct {
		result.Reasoning = append(result.Reasoning,
			fmt.Sprintf("Target efficiency > 90%% (%.0f%%): tertiary treatment is warranted; equipment sizing will add the polishing stage", in.TargetEfficiency))
	}

	return result, nil
}
