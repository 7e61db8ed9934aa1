// Package costing computes CAPEX and OPEX breakdowns for a selected
// technology train. All functions are pure; the catalog supplies the
// per-sector unit costs.
package costing

import (
	"errors"
	"fmt"
	"math"

	"proposal-workers/internal/engine/catalog"
)

var (
	ErrInvalidInput      = errors.New("INVALID_INPUT")
	ErrUnsupportedSector = errors.New("UNSUPPORTED_SECTOR")
)

// CAPEX formula factors. Engineering and permits are fractions of the direct
// cost (equipment + construction); contingency applies on top of everything.
const (
	engineeringFraction = 0.15
	permitsFraction     = 0.05
	contingencyFraction = 0.15

	complexityMultiplierHigh   = 1.3
	complexityMultiplierMedium = 1.1
	complexityMultiplierLow    = 1.0
)

// OPEX factors. Energy intensity is kWh per m3 treated; labor is operator
// person-days per day of plant operation; maintenance tracks energy spend.
const (
	energyIntensityHigh   = 2.5
	energyIntensityMedium = 1.5
	energyIntensityLow    = 0.8

	laborPersonDaysHigh   = 2.0
	laborPersonDaysMedium = 1.0
	laborPersonDaysLow    = 0.5

	maintenanceEnergyFraction = 0.30

	daysPerYear = 365
)

// CostBreakdown is the annualized capital cost split. Total equals the sum
// of the components within one currency unit (components are rounded
// independently before summation).
type CostBreakdown struct {
	Equipment    float64 `json:"equipment"`
	Construction float64 `json:"construction"`
	Engineering  float64 `json:"engineering"`
	Permits      float64 `json:"permits"`
	Contingency  float64 `json:"contingency"`
	Total        float64 `json:"total"`
}

// OperationalCost is the yearly operating cost split, same sum invariant as
// CostBreakdown.
type OperationalCost struct {
	Energy      float64 `json:"energy"`
	Chemicals   float64 `json:"chemicals"`
	Labor       float64 `json:"labor"`
	Maintenance float64 `json:"maintenance"`
	Total       float64 `json:"total"`
}

// Calculator evaluates the cost formulas against an injected catalog.
type Calculator struct {
	catalog *catalog.Catalog
}

func NewCalculator(cat *catalog.Catalog) *Calculator {
	return &Calculator{catalog: cat}
}

// CAPEX computes the capital cost breakdown for a flow in m3/d and the
// selected technologies. Non-positive flow and unknown sectors are caller
// contract violations and fail immediately.
func (c *Calculator) CAPEX(flow float64, technologies []catalog.TechnologyOption, sector catalog.Sector) (CostBreakdown, error) {
	if flow <= 0 {
		return CostBreakdown{}, fmt.Errorf("%w: flow must be positive, got %v", ErrInvalidInput, flow)
	}
	params, err := c.catalog.Costs(sector)
	if err != nil {
		return CostBreakdown{}, fmt.Errorf("%w: %s", ErrUnsupportedSector, sector)
	}

	multiplier := complexityMultiplier(technologies)
	equipment := round(flow * params.EquipmentUSDPerM3d * multiplier)
	construction := round(flow * params.ConstructionUSDPerM3d * multiplier)
	engineering := round(engineeringFraction * (equipment + construction))
	permits := round(permitsFraction * (equipment + construction))
	contingency := round(contingencyFraction * (equipment + construction + engineering + permits))

	return CostBreakdown{
		Equipment:    equipment,
		Construction: construction,
		Engineering:  engineering,
		Permits:      permits,
		Contingency:  contingency,
		Total:        equipment + construction + engineering + permits + contingency,
	}, nil
}

// OPEX computes the yearly operating cost breakdown. The highest energy
// rating across the train sets the energy intensity; the highest complexity
// sets the operator staffing.
func (c *Calculator) OPEX(flow float64, technologies []catalog.TechnologyOption, sector catalog.Sector) (OperationalCost, error) {
	if flow <= 0 {
		return OperationalCost{}, fmt.Errorf("%w: flow must be positive, got %v", ErrInvalidInput, flow)
	}
	params, err := c.catalog.Costs(sector)
	if err != nil {
		return OperationalCost{}, fmt.Errorf("%w: %s", ErrUnsupportedSector, sector)
	}

	energy := round(flow * energyIntensity(technologies) * daysPerYear * params.EnergyUSDPerKWh)
	chemicals := round(flow * daysPerYear * params.ChemicalsUSDPerM3)
	labor := round(laborPersonDays(technologies) * daysPerYear * params.LaborUSDPerDay)
	maintenance := round(maintenanceEnergyFraction * energy)

	return OperationalCost{
		Energy:      energy,
		Chemicals:   chemicals,
		Labor:       labor,
		Maintenance: maintenance,
		Total:       energy + chemicals + labor + maintenance,
	}, nil
}

// complexityMultiplier returns the CAPEX multiplier driven by the highest
// complexity rating in the train. Maximum dominates, not an average.
func complexityMultiplier(technologies []catalog.TechnologyOption) float64 {
	multiplier := complexityMultiplierLow
	for _, tech := range technologies {
		switch tech.Complexity {
		case catalog.RatingHigh:
			return complexityMultiplierHigh
		case catalog.RatingMedium:
			multiplier = complexityMultiplierMedium
		}
	}
	return multiplier
}

func energyIntensity(technologies []catalog.TechnologyOption) float64 {
	intensity := energyIntensityLow
	for _, tech := range technologies {
		switch tech.Energy {
		case catalog.RatingHigh:
			return energyIntensityHigh
		case catalog.RatingMedium:
			intensity = energyIntensityMedium
		}
	}
	return intensity
}

func laborPersonDays(technologies []catalog.TechnologyOption) float64 {
	days := laborPersonDaysLow
	for _, tech := range technologies {
		switch tech.Complexity {
		case catalog.RatingHigh:
			return laborPersonDaysHigh
		case catalog.RatingMedium:
			days = laborPersonDaysMedium
		}
	}
	return days
}

func round(v float64) float64 {
	return math.Round(v)
}
