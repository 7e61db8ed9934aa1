// Package techcheck range-checks engineering parameters against
// sector-specific norms and cross-checks logically related parameters. It
// only classifies; it never mutates input and never blocks — the caller
// decides what an error-level result means for the workflow.
package techcheck

import (
	"errors"
	"fmt"

	"proposal-workers/internal/engine/catalog"
)

var ErrUnsupportedSector = errors.New("UNSUPPORTED_SECTOR")

// Severity of a validation result. Values above a sector maximum are
// warnings, never hard errors: over-design is safer than under-design.
const (
	LevelError   = "error"
	LevelWarning = "warning"
	LevelInfo    = "info"
)

// Refinement thresholds.
const (
	perCapitaFlowMinLPerDay = 100
	perCapitaFlowMaxLPerDay = 600
	// Sector-independent consistency bounds.
	perCapitaFlowAbsurdLPerDay = 1000
	bodCodRatioSuspectHigh     = 0.8
	bodCodRatioLowBiodegrade   = 0.2
	temperatureBioRiskCelsius  = 45

	litersPerM3 = 1000
)

// Result classifies one parameter check. Stateless, one per invocation.
type Result struct {
	FieldID    string `json:"fieldId"`
	IsValid    bool   `json:"isValid"`
	Level      string `json:"level"`
	Message    string `json:"message"`
	Suggestion string `json:"suggestion,omitempty"`
}

// Context carries the sector and the rest of the technical data set so
// checks can refine against related fields.
type Context struct {
	Sector       catalog.Sector
	ExistingData map[string]float64
}

// Checker validates against an injected range table.
type Checker struct {
	ranges RangeTable
}

func NewChecker(ranges RangeTable) *Checker {
	return &Checker{ranges: ranges}
}

// ValidateField range-checks a single parameter. Unknown sectors are a
// caller contract violation; unknown field ids are reported as info, since
// extra data is a quality concern, not a failure.
func (c *Checker) ValidateField(fieldID string, value float64, ctx Context) (Result, error) {
	sectorRanges, ok := c.ranges[ctx.Sector]
	if !ok {
		return Result{}, fmt.Errorf("%w: %s", ErrUnsupportedSector, ctx.Sector)
	}

	r, ok := sectorRanges[fieldID]
	if !ok {
		return Result{
			FieldID: fieldID,
			IsValid: true,
			Level:   LevelInfo,
			Message: fmt.Sprintf("no engineering range defined for %q in %s projects", fieldID, ctx.Sector),
		}, nil
	}

	result := c.rangeCheck(fieldID, value, r, ctx)

	switch fieldID {
	case FieldDesignFlow:
		result = c.refineDesignFlow(result, value, ctx)
	case FieldBOD:
		result = c.refineBOD(result, value, ctx)
	}
	return result, nil
}

func (c *Checker) rangeCheck(fieldID string, value float64, r Range, ctx Context) Result {
	switch {
	case value < r.Min:
		return Result{
			FieldID:    fieldID,
			IsValid:    false,
			Level:      LevelError,
			Message:    fmt.Sprintf("%s %.2f is below the %s minimum %.2f %s", fieldID, value, ctx.Sector, r.Min, r.Unit),
			Suggestion: fmt.Sprintf("typical %s value is %.2f %s; verify the measurement and units", ctx.Sector, r.Typical, r.Unit),
		}
	case value > r.Max:
		return Result{
			FieldID:    fieldID,
			IsValid:    true,
			Level:      LevelWarning,
			Message:    fmt.Sprintf("%s %.2f exceeds the %s maximum %.2f %s", fieldID, value, ctx.Sector, r.Max, r.Unit),
			Suggestion: "flagged for review; over-range values are accepted but should be confirmed",
		}
	default:
		return Result{
			FieldID: fieldID,
			IsValid: true,
			Level:   LevelInfo,
			Message: fmt.Sprintf("%s %.2f is within the %s range %.2f-%.2f %s", fieldID, value, ctx.Sector, r.Min, r.Max, r.Unit),
		}
	}
}

// refineDesignFlow adds the municipal per-capita plausibility check,
// independent of the primary range result.
func (c *Checker) refineDesignFlow(result Result, flow float64, ctx Context) Result {
	if ctx.Sector != catalog.SectorMunicipal {
		return result
	}
	population, ok := ctx.ExistingData[FieldPopulation]
	if !ok || population <= 0 {
		return result
	}
	perCapita := flow * litersPerM3 / population
	if perCapita < perCapitaFlowMinLPerDay || perCapita > perCapitaFlowMaxLPerDay {
		if result.Level == LevelInfo {
			result.Level = LevelWarning
		}
		result.Message += fmt.Sprintf("; per-capita flow %.0f L/cap/d is outside the usual 100-600 range", perCapita)
		result.Suggestion = "check flow units and the population figure against each other"
	}
	return result
}

// refineBOD adds the biodegradability check when COD is available.
func (c *Checker) refineBOD(result Result, bod float64, ctx Context) Result {
	cod, ok := ctx.ExistingData[FieldCOD]
	if !ok || cod <= 0 {
		return result
	}
	ratio := bod / cod
	switch {
	case ratio > bodCodRatioSuspectHigh:
		if result.Level == LevelInfo {
			result.Level = LevelWarning
		}
		result.Message += fmt.Sprintf("; BOD/COD ratio %.2f is above 0.8, which usually indicates a measurement problem", ratio)
		result.Suggestion = "re-check BOD and COD sampling; COD should exceed BOD by a clear margin"
	case ratio < bodCodRatioLowBiodegrade:
		result.Message += fmt.Sprintf("; BOD/COD ratio %.2f indicates low biodegradability", ratio)
		result.Suggestion = "consider a physicochemical treatment route"
	}
	return result
}

// ValidateConsistency cross-checks related parameters. Sector-independent:
// these relations hold regardless of range tables.
func (c *Checker) ValidateConsistency(data map[string]float64, ctx Context) []Result {
	var results []Result

	bod, hasBOD := data[FieldBOD]
	cod, hasCOD := data[FieldCOD]
	if hasBOD && hasCOD && bod > cod {
		results = append(results, Result{
			FieldID:    FieldBOD,
			IsValid:    false,
			Level:      LevelError,
			Message:    fmt.Sprintf("BOD %.2f exceeds COD %.2f, which is physically impossible (COD is the theoretical upper bound for BOD)", bod, cod),
			Suggestion: "one of the two measurements is wrong; re-sample before generating a proposal",
		})
	}

	flow, hasFlow := data[FieldDesignFlow]
	population, hasPop := data[FieldPopulation]
	if hasFlow && hasPop && population > 0 {
		perCapita := flow * litersPerM3 / population
		if perCapita > perCapitaFlowAbsurdLPerDay {
			results = append(results, Result{
				FieldID:    FieldDesignFlow,
				IsValid:    true,
				Level:      LevelWarning,
				Message:    fmt.Sprintf("per-capita flow %.0f L/cap/d exceeds 1000; flow and population are likely inconsistent", perCapita),
				Suggestion: "verify design flow units (m³/d) and the served population",
			})
		}
	}

	if temp, ok := data[FieldTemperature]; ok && temp > temperatureBioRiskCelsius {
		results = append(results, Result{
			FieldID:    FieldTemperature,
			IsValid:    true,
			Level:      LevelWarning,
			Message:    fmt.Sprintf("temperature %.1f °C exceeds 45 °C; biological treatment performance is at risk", temp),
			Suggestion: "consider cooling upstream of any biological stage",
		})
	}

	return results
}
