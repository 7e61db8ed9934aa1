package techcheck

import "proposal-workers/internal/engine/catalog"

// Range is the engineering norm for one parameter in one sector.
type Range struct {
	Min     float64
	Max     float64
	Typical float64
	Unit    string
}

// RangeTable maps field id -> range, per sector. Injected into the Checker;
// DefaultRanges builds the shipped tables.
type RangeTable map[catalog.Sector]map[string]Range

// Field ids the checker knows ranges for.
const (
	FieldDesignFlow  = "design-flow"
	FieldBOD         = "bod"
	FieldCOD         = "cod"
	FieldTSS         = "tss"
	FieldPH          = "ph"
	FieldTemperature = "temperature"
	FieldPopulation  = "population"
)

// DefaultRanges returns the shipped sector norm tables.
func DefaultRanges() RangeTable {
	return RangeTable{
		catalog.SectorMunicipal: {
			FieldDesignFlow:  {Min: 10, Max: 100000, Typical: 5000, Unit: "m³/d"},
			FieldBOD:         {Min: 150, Max: 600, Typical: 300, Unit: "mg/L"},
			FieldCOD:         {Min: 300, Max: 1200, Typical: 600, Unit: "mg/L"},
			FieldTSS:         {Min: 100, Max: 500, Typical: 250, Unit: "mg/L"},
			FieldPH:          {Min: 6, Max: 9, Typical: 7.2},
			FieldTemperature: {Min: 10, Max: 35, Typical: 20, Unit: "°C"},
			FieldPopulation:  {Min: 100, Max: 5000000, Typical: 50000},
		},
		catalog.SectorIndustrial: {
			FieldDesignFlow:  {Min: 5, Max: 50000, Typical: 1200, Unit: "m³/d"},
			FieldBOD:         {Min: 200, Max: 3000, Typical: 800, Unit: "mg/L"},
			FieldCOD:         {Min: 500, Max: 8000, Typical: 2000, Unit: "mg/L"},
			FieldTSS:         {Min: 100, Max: 2000, Typical: 500, Unit: "mg/L"},
			FieldPH:          {Min: 4, Max: 11, Typical: 7},
			FieldTemperature: {Min: 10, Max: 45, Typical: 28, Unit: "°C"},
			FieldPopulation:  {Min: 10, Max: 50000, Typical: 500},
		},
		catalog.SectorResidential: {
			FieldDesignFlow:  {Min: 1, Max: 300, Typical: 50, Unit: "m³/d"},
			FieldBOD:         {Min: 200, Max: 400, Typical: 280, Unit: "mg/L"},
			FieldCOD:         {Min: 400, Max: 800, Typical: 560, Unit: "mg/L"},
			FieldTSS:         {Min: 150, Max: 400, Typical: 220, Unit: "mg/L"},
			FieldPH:          {Min: 6.5, Max: 8.5, Typical: 7.4},
			FieldTemperature: {Min: 10, Max: 30, Typical: 22, Unit: "°C"},
			FieldPopulation:  {Min: 4, Max: 2000, Typical: 150},
		},
		catalog.SectorCommercial: {
			FieldDesignFlow:  {Min: 2, Max: 2000, Typical: 200, Unit: "m³/d"},
			FieldBOD:         {Min: 150, Max: 500, Typical: 300, Unit: "mg/L"},
			FieldCOD:         {Min: 300, Max: 1000, Typical: 600, Unit: "mg/L"},
			FieldTSS:         {Min: 100, Max: 400, Typical: 200, Unit: "mg/L"},
			FieldPH:          {Min: 6, Max: 9, Typical: 7.2},
			FieldTemperature: {Min: 10, Max: 35, Typical: 23, Unit: "°C"},
			FieldPopulation:  {Min: 10, Max: 20000, Typical: 800},
		},
	}
}
