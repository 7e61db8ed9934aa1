// Package catalog holds the read-only treatment technology reference data
// and per-sector cost parameters consumed by the costing and selection
// engines. The catalog is injected into those engines at construction time;
// Default() builds the shipped data set.
package catalog

import "fmt"

// Sector identifies the project sector a proposal is built for.
type Sector string

const (
	SectorMunicipal   Sector = "municipal"
	SectorIndustrial  Sector = "industrial"
	SectorResidential Sector = "residential"
	SectorCommercial  Sector = "commercial"
)

// Stage places a technology within the treatment train.
type Stage string

const (
	StagePrimary   Stage = "primary"
	StageSecondary Stage = "secondary"
	StageTertiary  Stage = "tertiary"
)

// Rating is a qualitative low/medium/high score.
type Rating string

const (
	RatingLow    Rating = "low"
	RatingMedium Rating = "medium"
	RatingHigh   Rating = "high"
)

// TechnologyOption describes one treatment technology. Immutable reference
// data, keyed by sector in the Catalog.
type TechnologyOption struct {
	Name       string   `json:"name"`
	Stage      Stage    `json:"stage"`
	Efficiency int      `json:"efficiency"` // BOD removal, 0-100
	Complexity Rating   `json:"complexity"`
	Footprint  Rating   `json:"footprint"`
	Energy     Rating   `json:"energy"`
	Pros       []string `json:"pros,omitempty"`
	Cons       []string `json:"cons,omitempty"`
}

// CostParams are the per-sector base unit costs the CAPEX/OPEX formulas
// start from.
type CostParams struct {
	EquipmentUSDPerM3d    float64 `json:"equipmentUsdPerM3d"`
	ConstructionUSDPerM3d float64 `json:"constructionUsdPerM3d"`
	ChemicalsUSDPerM3     float64 `json:"chemicalsUsdPerM3"`
	EnergyUSDPerKWh       float64 `json:"energyUsdPerKwh"`
	LaborUSDPerDay        float64 `json:"laborUsdPerDay"`
}

// Catalog is the full reference data set. Read-only after construction;
// safe for concurrent use.
type Catalog struct {
	technologies map[Sector][]TechnologyOption
	costs        map[Sector]CostParams
}

// ErrUnknownSector is returned by lookups for a sector absent from the
// catalog. Callers treat this as a contract violation, not a data issue.
var ErrUnknownSector = fmt.Errorf("UNSUPPORTED_SECTOR")

// New builds a catalog from explicit reference data. Both maps are copied so
// later mutation by the caller cannot leak into the catalog.
func New(technologies map[Sector][]TechnologyOption, costs map[Sector]CostParams) *Catalog {
	techCopy := make(map[Sector][]TechnologyOption, len(technologies))
	for s, opts := range technologies {
		techCopy[s] = append([]TechnologyOption(nil), opts...)
	}
	costCopy := make(map[Sector]CostParams, len(costs))
	for s, p := range costs {
		costCopy[s] = p
	}
	return &Catalog{technologies: techCopy, costs: costCopy}
}

// Technologies returns the options available for a sector.
func (c *Catalog) Technologies(sector Sector) ([]TechnologyOption, error) {
	opts, ok := c.technologies[sector]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSector, sector)
	}
	return opts, nil
}

// Technology returns a single option by name within a sector.
func (c *Catalog) Technology(sector Sector, name string) (TechnologyOption, error) {
	opts, err := c.Technologies(sector)
	if err != nil {
		return TechnologyOption{}, err
	}
	for _, opt := range opts {
		if opt.Name == name {
			return opt, nil
		}
	}
	return TechnologyOption{}, fmt.Errorf("technology %q not in %s catalog", name, sector)
}

// Costs returns the base unit costs for a sector.
func (c *Catalog) Costs(sector Sector) (CostParams, error) {
	p, ok := c.costs[sector]
	if !ok {
		return CostParams{}, fmt.Errorf("%w: %s", ErrUnknownSector, sector)
	}
	return p, nil
}

// HasSector reports whether the sector is present in the catalog.
func (c *Catalog) HasSector(sector Sector) bool {
	_, ok := c.technologies[sector]
	return ok
}

// Sectors lists the sectors present in the catalog.
func (c *Catalog) Sectors() []Sector {
	out := make([]Sector, 0, len(c.technologies))
	for s := range c.technologies {
		out = append(out, s)
	}
	return out
}
