package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_CoversAllSectors(t *testing.T) {
	cat := Default()

	for _, sector := range []Sector{SectorMunicipal, SectorIndustrial, SectorResidential, SectorCommercial} {
		techs, err := cat.Technologies(sector)
		require.NoError(t, err, "sector %s", sector)
		assert.NotEmpty(t, techs)

		costs, err := cat.Costs(sector)
		require.NoError(t, err)
		assert.Greater(t, costs.EquipmentUSDPerM3d, 0.0)
		assert.Greater(t, costs.ConstructionUSDPerM3d, 0.0)

		for _, tech := range techs {
			assert.GreaterOrEqual(t, tech.Efficiency, 0)
			assert.LessOrEqual(t, tech.Efficiency, 100)
			assert.Contains(t, []Rating{RatingLow, RatingMedium, RatingHigh}, tech.Complexity, "%s complexity", tech.Name)
			assert.Contains(t, []Rating{RatingLow, RatingMedium, RatingHigh}, tech.Energy, "%s energy", tech.Name)
		}
	}
}

func TestCatalog_UnknownSector(t *testing.T) {
	cat := Default()

	_, err := cat.Technologies(Sector("agricultural"))
	assert.ErrorIs(t, err, ErrUnknownSector)

	_, err = cat.Costs(Sector("agricultural"))
	assert.ErrorIs(t, err, ErrUnknownSector)

	assert.False(t, cat.HasSector(Sector("agricultural")))
}

func TestCatalog_Technology_ByName(t *testing.T) {
	cat := Default()

	tech, err := cat.Technology(SectorMunicipal, "Constructed Wetlands")
	require.NoError(t, err)
	assert.Equal(t, RatingLow, tech.Energy)

	_, err = cat.Technology(SectorMunicipal, "Cold Fusion Reactor")
	assert.Error(t, err)
}

func TestNew_CopiesInputMaps(t *testing.T) {
	techs := map[Sector][]TechnologyOption{
		SectorMunicipal: {{Name: "A", Complexity: RatingLow, Energy: RatingLow}},
	}
	costs := map[Sector]CostParams{
		SectorMunicipal: {EquipmentUSDPerM3d: 100},
	}
	cat := New(techs, costs)

	// Mutating the caller's maps must not leak into the catalog.
	techs[SectorMunicipal][0].Name = "mutated"
	delete(costs, SectorMunicipal)

	got, err := cat.Technology(SectorMunicipal, "A")
	require.NoError(t, err)
	assert.Equal(t, "A", got.Name)

	_, err = cat.Costs(SectorMunicipal)
	assert.NoError(t, err)
}
