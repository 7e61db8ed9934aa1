package catalog

// Default builds the shipped reference catalog. Numbers reflect the
// engineering team's 2025 unit-cost review; override via New for testing or
// regional pricing.
func Default() *Catalog {
	return New(defaultTechnologies(), defaultCosts())
}

func defaultCosts() map[Sector]CostParams {
	return map[Sector]CostParams{
		SectorMunicipal: {
			EquipmentUSDPerM3d:    350,
			ConstructionUSDPerM3d: 420,
			ChemicalsUSDPerM3:     0.03,
			EnergyUSDPerKWh:       0.12,
			LaborUSDPerDay:        180,
		},
		SectorIndustrial: {
			EquipmentUSDPerM3d:    520,
			ConstructionUSDPerM3d: 460,
			ChemicalsUSDPerM3:     0.09,
			EnergyUSDPerKWh:       0.12,
			LaborUSDPerDay:        210,
		},
		SectorResidential: {
			EquipmentUSDPerM3d:    300,
			ConstructionUSDPerM3d: 360,
			ChemicalsUSDPerM3:     0.02,
			EnergyUSDPerKWh:       0.14,
			LaborUSDPerDay:        160,
		},
		SectorCommercial: {
			EquipmentUSDPerM3d:    330,
			ConstructionUSDPerM3d: 390,
			ChemicalsUSDPerM3:     0.03,
			EnergyUSDPerKWh:       0.13,
			LaborUSDPerDay:        170,
		},
	}
}

func defaultTechnologies() map[Sector][]TechnologyOption {
	return map[Sector][]TechnologyOption{
		SectorMunicipal: {
			{
				Name:       "Conventional Activated Sludge",
				Stage:      StageSecondary,
				Efficiency: 92,
				Complexity: RatingHigh,
				Footprint:  RatingMedium,
				Energy:     RatingHigh,
				Pros:       []string{"proven at large scale", "stable effluent quality"},
				Cons:       []string{"high energy demand", "skilled operators required"},
			},
			{
				Name:       "Constructed Wetlands",
				Stage:      StageSecondary,
				Efficiency: 80,
				Complexity: RatingLow,
				Footprint:  RatingHigh,
				Energy:     RatingLow,
				Pros:       []string{"minimal energy use", "low operating cost"},
				Cons:       []string{"large land requirement", "seasonal performance"},
			},
			{
				Name:       "UASB + Trickling Filter",
				Stage:      StageSecondary,
				Efficiency: 85,
				Complexity: RatingMedium,
				Footprint:  RatingMedium,
				Energy:     RatingMedium,
				Pros:       []string{"biogas recovery", "moderate footprint"},
				Cons:       []string{"sensitive to cold climates"},
			},
		},
		SectorIndustrial: {
			{
				Name:       "DAF + Coagulation/Flocculation",
				Stage:      StagePrimary,
				Efficiency: 70,
				Complexity: RatingMedium,
				Footprint:  RatingLow,
				Energy:     RatingMedium,
				Pros:       []string{"handles high organic and solids loads", "compact"},
				Cons:       []string{"chemical consumption", "sludge disposal"},
			},
			{
				Name:       "Sequencing Batch Reactor",
				Stage:      StageSecondary,
				Efficiency: 90,
				Complexity: RatingHigh,
				Footprint:  RatingLow,
				Energy:     RatingHigh,
				Pros:       []string{"flexible cycling for variable loads", "single-tank process"},
				Cons:       []string{"automation dependent"},
			},
		},
		SectorResidential: {
			{
				Name:       "Septic Tank + Biofilter",
				Stage:      StagePrimary,
				Efficiency: 65,
				Complexity: RatingLow,
				Footprint:  RatingMedium,
				Energy:     RatingLow,
				Pros:       []string{"passive operation", "low cost"},
				Cons:       []string{"limited effluent quality"},
			},
			{
				Name:       "Membrane Bioreactor",
				Stage:      StageSecondary,
				Efficiency: 97,
				Complexity: RatingHigh,
				Footprint:  RatingLow,
				Energy:     RatingHigh,
				Pros:       []string{"reuse-grade effluent", "small footprint"},
				Cons:       []string{"membrane replacement cost", "fouling management"},
			},
		},
		SectorCommercial: {
			{
				Name:       "Extended Aeration",
				Stage:      StageSecondary,
				Efficiency: 88,
				Complexity: RatingMedium,
				Footprint:  RatingMedium,
				Energy:     RatingMedium,
				Pros:       []string{"simple operation", "handles load swings"},
				Cons:       []string{"higher aeration energy than conventional"},
			},
		},
	}
}
