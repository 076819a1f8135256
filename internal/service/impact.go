package service

import (
	"math"

	"github.com/ecofinds/marketplace/internal/models"
)

// Base savings attributed to keeping any item in circulation.
const (
	baseCO2    = 10.0   // kg
	baseWater  = 1000.0 // liters
	baseEnergy = 50.0   // kWh
)

type impactMultiplier struct {
	co2    float64
	water  float64
	energy float64
}

var categoryMultipliers = map[models.Category]impactMultiplier{
	models.CategoryClothing:    {co2: 2.5, water: 10, energy: 3},
	models.CategoryElectronics: {co2: 8, water: 15, energy: 12},
	models.CategoryFurniture:   {co2: 4, water: 2, energy: 6},
	models.CategoryBooks:       {co2: 1.5, water: 3, energy: 2},
	models.CategorySports:      {co2: 2, water: 4, energy: 3},
	models.CategoryAccessories: {co2: 1.8, water: 5, energy: 2.5},
	models.CategoryHome:        {co2: 3, water: 6, energy: 4},
	models.CategoryToys:        {co2: 2.2, water: 4, energy: 3.5},
}

// Fallback row for unknown or unlisted categories.
var unknownMultiplier = impactMultiplier{co2: 2, water: 5, energy: 3}

var conditionMultipliers = map[models.Condition]float64{
	models.ConditionExcellent: 1.2,
	models.ConditionGood:      1.0,
	models.ConditionFair:      0.8,
}

// EstimateImpact derives the environmental savings of a listing from its
// category and condition alone. The function is total and deterministic:
// unknown categories and conditions fall back to neutral rows instead of
// failing.
func EstimateImpact(category models.Category, condition models.Condition) models.EcoImpact {
	cat, ok := categoryMultipliers[category]
	if !ok {
		cat = unknownMultiplier
	}

	cond, ok := conditionMultipliers[condition]
	if !ok {
		cond = 1.0
	}

	return models.EcoImpact{
		CO2Saved:    round1(baseCO2 * cat.co2 * cond),
		WaterSaved:  math.Round(baseWater * cat.water * cond),
		EnergySaved: round1(baseEnergy * cat.energy * cond),
	}
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
