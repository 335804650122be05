package services

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/soaringjerry/EcoImpact/internal/models"
)

// Emission factors, tons CO2e per unit.
const (
	electricityFactor     = 0.007
	houseEnergyFactor     = 1.5
	weeksPerYear          = 52
	carFactor             = 0.008
	publicTransitFactor   = 0.003
	activeTransportFactor = 0.0005

	meatDietTons   = 2.5
	mixedDietTons  = 1.8
	plantDietTons  = 1.2
	secondHandStep = 0.3

	shortFlightTons = 0.3
	longFlightTons  = 1.2
	offsetFull      = 0.7
	offsetPartial   = 0.85

	lifestyleMinimal = 0.8
	lifestyleLuxury  = 1.3
)

const (
	// ProgressBaseline is the reference footprint in tons that progress is measured from.
	ProgressBaseline = 8.2
	// DefaultTargetFootprint is every user's long-term goal in tons.
	DefaultTargetFootprint = 2.0
)

// Questionnaire field names accepted by ParseAnswers.
const (
	FieldHomeType        = "homeType"
	FieldHouseholdSize   = "householdSize"
	FieldElectricity     = "electricityUsage"
	FieldTransportMode   = "transportMode"
	FieldMilesDriven     = "milesDriven"
	FieldMPG             = "mpg"
	FieldDiet            = "diet"
	FieldMonthlySpending = "monthlySpending"
	FieldSecondHand      = "secondHand"
	FieldShortFlights    = "shortFlights"
	FieldLongFlights     = "longFlights"
	FieldOffsetEmissions = "offsetEmissions"
	FieldLifestyle       = "lifestyle"
)

// Slider ranges of the questionnaire.
const (
	maxElectricityKWh = 1000
	maxWeeklyMiles    = 500
	maxMonthlySpend   = 1000
)

// DefaultAnswers returns the questionnaire's initial answer set.
func DefaultAnswers() models.Answers {
	return models.Answers{
		HomeType:        models.HomeApartment,
		HouseholdSize:   2,
		ElectricityKWh:  300,
		TransportMode:   models.TransportCar,
		WeeklyMiles:     150,
		MPG:             25,
		Diet:            models.DietMixed,
		MonthlySpending: 200,
		SecondHand:      models.FrequencySometimes,
		ShortFlights:    1,
		LongFlights:     0,
		OffsetEmissions: models.OffsetNo,
		Lifestyle:       models.LifestyleAverage,
	}
}

// ParseAnswers builds an answer set from raw form text. Missing fields keep
// their default; text that does not parse falls back to a safe value
// (1 for household size and MPG, 0 for flights, the default for sliders).
func ParseAnswers(form map[string]string) models.Answers {
	a := DefaultAnswers()
	field := func(key string) (string, bool) {
		v, ok := form[key]
		v = strings.TrimSpace(v)
		return v, ok && v != ""
	}

	if v, ok := field(FieldHomeType); ok {
		a.HomeType = models.HomeType(v)
	}
	if v, ok := field(FieldHouseholdSize); ok {
		a.HouseholdSize = ParseIntOr(v, 1)
	}
	if v, ok := field(FieldElectricity); ok {
		a.ElectricityKWh = ParseFloatOr(v, a.ElectricityKWh)
	}
	if v, ok := field(FieldTransportMode); ok {
		a.TransportMode = models.TransportMode(v)
	}
	if v, ok := field(FieldMilesDriven); ok {
		a.WeeklyMiles = ParseFloatOr(v, a.WeeklyMiles)
	}
	if v, ok := field(FieldMPG); ok {
		a.MPG = float64(ParseIntOr(v, 1))
	}
	if v, ok := field(FieldDiet); ok {
		a.Diet = models.Diet(v)
	}
	if v, ok := field(FieldMonthlySpending); ok {
		a.MonthlySpending = ParseFloatOr(v, a.MonthlySpending)
	}
	if v, ok := field(FieldSecondHand); ok {
		a.SecondHand = models.Frequency(v)
	}
	if v, ok := field(FieldShortFlights); ok {
		a.ShortFlights = ParseIntOr(v, 0)
	}
	if v, ok := field(FieldLongFlights); ok {
		a.LongFlights = ParseIntOr(v, 0)
	}
	if v, ok := field(FieldOffsetEmissions); ok {
		a.OffsetEmissions = models.OffsetBehavior(v)
	}
	if v, ok := field(FieldLifestyle); ok {
		a.Lifestyle = models.Lifestyle(v)
	}
	return SanitizeAnswers(a)
}

// SanitizeAnswers clamps numeric fields into range and maps unknown choices
// onto the branch the formula treats them as.
func SanitizeAnswers(a models.Answers) models.Answers {
	a.HomeType = models.HomeType(normalizeChoice(string(a.HomeType)))
	switch a.HomeType {
	case models.HomeApartment, models.HomeHouse:
	default:
		a.HomeType = models.HomeOther
	}
	a.TransportMode = models.TransportMode(normalizeChoice(string(a.TransportMode)))
	switch a.TransportMode {
	case models.TransportCar, models.TransportPublic:
	default:
		a.TransportMode = models.TransportBike
	}
	a.Diet = models.Diet(normalizeChoice(string(a.Diet)))
	switch a.Diet {
	case models.DietMeat, models.DietMixed:
	default:
		a.Diet = models.DietVeg
	}
	a.SecondHand = models.Frequency(normalizeChoice(string(a.SecondHand)))
	switch a.SecondHand {
	case models.FrequencyRarely, models.FrequencyOften:
	default:
		a.SecondHand = models.FrequencySometimes
	}
	a.OffsetEmissions = models.OffsetBehavior(normalizeChoice(string(a.OffsetEmissions)))
	switch a.OffsetEmissions {
	case models.OffsetYes, models.OffsetSometimes:
	default:
		a.OffsetEmissions = models.OffsetNo
	}
	a.Lifestyle = models.Lifestyle(normalizeChoice(string(a.Lifestyle)))
	switch a.Lifestyle {
	case models.LifestyleMinimal, models.LifestyleLuxury:
	default:
		a.Lifestyle = models.LifestyleAverage
	}

	if a.HouseholdSize < 1 {
		a.HouseholdSize = 1
	}
	if !(a.MPG >= 1) {
		a.MPG = 1
	}
	if a.ShortFlights < 0 {
		a.ShortFlights = 0
	}
	if a.LongFlights < 0 {
		a.LongFlights = 0
	}
	a.ElectricityKWh = clamp(a.ElectricityKWh, 0, maxElectricityKWh)
	a.WeeklyMiles = clamp(a.WeeklyMiles, 0, maxWeeklyMiles)
	a.MonthlySpending = clamp(a.MonthlySpending, 0, maxMonthlySpend)
	return a
}

// Estimate computes the footprint breakdown for a sanitized answer set.
// The lifestyle multiplier applies to the aggregate only; the four category
// values are returned unscaled and unrounded. The total is rounded to one decimal.
func Estimate(a models.Answers, at time.Time) models.FootprintRecord {
	home := HomeEnergy(a)
	transport := Transportation(a)
	food := FoodConsumption(a)
	travel := TravelOther(a)

	sum := home + transport + food + travel
	return models.FootprintRecord{
		Total:           roundTo(sum*LifestyleMultiplier(a.Lifestyle), 1),
		HomeEnergy:      home,
		Transportation:  transport,
		FoodConsumption: food,
		TravelOther:     travel,
		Date:            at,
	}
}

// HomeEnergy is the per-person share of household electricity emissions.
func HomeEnergy(a models.Answers) float64 {
	v := a.ElectricityKWh * electricityFactor
	if a.HomeType == models.HomeHouse {
		v *= houseEnergyFactor
	}
	size := a.HouseholdSize
	if size < 1 {
		size = 1
	}
	return v / float64(size)
}

// Transportation annualizes weekly mileage for the chosen mode.
func Transportation(a models.Answers) float64 {
	annual := a.WeeklyMiles * weeksPerYear
	switch a.TransportMode {
	case models.TransportCar:
		mpg := a.MPG
		if !(mpg > 0) {
			mpg = 1
		}
		return annual / mpg * carFactor
	case models.TransportPublic:
		return annual * publicTransitFactor
	default:
		return annual * activeTransportFactor
	}
}

// FoodConsumption is the diet baseline adjusted for second-hand buying.
func FoodConsumption(a models.Answers) float64 {
	var v float64
	switch a.Diet {
	case models.DietMeat:
		v = meatDietTons
	case models.DietMixed:
		v = mixedDietTons
	default:
		v = plantDietTons
	}
	switch a.SecondHand {
	case models.FrequencyOften:
		v -= secondHandStep
	case models.FrequencyRarely:
		v += secondHandStep
	}
	return v
}

// TravelOther covers flights, reduced by offsetting.
func TravelOther(a models.Answers) float64 {
	v := float64(a.ShortFlights)*shortFlightTons + float64(a.LongFlights)*longFlightTons
	switch a.OffsetEmissions {
	case models.OffsetYes:
		v *= offsetFull
	case models.OffsetSometimes:
		v *= offsetPartial
	}
	return v
}

// LifestyleMultiplier scales the summed categories.
func LifestyleMultiplier(l models.Lifestyle) float64 {
	switch l {
	case models.LifestyleMinimal:
		return lifestyleMinimal
	case models.LifestyleLuxury:
		return lifestyleLuxury
	default:
		return 1
	}
}

// ProgressPercent measures how far footprint has come from ProgressBaseline
// toward target, rounded to the nearest integer. ok is false when the target
// equals the baseline and the ratio is undefined.
func ProgressPercent(footprint, target float64) (pct int, ok bool) {
	span := ProgressBaseline - target
	if span == 0 {
		return 0, false
	}
	return int(math.Round(100 - (footprint-target)/span*100)), true
}

// Estimator stamps estimates with its clock.
type Estimator struct {
	now func() time.Time
}

func NewEstimator() *Estimator {
	return &Estimator{now: func() time.Time { return time.Now().UTC() }}
}

// Estimate sanitizes a and returns its footprint record.
func (e *Estimator) Estimate(a models.Answers) models.FootprintRecord {
	return Estimate(SanitizeAnswers(a), e.now())
}

// ParseIntOr parses the leading integer of s, returning fallback when s has
// no digits or parses to zero.
func ParseIntOr(s string, fallback int) int {
	s = strings.TrimSpace(s)
	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return fallback
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil || n == 0 {
		return fallback
	}
	return n
}

// ParseFloatOr parses s as a finite float, returning fallback otherwise.
func ParseFloatOr(s string, fallback float64) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return fallback
	}
	return f
}

func normalizeChoice(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) || v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func roundTo(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
