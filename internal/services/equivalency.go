package services

import (
	"fmt"
	"math"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// EPA greenhouse gas equivalency factors, kg CO2e per unit.
const (
	epaMilesDrivenFactor      = 0.192
	epaSmartphoneChargeFactor = 0.00822
	epaTreeSeedlingFactor     = 60.0
	epaHomeDayFactor          = 18.3

	tonsToKg = 1000.0

	largeNumberThreshold = 1_000_000
	billionThreshold     = 1_000_000_000
)

// EquivalencyKind identifies a real-world comparison.
type EquivalencyKind string

const (
	EquivalencyMilesDriven   EquivalencyKind = "miles_driven"
	EquivalencySmartphones   EquivalencyKind = "smartphones_charged"
	EquivalencyTreeSeedlings EquivalencyKind = "tree_seedlings"
	EquivalencyHomeDays      EquivalencyKind = "home_days"
)

// Equivalency is one comparison for a footprint.
type Equivalency struct {
	Kind      EquivalencyKind `json:"kind"`
	Value     float64         `json:"value"`
	Formatted string          `json:"formatted"`
	Label     string          `json:"label"`
}

// EquivalencySummary expresses a footprint in relatable terms.
type EquivalencySummary struct {
	Kg          float64       `json:"kg"`
	Items       []Equivalency `json:"items"`
	DisplayText string        `json:"display_text"`
	Empty       bool          `json:"empty"`
}

//nolint:gochecknoglobals // message.Printer is safe for concurrent use.
var printer = message.NewPrinter(language.English)

// Equivalencies converts an annual footprint in tons into comparisons.
// A zero footprint yields an empty summary.
func Equivalencies(tons float64) (EquivalencySummary, error) {
	if math.IsNaN(tons) || math.IsInf(tons, 0) {
		return EquivalencySummary{Empty: true}, ErrNonFiniteFootprint
	}
	if tons < 0 {
		return EquivalencySummary{Empty: true}, ErrNegativeFootprint
	}
	kg := tons * tonsToKg
	if kg < 1 {
		return EquivalencySummary{Kg: kg, Empty: true}, nil
	}

	items := []Equivalency{
		newEquivalency(EquivalencyMilesDriven, kg/epaMilesDrivenFactor, "miles driven"),
		newEquivalency(EquivalencySmartphones, kg/epaSmartphoneChargeFactor, "smartphones charged"),
		newEquivalency(EquivalencyTreeSeedlings, kg/epaTreeSeedlingFactor, "tree seedlings grown for 10 years"),
		newEquivalency(EquivalencyHomeDays, kg/epaHomeDayFactor, "days of home electricity"),
	}
	display := fmt.Sprintf("Equivalent to driving %s miles or charging %s smartphones",
		approx(items[0].Formatted), approx(items[1].Formatted))
	return EquivalencySummary{Kg: kg, Items: items, DisplayText: display}, nil
}

func approx(s string) string {
	if strings.HasPrefix(s, "~") {
		return s
	}
	return "~" + s
}

func newEquivalency(kind EquivalencyKind, v float64, label string) Equivalency {
	return Equivalency{Kind: kind, Value: v, Formatted: FormatQuantity(v), Label: label}
}

// FormatQuantity renders v with thousands separators, or as "~X.X million"
// and "~X.X billion" for large values.
func FormatQuantity(v float64) string {
	switch {
	case v >= billionThreshold:
		return fmt.Sprintf("~%.1f billion", v/billionThreshold)
	case v >= largeNumberThreshold:
		return fmt.Sprintf("~%.1f million", v/largeNumberThreshold)
	default:
		return printer.Sprintf("%d", int64(math.Round(v)))
	}
}

// FormatTons renders a tons value with one decimal and separators.
func FormatTons(v float64) string {
	return printer.Sprintf("%.1f", v)
}
