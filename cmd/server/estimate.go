package main

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/soaringjerry/EcoImpact/internal/models"
	"github.com/soaringjerry/EcoImpact/internal/services"
)

// answerFlags maps CLI flag names onto questionnaire fields.
var answerFlags = []struct {
	flag, field, usage string
}{
	{"home-type", services.FieldHomeType, "apartment|house|other"},
	{"household-size", services.FieldHouseholdSize, "people in the household"},
	{"electricity", services.FieldElectricity, "monthly electricity use in kWh"},
	{"transport", services.FieldTransportMode, "car|public|bike"},
	{"miles", services.FieldMilesDriven, "miles travelled per week"},
	{"mpg", services.FieldMPG, "vehicle fuel efficiency"},
	{"diet", services.FieldDiet, "meat|mixed|veg"},
	{"spending", services.FieldMonthlySpending, "monthly spending on goods in USD"},
	{"second-hand", services.FieldSecondHand, "rarely|sometimes|often"},
	{"short-flights", services.FieldShortFlights, "short flights per year"},
	{"long-flights", services.FieldLongFlights, "long flights per year"},
	{"offset", services.FieldOffsetEmissions, "yes|sometimes|no"},
	{"lifestyle", services.FieldLifestyle, "minimal|average|luxury"},
}

type estimateResult struct {
	Answers       models.Answers               `json:"answers"`
	Footprint     models.FootprintRecord       `json:"footprint"`
	Multiplier    float64                      `json:"multiplier"`
	Breakdown     []services.CategoryShare     `json:"breakdown"`
	Equivalencies *services.EquivalencySummary `json:"equivalencies,omitempty"`
}

func newEstimateCommand() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "estimate",
		Short: "Estimate an annual carbon footprint from questionnaire answers",
		Long: `Estimate an annual carbon footprint in tons CO2e.

Unset answers take the questionnaire defaults. Values that do not parse
fall back the same way the web form does.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if format != "text" && format != "json" {
				return fmt.Errorf("invalid format %q: must be text or json", format)
			}
			form := map[string]string{}
			byFlag := map[string]string{}
			for _, f := range answerFlags {
				byFlag[f.flag] = f.field
			}
			cmd.Flags().Visit(func(fl *pflag.Flag) {
				if field, ok := byFlag[fl.Name]; ok {
					form[field] = fl.Value.String()
				}
			})
			res := estimateFrom(form, time.Now().UTC())
			if format == "json" {
				return writeEstimateJSON(cmd.OutOrStdout(), res)
			}
			return writeEstimateText(cmd.OutOrStdout(), res)
		},
	}
	for _, f := range answerFlags {
		cmd.Flags().String(f.flag, "", f.usage)
	}
	cmd.Flags().StringVar(&format, "format", "text", "output format (text|json)")
	return cmd
}

func estimateFrom(form map[string]string, now time.Time) estimateResult {
	answers := services.ParseAnswers(form)
	rec := services.Estimate(answers, now)
	res := estimateResult{
		Answers:    answers,
		Footprint:  rec,
		Multiplier: services.LifestyleMultiplier(answers.Lifestyle),
		Breakdown:  services.Breakdown(rec),
	}
	if eq, err := services.Equivalencies(rec.Total); err == nil {
		res.Equivalencies = &eq
	}
	return res
}

func writeEstimateJSON(w io.Writer, res estimateResult) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}

func writeEstimateText(w io.Writer, res estimateResult) error {
	var err error
	p := func(format string, args ...any) {
		if err == nil {
			_, err = fmt.Fprintf(w, format, args...)
		}
	}
	p("Total: %s tons CO2e/year\n", services.FormatTons(res.Footprint.Total))
	for _, c := range res.Breakdown {
		p("  %-18s %6s t  %3d%%\n", c.Category, services.FormatTons(c.Tons), c.Percent)
	}
	if res.Multiplier != 1 {
		p("Lifestyle multiplier: %.1f\n", res.Multiplier)
	}
	if res.Equivalencies != nil && !res.Equivalencies.Empty {
		p("%s\n", res.Equivalencies.DisplayText)
	}
	return err
}
