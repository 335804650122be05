package services

import (
	"bytes"
	"encoding/csv"
	"strconv"
	"time"

	"github.com/soaringjerry/EcoImpact/internal/models"
)

// ExportHistoryCSV renders the footprint history, one record per row in
// the order given.
func ExportHistoryCSV(history []models.FootprintRecord) ([]byte, error) {
	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)
	_ = w.Write([]string{"date", "total", "home_energy", "transportation", "food_consumption", "travel_other"})
	for _, r := range history {
		rec := []string{
			r.Date.UTC().Format(time.RFC3339),
			ftoa(r.Total),
			ftoa(r.HomeEnergy),
			ftoa(r.Transportation),
			ftoa(r.FoodConsumption),
			ftoa(r.TravelOther),
		}
		if err := w.Write(rec); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

// ExportActionsCSV renders the action log, most recent first.
func ExportActionsCSV(actions []models.Action) ([]byte, error) {
	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)
	_ = w.Write([]string{"id", "date", "title", "category", "impact", "icon"})
	for _, a := range actions {
		rec := []string{
			a.ID,
			a.Date.UTC().Format(time.RFC3339),
			a.Title,
			string(a.Category),
			ftoa(a.Impact),
			a.Icon,
		}
		if err := w.Write(rec); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

// ftoa uses the shortest representation that round-trips.
func ftoa(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
