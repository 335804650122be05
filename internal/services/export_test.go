package services

import (
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soaringjerry/EcoImpact/internal/models"
)

func readCSV(t *testing.T, b []byte) [][]string {
	t.Helper()
	recs, err := csv.NewReader(strings.NewReader(string(b))).ReadAll()
	require.NoError(t, err)
	return recs
}

func TestExportHistoryCSV(t *testing.T) {
	at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	history := []models.FootprintRecord{
		{Total: 8.2, HomeEnergy: 2.1, Transportation: 3.4, FoodConsumption: 1.8, TravelOther: 0.9, Date: at},
		{Total: 7.7, HomeEnergy: 1.05, Transportation: 2.496, FoodConsumption: 1.8, TravelOther: 0.3, Date: at.Add(24 * time.Hour)},
	}
	b, err := ExportHistoryCSV(history)
	require.NoError(t, err)

	recs := readCSV(t, b)
	require.Len(t, recs, 3)
	assert.Equal(t, "date,total,home_energy,transportation,food_consumption,travel_other", strings.Join(recs[0], ","))
	assert.Equal(t, []string{"2024-03-01T12:00:00Z", "8.2", "2.1", "3.4", "1.8", "0.9"}, recs[1])
	assert.Equal(t, "2.496", recs[2][3])
}

func TestExportHistoryCSV_Empty(t *testing.T) {
	b, err := ExportHistoryCSV(nil)
	require.NoError(t, err)
	assert.Len(t, readCSV(t, b), 1)
}

func TestExportActionsCSV(t *testing.T) {
	at := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	actions := []models.Action{
		{ID: "a2", Title: "Carpooled, twice", Date: at, Impact: 0.05, Category: models.CategoryTransport, Icon: "car"},
		{ID: "a1", Title: "Switched to LED lighting", Date: at.Add(-time.Hour), Impact: 0.1, Category: models.CategoryHome, Icon: "lightbulb"},
	}
	b, err := ExportActionsCSV(actions)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"Carpooled, twice"`)

	recs := readCSV(t, b)
	require.Len(t, recs, 3)
	assert.Equal(t, "id,date,title,category,impact,icon", strings.Join(recs[0], ","))
	assert.Equal(t, []string{"a2", "2024-03-01T00:00:00Z", "Carpooled, twice", "transport", "0.05", "car"}, recs[1])
	assert.Equal(t, "a1", recs[2][0])
}
