package services

import (
	"math"
	"time"

	"github.com/soaringjerry/EcoImpact/internal/models"
)

const (
	recentActionsLimit = 3
	dashboardRecsLimit = 2
	ecoWarriorFactor   = 0.8
	day                = 24 * time.Hour
)

// CategoryShare is one component of the latest breakdown.
type CategoryShare struct {
	Category string  `json:"category"`
	Tons     float64 `json:"tons"`
	Percent  int     `json:"percent"`
}

// ChallengeView is an upcoming challenge as seen by the current user.
type ChallengeView struct {
	models.Challenge
	DaysUntilStart int  `json:"daysUntilStart"`
	Joined         bool `json:"joined"`
}

// Dashboard is the signed-in overview. Progress is nil while the user has
// no footprint or the target equals the progress baseline. Trend is the
// percent change of the latest record against the one before it.
type Dashboard struct {
	User            *models.User            `json:"user"`
	Footprint       *float64                `json:"footprint"`
	Target          float64                 `json:"targetFootprint"`
	Progress        *int                    `json:"progress"`
	Rank            int                     `json:"rank"`
	Trend           *float64                `json:"trend"`
	Latest          *models.FootprintRecord `json:"latest"`
	Breakdown       []CategoryShare         `json:"breakdown"`
	HistoryCount    int                     `json:"historyCount"`
	RecentActions   []models.Action         `json:"recentActions"`
	ActionCount     int                     `json:"actionCount"`
	TotalImpact     float64                 `json:"totalImpact"`
	Recommendations []models.Recommendation `json:"recommendations"`
	Challenges      []ChallengeView         `json:"challenges"`
	Equivalencies   *EquivalencySummary     `json:"equivalencies,omitempty"`
}

// BuildDashboard assembles the dashboard for u at now.
func BuildDashboard(u *models.User, history []models.FootprintRecord, catalog *Catalog, now time.Time) Dashboard {
	d := Dashboard{
		User:            u,
		Footprint:       u.Footprint,
		Target:          u.TargetFootprint,
		Rank:            u.Rank,
		Breakdown:       []CategoryShare{},
		HistoryCount:    len(history),
		RecentActions:   []models.Action{},
		ActionCount:     len(u.Actions),
		Recommendations: []models.Recommendation{},
		Challenges:      []ChallengeView{},
	}
	if u.Footprint != nil {
		if p, ok := ProgressPercent(*u.Footprint, u.TargetFootprint); ok {
			d.Progress = &p
		}
		if eq, err := Equivalencies(*u.Footprint); err == nil && !eq.Empty {
			d.Equivalencies = &eq
		}
	}

	if n := len(history); n > 0 {
		latest := history[n-1]
		d.Latest = &latest
		d.Breakdown = Breakdown(latest)
		if n > 1 {
			if prev := history[n-2].Total; prev != 0 {
				t := roundTo((latest.Total-prev)/prev*100, 1)
				d.Trend = &t
			}
		}
	}

	for i, a := range u.Actions {
		if i < recentActionsLimit {
			d.RecentActions = append(d.RecentActions, a)
		}
		d.TotalImpact += a.Impact
	}
	d.TotalImpact = roundTo(d.TotalImpact, 2)

	if catalog != nil {
		recs := catalog.Recommendations()
		if len(recs) > dashboardRecsLimit {
			recs = recs[:dashboardRecsLimit]
		}
		d.Recommendations = recs
		for _, ch := range catalog.UpcomingChallenges() {
			d.Challenges = append(d.Challenges, ChallengeView{
				Challenge:      ch,
				DaysUntilStart: DaysUntil(ch.StartDate, now),
				Joined:         u.HasChallenge(ch.ID),
			})
		}
	}
	return d
}

// Breakdown returns the four categories of rec with their share of the sum.
func Breakdown(rec models.FootprintRecord) []CategoryShare {
	parts := []CategoryShare{
		{Category: "homeEnergy", Tons: rec.HomeEnergy},
		{Category: "transportation", Tons: rec.Transportation},
		{Category: "foodConsumption", Tons: rec.FoodConsumption},
		{Category: "travelOther", Tons: rec.TravelOther},
	}
	var sum float64
	for _, p := range parts {
		sum += p.Tons
	}
	if sum > 0 {
		for i := range parts {
			parts[i].Percent = int(math.Round(parts[i].Tons / sum * 100))
		}
	}
	return parts
}

// DaysUntil is the number of whole days, rounded up, from now to t.
func DaysUntil(t, now time.Time) int {
	return int(math.Ceil(float64(t.Sub(now)) / float64(day)))
}

// DaysSince is the number of whole days, rounded down, from t to now.
func DaysSince(t, now time.Time) int {
	return int(math.Floor(float64(now.Sub(t)) / float64(day)))
}

// Achievement is a milestone on the profile page.
type Achievement struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Unlocked    bool   `json:"unlocked"`
}

// Profile is the signed-in user's account view.
type Profile struct {
	User           *models.User  `json:"user"`
	DaysSinceJoin  int           `json:"daysSinceJoined"`
	Achievements   []Achievement `json:"achievements"`
	ChallengeCount int           `json:"challengeCount"`
}

// BuildProfile assembles the profile view for u at now.
func BuildProfile(u *models.User, now time.Time) Profile {
	return Profile{
		User:           u,
		DaysSinceJoin:  DaysSince(u.JoinedDate, now),
		ChallengeCount: len(u.Challenges),
		Achievements: []Achievement{
			{ID: "first_steps", Title: "First Steps", Description: "Completed your first sustainable action", Unlocked: len(u.Actions) >= 1},
			{ID: "getting_started", Title: "Getting Started", Description: "Completed 3 sustainable actions", Unlocked: len(u.Actions) >= 3},
			{ID: "self_aware", Title: "Self-Aware", Description: "Calculated your carbon footprint", Unlocked: u.Footprint != nil},
			{ID: "challenger", Title: "Challenger", Description: "Joined your first community challenge", Unlocked: len(u.Challenges) >= 1},
			{ID: "eco_warrior", Title: "Eco Warrior", Description: "Reduce your footprint by 20%", Unlocked: u.Footprint != nil && *u.Footprint <= ProgressBaseline*ecoWarriorFactor},
		},
	}
}
