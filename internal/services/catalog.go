package services

import (
	"sort"
	"strings"

	"github.com/soaringjerry/EcoImpact/internal/models"
)

// Catalog holds read-only reference data. Accessors return copies.
type Catalog struct {
	recommendations []models.Recommendation
	community       []models.User
	challenges      []models.Challenge
	articles        []models.Article
	videos          []models.Video
}

func (c *Catalog) Recommendations() []models.Recommendation {
	return append([]models.Recommendation(nil), c.recommendations...)
}

func (c *Catalog) UpcomingChallenges() []models.Challenge {
	return append([]models.Challenge(nil), c.challenges...)
}

// Challenge looks up an upcoming challenge by id.
func (c *Catalog) Challenge(id string) (models.Challenge, bool) {
	for _, ch := range c.challenges {
		if ch.ID == id {
			return ch, true
		}
	}
	return models.Challenge{}, false
}

// CommunityUsers returns deep copies of the community members.
func (c *Catalog) CommunityUsers() []models.User {
	out := make([]models.User, 0, len(c.community))
	for i := range c.community {
		out = append(out, *c.community[i].Clone())
	}
	return out
}

// SearchCommunity matches members by a case-insensitive substring of their name.
func (c *Catalog) SearchCommunity(q string) []models.User {
	q = strings.ToLower(strings.TrimSpace(q))
	out := []models.User{}
	for _, u := range c.CommunityUsers() {
		if q == "" || strings.Contains(strings.ToLower(u.Name), q) {
			out = append(out, u)
		}
	}
	return out
}

// SearchArticles matches title, description or category. typ, when set,
// restricts results to "article" or "guide".
func (c *Catalog) SearchArticles(q, typ string) []models.Article {
	q = strings.ToLower(strings.TrimSpace(q))
	typ = strings.ToLower(strings.TrimSpace(typ))
	out := []models.Article{}
	for _, a := range c.articles {
		if typ != "" && typ != "all" && a.Type != typ {
			continue
		}
		if q == "" || containsAny(q, a.Title, a.Description, a.Category) {
			out = append(out, a)
		}
	}
	return out
}

// SearchVideos matches title or description.
func (c *Catalog) SearchVideos(q string) []models.Video {
	q = strings.ToLower(strings.TrimSpace(q))
	out := []models.Video{}
	for _, v := range c.videos {
		if q == "" || containsAny(q, v.Title, v.Description) {
			out = append(out, v)
		}
	}
	return out
}

// LeaderboardRow is one ranked member.
type LeaderboardRow struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Footprint *float64 `json:"footprint"`
	Rank      int      `json:"rank"`
	Progress  *int     `json:"progress"`
	IsCurrent bool     `json:"isCurrent"`
}

// Leaderboard ranks the community plus current (when non-nil) by rank
// ascending. Unranked members (rank 0) sort last. query filters by name.
func (c *Catalog) Leaderboard(current *models.User, query string) []LeaderboardRow {
	users := c.SearchCommunity(query)
	q := strings.ToLower(strings.TrimSpace(query))
	if current != nil && (q == "" || strings.Contains(strings.ToLower(current.Name), q)) {
		users = append(users, *current.Clone())
	}
	sort.SliceStable(users, func(i, j int) bool {
		ri, rj := users[i].Rank, users[j].Rank
		if ri == 0 || rj == 0 {
			return ri != 0 && rj == 0
		}
		return ri < rj
	})

	rows := make([]LeaderboardRow, 0, len(users))
	for _, u := range users {
		row := LeaderboardRow{
			ID:        u.ID,
			Name:      u.Name,
			Footprint: u.Footprint,
			Rank:      u.Rank,
			IsCurrent: current != nil && u.ID == current.ID,
		}
		if u.Footprint != nil {
			if p, ok := ProgressPercent(*u.Footprint, u.TargetFootprint); ok {
				row.Progress = &p
			}
		}
		rows = append(rows, row)
	}
	return rows
}

func containsAny(q string, fields ...string) bool {
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), q) {
			return true
		}
	}
	return false
}
