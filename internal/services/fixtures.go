package services

import (
	"time"

	"github.com/soaringjerry/EcoImpact/internal/models"
)

const videoThumbnail = "/placeholder.svg?height=180&width=320"

// NewDemoCatalog returns the built-in reference data. Challenge dates are
// relative to now.
func NewDemoCatalog(now time.Time) *Catalog {
	day := 24 * time.Hour
	date := func(s string) time.Time {
		t, _ := time.Parse(time.DateOnly, s)
		return t
	}
	return &Catalog{
		recommendations: []models.Recommendation{
			{ID: "rec1", Title: "Install a smart thermostat", Description: "Could reduce your home energy use by up to 15%.", Impact: 0.3, Cost: models.CostMedium, Category: models.CategoryHome, Icon: "home"},
			{ID: "rec2", Title: "Start composting food waste", Description: "Reduces methane emissions from landfills.", Impact: 0.2, Cost: models.CostLow, Category: models.CategoryFood, Icon: "trash"},
			{ID: "rec3", Title: "Switch to LED lighting", Description: "Replacing all bulbs with LEDs can reduce your home energy footprint by 5%.", Impact: 0.1, Cost: models.CostLow, Category: models.CategoryHome, Icon: "lightbulb"},
			{ID: "rec4", Title: "Reduce car usage by 20%", Description: "Try carpooling, public transit, or biking for some trips.", Impact: 0.7, Cost: models.CostLow, Category: models.CategoryTransport, Icon: "car"},
			{ID: "rec5", Title: "Buy less, choose well", Description: "Reducing new purchases by 30% could save 0.5 tons of CO₂e per year.", Impact: 0.5, Cost: models.CostLow, Category: models.CategoryConsumption, Icon: "shopping-bag"},
		},
		community: []models.User{
			communityUser("user1", "Emma Johnson", "emma@example.com", 6.8, date("2023-10-15"), 12),
			communityUser("user2", "Michael Chen", "michael@example.com", 5.2, date("2023-11-03"), 5),
			communityUser("user3", "Sophia Rodriguez", "sophia@example.com", 7.9, date("2023-09-22"), 28),
		},
		challenges: []models.Challenge{
			{ID: "challenge1", Title: "Meatless Monday Challenge", Description: "Skip meat every Monday for a month.", StartDate: now.Add(2 * day), EndDate: now.Add(30 * day), Status: models.ChallengeUpcoming, Impact: 0.2},
			{ID: "challenge2", Title: "Zero Waste Week", Description: "Minimize your waste for one week.", StartDate: now.Add(5 * day), EndDate: now.Add(12 * day), Status: models.ChallengeUpcoming, Impact: 0.15},
			{ID: "challenge3", Title: "Car-Free Commute", Description: "Use alternative transportation for 2 weeks.", StartDate: now.Add(10 * day), EndDate: now.Add(24 * day), Status: models.ChallengeUpcoming, Impact: 0.3},
		},
		articles: []models.Article{
			{ID: "article1", Title: "Understanding Your Carbon Footprint", Description: "Learn what makes up your carbon footprint and why it matters.", Category: "basics", ReadTime: "5 min read", Type: "article"},
			{ID: "article2", Title: "The Impact of Diet on Climate Change", Description: "How your food choices affect greenhouse gas emissions.", Category: "food", ReadTime: "8 min read", Type: "article"},
			{ID: "article3", Title: "Home Energy Efficiency Guide", Description: "Simple ways to reduce energy consumption at home.", Category: "home", ReadTime: "10 min read", Type: "guide"},
			{ID: "article4", Title: "Sustainable Transportation Options", Description: "Exploring greener ways to get around.", Category: "transport", ReadTime: "7 min read", Type: "article"},
			{ID: "article5", Title: "The Problem with Fast Fashion", Description: "Environmental impacts of clothing production and consumption.", Category: "consumption", ReadTime: "6 min read", Type: "article"},
			{ID: "article6", Title: "Introduction to Carbon Offsets", Description: "What they are and how they work.", Category: "basics", ReadTime: "4 min read", Type: "guide"},
		},
		videos: []models.Video{
			{ID: "video1", Title: "Climate Change Explained", Description: "A simple explanation of the science behind climate change.", Duration: "12:34", Thumbnail: videoThumbnail},
			{ID: "video2", Title: "How to Calculate Your Carbon Footprint", Description: "Step-by-step guide to understanding your environmental impact.", Duration: "8:21", Thumbnail: videoThumbnail},
			{ID: "video3", Title: "Sustainable Living Tips", Description: "Practical ways to reduce your environmental impact.", Duration: "15:47", Thumbnail: videoThumbnail},
		},
	}
}

func communityUser(id, name, email string, footprint float64, joined time.Time, rank int) models.User {
	return models.User{
		ID:              id,
		Name:            name,
		Email:           email,
		Footprint:       &footprint,
		Actions:         []models.Action{},
		Challenges:      []models.Challenge{},
		JoinedDate:      joined,
		Rank:            rank,
		TargetFootprint: DefaultTargetFootprint,
	}
}
