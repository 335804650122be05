package models

import "time"

// HomeType is the dwelling kind answered in the questionnaire.
type HomeType string

const (
	HomeApartment HomeType = "apartment"
	HomeHouse     HomeType = "house"
	HomeOther     HomeType = "other"
)

// TransportMode is the primary way a user gets around.
type TransportMode string

const (
	TransportCar    TransportMode = "car"
	TransportPublic TransportMode = "public"
	TransportBike   TransportMode = "bike"
)

// Diet is the user's typical diet.
type Diet string

const (
	DietMeat  Diet = "meat"
	DietMixed Diet = "mixed"
	DietVeg   Diet = "veg"
)

// Frequency answers how often second-hand goods are bought.
type Frequency string

const (
	FrequencyRarely    Frequency = "rarely"
	FrequencySometimes Frequency = "sometimes"
	FrequencyOften     Frequency = "often"
)

// OffsetBehavior answers whether the user offsets travel emissions.
type OffsetBehavior string

const (
	OffsetYes       OffsetBehavior = "yes"
	OffsetSometimes OffsetBehavior = "sometimes"
	OffsetNo        OffsetBehavior = "no"
)

// Lifestyle scales the aggregate footprint.
type Lifestyle string

const (
	LifestyleMinimal Lifestyle = "minimal"
	LifestyleAverage Lifestyle = "average"
	LifestyleLuxury  Lifestyle = "luxury"
)

// Answers is a sanitized questionnaire answer set. Numeric fields are
// non-negative; HouseholdSize and MPG are at least 1.
type Answers struct {
	HomeType        HomeType       `json:"homeType"`
	HouseholdSize   int            `json:"householdSize"`
	ElectricityKWh  float64        `json:"electricityUsage"`
	TransportMode   TransportMode  `json:"transportMode"`
	WeeklyMiles     float64        `json:"milesDriven"`
	MPG             float64        `json:"mpg"`
	Diet            Diet           `json:"diet"`
	MonthlySpending float64        `json:"monthlySpending"`
	SecondHand      Frequency      `json:"secondHand"`
	ShortFlights    int            `json:"shortFlights"`
	LongFlights     int            `json:"longFlights"`
	OffsetEmissions OffsetBehavior `json:"offsetEmissions"`
	Lifestyle       Lifestyle      `json:"lifestyle"`
}

// FootprintRecord is one immutable calculation result in tons CO2e per year.
// Category values are reported before the lifestyle multiplier.
type FootprintRecord struct {
	Total           float64   `json:"total"`
	HomeEnergy      float64   `json:"homeEnergy"`
	Transportation  float64   `json:"transportation"`
	FoodConsumption float64   `json:"foodConsumption"`
	TravelOther     float64   `json:"travelOther"`
	Date            time.Time `json:"date"`
}

// Category groups actions and recommendations.
type Category string

const (
	CategoryHome        Category = "home"
	CategoryTransport   Category = "transport"
	CategoryFood        Category = "food"
	CategoryConsumption Category = "consumption"
	CategoryOther       Category = "other"
)

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	switch c {
	case CategoryHome, CategoryTransport, CategoryFood, CategoryConsumption, CategoryOther:
		return true
	}
	return false
}

// Action is a logged behavior change. Impact is tons CO2e saved per year.
type Action struct {
	ID       string    `json:"id"`
	Title    string    `json:"title"`
	Date     time.Time `json:"date"`
	Impact   float64   `json:"impact"`
	Category Category  `json:"category"`
	Icon     string    `json:"icon"`
}

// ActionDraft is the caller-supplied part of an Action.
type ActionDraft struct {
	Title    string   `json:"title"`
	Impact   float64  `json:"impact"`
	Category Category `json:"category"`
	Icon     string   `json:"icon"`
}

// ChallengeStatus is the lifecycle of a community challenge.
type ChallengeStatus string

const (
	ChallengeUpcoming  ChallengeStatus = "upcoming"
	ChallengeActive    ChallengeStatus = "active"
	ChallengeCompleted ChallengeStatus = "completed"
)

// Challenge is a time-boxed community activity.
type Challenge struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	StartDate   time.Time       `json:"startDate"`
	EndDate     time.Time       `json:"endDate"`
	Status      ChallengeStatus `json:"status"`
	Impact      float64         `json:"impact"`
}

// User is the session user or a community member.
type User struct {
	ID              string      `json:"id"`
	Name            string      `json:"name"`
	Email           string      `json:"email"`
	IsLoggedIn      bool        `json:"isLoggedIn"`
	Footprint       *float64    `json:"footprint"`
	Actions         []Action    `json:"actions"`
	Challenges      []Challenge `json:"challenges"`
	JoinedDate      time.Time   `json:"joinedDate"`
	Rank            int         `json:"rank"`
	TargetFootprint float64     `json:"targetFootprint"`
}

// Clone returns a deep copy of u.
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	c := *u
	if u.Footprint != nil {
		f := *u.Footprint
		c.Footprint = &f
	}
	c.Actions = append([]Action{}, u.Actions...)
	c.Challenges = append([]Challenge{}, u.Challenges...)
	return &c
}

// HasChallenge reports whether the user already joined challenge id.
func (u *User) HasChallenge(id string) bool {
	for _, c := range u.Challenges {
		if c.ID == id {
			return true
		}
	}
	return false
}

// Cost is the rough price band of a recommendation.
type Cost string

const (
	CostLow    Cost = "low"
	CostMedium Cost = "medium"
	CostHigh   Cost = "high"
)

// Recommendation is a suggested action from the catalog.
type Recommendation struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Impact      float64  `json:"impact"`
	Cost        Cost     `json:"cost"`
	Category    Category `json:"category"`
	Icon        string   `json:"icon"`
}

// Article is a learn-page entry; Type is "article" or "guide".
type Article struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
	ReadTime    string `json:"readTime"`
	Type        string `json:"type"`
}

// Video is a learn-page video entry.
type Video struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Duration    string `json:"duration"`
	Thumbnail   string `json:"thumbnail"`
}
