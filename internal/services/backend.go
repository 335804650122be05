package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/soaringjerry/EcoImpact/internal/models"
)

// DemoUserID is the id of the seeded account every login resolves to.
const DemoUserID = "user123"

// DefaultAuthLatency approximates a network round trip.
const DefaultAuthLatency = time.Second

// Backend resolves credentials into a user. Implementations must honor ctx.
type Backend interface {
	Login(ctx context.Context, email, password string) (*models.User, []models.FootprintRecord, error)
	Signup(ctx context.Context, name, email, password string) (*models.User, []models.FootprintRecord, error)
}

// DemoBackend is the mock auth provider. Credentials are never checked:
// login always yields the seeded demo account and signup a fresh user.
type DemoBackend struct {
	Latency   time.Duration
	now       func() time.Time
	newUserID func() string
}

// NewDemoBackend returns a DemoBackend that waits latency before answering.
func NewDemoBackend(latency time.Duration) *DemoBackend {
	return &DemoBackend{
		Latency: latency,
		now:     func() time.Time { return time.Now().UTC() },
		newUserID: func() string {
			return "user" + strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
		},
	}
}

func (b *DemoBackend) Login(ctx context.Context, email, _ string) (*models.User, []models.FootprintRecord, error) {
	if err := b.wait(ctx); err != nil {
		return nil, nil, err
	}
	now := b.now()
	u := DemoUser(email, now)
	history := []models.FootprintRecord{{
		Total:           8.2,
		HomeEnergy:      2.1,
		Transportation:  3.4,
		FoodConsumption: 1.8,
		TravelOther:     0.9,
		Date:            now,
	}}
	return u, history, nil
}

func (b *DemoBackend) Signup(ctx context.Context, name, email, _ string) (*models.User, []models.FootprintRecord, error) {
	if err := b.wait(ctx); err != nil {
		return nil, nil, err
	}
	u := &models.User{
		ID:              b.newUserID(),
		Name:            name,
		Email:           email,
		IsLoggedIn:      true,
		Actions:         []models.Action{},
		Challenges:      []models.Challenge{},
		JoinedDate:      b.now(),
		TargetFootprint: DefaultTargetFootprint,
	}
	return u, []models.FootprintRecord{}, nil
}

func (b *DemoBackend) wait(ctx context.Context) error {
	if b.Latency <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(b.Latency)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// DemoUser is the seeded account returned by every login.
func DemoUser(email string, now time.Time) *models.User {
	footprint := 8.2
	day := 24 * time.Hour
	return &models.User{
		ID:         DemoUserID,
		Name:       "Jane Doe",
		Email:      email,
		IsLoggedIn: true,
		Footprint:  &footprint,
		Actions: []models.Action{
			{ID: "action1", Title: "Switched to LED lighting", Date: now.Add(-2 * day), Impact: 0.1, Category: models.CategoryHome, Icon: "lightbulb"},
			{ID: "action2", Title: "Carpooled to work", Date: now.Add(-4 * day), Impact: 0.05, Category: models.CategoryTransport, Icon: "car"},
			{ID: "action3", Title: "Bought second-hand furniture", Date: now.Add(-7 * day), Impact: 0.2, Category: models.CategoryConsumption, Icon: "shopping-bag"},
		},
		Challenges:      []models.Challenge{},
		JoinedDate:      now,
		Rank:            42,
		TargetFootprint: DefaultTargetFootprint,
	}
}
