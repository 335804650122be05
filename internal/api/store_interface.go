package api

import (
	"context"

	"github.com/soaringjerry/EcoImpact/internal/models"
	"github.com/soaringjerry/EcoImpact/internal/services"
)

// Session is the session store surface the HTTP layer drives.
type Session interface {
	State() services.SessionState
	IsLoading() bool
	User() *models.User
	History() []models.FootprintRecord
	Snapshot() (*models.User, []models.FootprintRecord)
	Catalog() *services.Catalog

	Login(ctx context.Context, email, password string) (*models.User, error)
	Signup(ctx context.Context, name, email, password string) (*models.User, error)
	Logout() bool

	SaveFootprint(rec models.FootprintRecord) bool
	AddAction(draft models.ActionDraft) (*models.Action, bool)
	JoinChallenge(id string) bool
}

var _ Session = (*services.SessionService)(nil)
