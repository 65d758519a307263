// internal/app/store/prospects/prospectstore.go
package prospectstore

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/dalemusser/signup/internal/app/system/dbinit"
	"github.com/dalemusser/signup/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ErrDuplicateEmail is returned when the email address has already signed up.
var ErrDuplicateEmail = errors.New("email already signed up")

// Store provides access to the prospects collection.
type Store struct {
	dc *dbinit.Context
}

// New creates a prospects store over the sign-up data context.
func New(dc *dbinit.Context) *Store {
	return &Store{dc: dc}
}

// Create inserts p, filling ID, EmailCI and SignedUpAt.
func (s *Store) Create(ctx context.Context, p models.Prospect) (models.Prospect, error) {
	c, err := s.dc.Collection(ctx, "prospects")
	if err != nil {
		return models.Prospect{}, err
	}

	p.ID = primitive.NewObjectID()
	p.Email = strings.TrimSpace(p.Email)
	p.EmailCI = text.Fold(p.Email)
	if p.SignedUpAt.IsZero() {
		p.SignedUpAt = time.Now().UTC()
	}

	if _, err := c.InsertOne(ctx, p); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Prospect{}, ErrDuplicateEmail
		}
		return models.Prospect{}, err
	}
	return p, nil
}
