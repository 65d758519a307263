package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/dalemusser/signup/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateCountry inserts a country row.
func (f *Fixtures) CreateCountry(ctx context.Context, code, name string) models.Country {
	f.t.Helper()
	c := models.Country{Code: code, Name: name}
	if _, err := f.db.Collection("countries").InsertOne(ctx, c); err != nil {
		f.t.Fatalf("failed to create test country: %v", err)
	}
	return c
}

// CreateRole inserts a role row.
func (f *Fixtures) CreateRole(ctx context.Context, code, name string) models.Role {
	f.t.Helper()
	r := models.Role{Code: code, Name: name}
	if _, err := f.db.Collection("roles").InsertOne(ctx, r); err != nil {
		f.t.Fatalf("failed to create test role: %v", err)
	}
	return r
}

// CreateProspect inserts a sign-up for email.
func (f *Fixtures) CreateProspect(ctx context.Context, first, last, email string) models.Prospect {
	f.t.Helper()
	p := models.Prospect{
		ID:          primitive.NewObjectID(),
		FirstName:   first,
		LastName:    last,
		Email:       email,
		EmailCI:     text.Fold(email),
		CountryCode: models.NotTellingCode,
		RoleCode:    models.NotTellingCode,
		SignedUpAt:  time.Now().UTC(),
	}
	if _, err := f.db.Collection("prospects").InsertOne(ctx, p); err != nil {
		f.t.Fatalf("failed to create test prospect: %v", err)
	}
	return p
}
