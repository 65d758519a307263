// internal/app/store/staticstore/staticstore.go
package staticstore

import (
	"context"

	"github.com/dalemusser/signup/internal/app/system/dbinit"
	"github.com/dalemusser/signup/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Store reads countries and roles through the sign-up data context, so the
// first read triggers the context's database initializer.
type Store struct {
	dc *dbinit.Context
}

// New creates a store over dc.
func New(dc *dbinit.Context) *Store {
	return &Store{dc: dc}
}

// Countries returns every country ordered by name.
func (s *Store) Countries(ctx context.Context) ([]models.Country, error) {
	c, err := s.dc.Collection(ctx, "countries")
	if err != nil {
		return nil, err
	}
	cur, err := c.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Country
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Roles returns every role ordered by name.
func (s *Store) Roles(ctx context.Context) ([]models.Role, error) {
	c, err := s.dc.Collection(ctx, "roles")
	if err != nil {
		return nil, err
	}
	cur, err := c.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Role
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
