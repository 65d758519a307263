// Package staticinit is the database initializer for the sign-up context.
//
// On first use of the context it ensures the collections, their JSON-Schema
// validators and indexes, then seeds the countries and roles reference lists
// when those collections are empty. Existing reference rows are never
// changed, so operators can edit the lists in the database.
package staticinit

import (
	"context"
	"fmt"

	"github.com/dalemusser/signup/internal/app/system/indexes"
	"github.com/dalemusser/signup/internal/app/system/validators"
	"github.com/dalemusser/signup/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Initializer implements dbinit.Initializer.
type Initializer struct {
	Log *zap.Logger

	// Seed controls whether empty reference collections are populated.
	Seed bool

	Countries []models.Country
	Roles     []models.Role
}

// New returns an initializer seeding the default reference data.
func New(logger *zap.Logger, seed bool) *Initializer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Initializer{
		Log:       logger,
		Seed:      seed,
		Countries: DefaultCountries(),
		Roles:     DefaultRoles(),
	}
}

// InitializeDatabase prepares db for the sign-up context.
func (i *Initializer) InitializeDatabase(ctx context.Context, db *mongo.Database) error {
	if err := validators.EnsureAll(ctx, db); err != nil {
		return fmt.Errorf("ensure collections: %w", err)
	}
	if err := indexes.EnsureAll(ctx, db); err != nil {
		return fmt.Errorf("ensure indexes: %w", err)
	}
	if !i.Seed {
		i.Log.Info("static data seeding disabled")
		return nil
	}

	n, err := seedIfEmpty(ctx, db.Collection("countries"), toDocs(i.Countries))
	if err != nil {
		return fmt.Errorf("seed countries: %w", err)
	}
	i.Log.Info("countries seeded", zap.Int("inserted", n))

	n, err = seedIfEmpty(ctx, db.Collection("roles"), toDocs(i.Roles))
	if err != nil {
		return fmt.Errorf("seed roles: %w", err)
	}
	i.Log.Info("roles seeded", zap.Int("inserted", n))
	return nil
}

func toDocs[T any](rows []T) []interface{} {
	docs := make([]interface{}, len(rows))
	for i, r := range rows {
		docs[i] = r
	}
	return docs
}

// seedIfEmpty inserts docs only when coll has no documents. It returns the
// number inserted.
func seedIfEmpty(ctx context.Context, coll *mongo.Collection, docs []interface{}) (int, error) {
	if len(docs) == 0 {
		return 0, nil
	}
	n, err := coll.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, err
	}
	if n > 0 {
		return 0, nil
	}
	res, err := coll.InsertMany(ctx, docs)
	if err != nil {
		return 0, err
	}
	return len(res.InsertedIDs), nil
}
