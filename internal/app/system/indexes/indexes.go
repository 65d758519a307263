// internal/app/system/indexes/indexes.go
package indexes

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

/*
EnsureAll is run by the static data initializer the first time the sign-up
database is used. Each ensure* function is idempotent. Problems are collected
so a single startup failure lists every collection that could not be indexed.
*/
func EnsureAll(ctx context.Context, db *mongo.Database) error {
	var problems []string

	sets := []struct {
		name string
		fn   func(context.Context, *mongo.Database) error
	}{
		{"countries", ensureCountries},
		{"roles", ensureRoles},
		{"prospects", ensureProspects},
	}
	for _, s := range sets {
		if err := s.fn(ctx, db); err != nil {
			problems = append(problems, s.name+": "+err.Error())
		}
	}

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

/* -------------------------------------------------------------------------- */
/* Reconcile desired indexes for one collection                               */
/* -------------------------------------------------------------------------- */

type existingIndex struct {
	Name   string `bson:"name"`
	Key    bson.D `bson:"key"`
	Unique *bool  `bson:"unique,omitempty"`
}

func keySig(keys bson.D) string {
	parts := make([]string, 0, len(keys))
	for _, kv := range keys {
		parts = append(parts, fmt.Sprintf("%s:%v", kv.Key, kv.Value))
	}
	return strings.Join(parts, ", ")
}

func boolVal(b *bool) bool { return b != nil && *b }

func isDuplicateKeyErr(err error) bool {
	if err == nil {
		return false
	}
	var we mongo.WriteException
	if errors.As(err, &we) {
		for _, e := range we.WriteErrors {
			if e.Code == 11000 {
				return true
			}
		}
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && ce.Code == 11000 {
		return true
	}
	s := err.Error()
	return strings.Contains(s, "E11000") || strings.Contains(strings.ToLower(s), "duplicate key")
}

// Mongo/DocDB return IndexOptionsConflict when the same keys already exist
// under another name or with other options.
func isOptionsConflictErr(err error) bool {
	return err != nil && strings.Contains(err.Error(), "IndexOptionsConflict")
}

// listBySig loads the collection's indexes keyed by key signature.
func listBySig(ctx context.Context, coll *mongo.Collection) map[string]existingIndex {
	out := map[string]existingIndex{}
	cur, err := coll.Indexes().List(ctx)
	if err != nil {
		zap.L().Warn("list indexes failed", zap.String("collection", coll.Name()), zap.Error(err))
		return out
	}
	defer cur.Close(ctx)
	for cur.Next(ctx) {
		var idx existingIndex
		if err := cur.Decode(&idx); err != nil {
			zap.L().Warn("failed to decode existing index",
				zap.String("collection", coll.Name()),
				zap.Error(err))
			continue
		}
		out[keySig(idx.Key)] = idx
	}
	return out
}

// recreate drops the index called oldName and creates m in its place.
func recreate(ctx context.Context, coll *mongo.Collection, oldName string, m mongo.IndexModel) error {
	if _, err := coll.Indexes().DropOne(ctx, oldName); err != nil {
		return fmt.Errorf("drop %s: %w", oldName, err)
	}
	if _, err := coll.Indexes().CreateOne(ctx, m); err != nil {
		return err
	}
	return nil
}

func describeCreateErr(coll *mongo.Collection, name string, unique bool, err error) string {
	if isDuplicateKeyErr(err) && unique {
		return fmt.Sprintf("%s(%s): cannot create unique index (duplicates present)", coll.Name(), name)
	}
	return fmt.Sprintf("%s(%s): %v", coll.Name(), name, err)
}

func ensureIndexSet(ctx context.Context, coll *mongo.Collection, models []mongo.IndexModel) error {
	var errs []string

	for _, m := range models {
		var name string
		var uniquePtr *bool
		if m.Options != nil {
			if m.Options.Name != nil {
				name = *m.Options.Name
			}
			uniquePtr = m.Options.Unique
		}
		unique := boolVal(uniquePtr)
		sig := keySig(m.Keys.(bson.D))
		start := time.Now()
		log := zap.L().With(
			zap.String("collection", coll.Name()),
			zap.String("name", name),
			zap.String("keys", sig),
			zap.Bool("unique", unique))

		existing := listBySig(ctx, coll)

		if ex, ok := existing[sig]; ok {
			switch {
			case boolVal(ex.Unique) != unique:
				// Options changed (e.g. now unique): drop and recreate.
				if err := recreate(ctx, coll, ex.Name, m); err != nil {
					log.Warn("index recreate failed", zap.Error(err))
					errs = append(errs, describeCreateErr(coll, name, unique, err))
					continue
				}
				log.Info("index dropped and recreated", zap.Duration("took", time.Since(start)))
			case name != "" && ex.Name != name:
				if err := recreate(ctx, coll, ex.Name, m); err != nil {
					log.Warn("index rename failed", zap.String("from", ex.Name), zap.Error(err))
					errs = append(errs, fmt.Sprintf("%s(%s): rename failed: %v", coll.Name(), name, err))
					continue
				}
				log.Info("index renamed", zap.String("from", ex.Name), zap.Duration("took", time.Since(start)))
			default:
				log.Info("reusing existing index", zap.Duration("took", time.Since(start)))
			}
			continue
		}

		created, err := coll.Indexes().CreateOne(ctx, m)
		if err == nil {
			log.Info("index ensured", zap.String("created_name", created), zap.Duration("took", time.Since(start)))
			continue
		}

		if isOptionsConflictErr(err) {
			// Raced with another creator or a same-keys index we could not list.
			if match, ok := listBySig(ctx, coll)[sig]; ok {
				if boolVal(match.Unique) == unique {
					log.Info("reusing existing index (post-conflict)", zap.String("existing", match.Name))
					continue
				}
				if e2 := recreate(ctx, coll, match.Name, m); e2 != nil {
					errs = append(errs, describeCreateErr(coll, name, unique, e2))
					continue
				}
				log.Info("index dropped and recreated (post-conflict)", zap.Duration("took", time.Since(start)))
				continue
			}
		}

		log.Warn("index ensure failed", zap.Duration("took", time.Since(start)), zap.Error(err))
		errs = append(errs, describeCreateErr(coll, name, unique, err))
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

/* -------------------------------------------------------------------------- */
/* Collection-specific index sets                                             */
/* -------------------------------------------------------------------------- */

func ensureCountries(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("countries"), []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "code", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_countries_code"),
		},
		{
			Keys:    bson.D{{Key: "name", Value: 1}},
			Options: options.Index().SetName("idx_countries_name"),
		},
	})
}

func ensureRoles(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("roles"), []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "code", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_roles_code"),
		},
	})
}

func ensureProspects(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("prospects"), []mongo.IndexModel{
		// One sign-up per address; email_ci is the folded form.
		{
			Keys:    bson.D{{Key: "email_ci", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_prospects_emailci"),
		},
		// Reporting by country/role over time.
		{
			Keys: bson.D{
				{Key: "country_code", Value: 1},
				{Key: "signed_up_at", Value: -1},
			},
			Options: options.Index().SetName("idx_prospects_country_signedup"),
		},
		{
			Keys: bson.D{
				{Key: "role_code", Value: 1},
				{Key: "signed_up_at", Value: -1},
			},
			Options: options.Index().SetName("idx_prospects_role_signedup"),
		},
	})
}
