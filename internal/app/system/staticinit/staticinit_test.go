package staticinit_test

import (
	"testing"

	"github.com/dalemusser/signup/internal/app/system/staticinit"
	"github.com/dalemusser/signup/internal/domain/models"
	"github.com/dalemusser/signup/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

func TestDefaults_IncludeNotTelling(t *testing.T) {
	countries := staticinit.DefaultCountries()
	require.NotEmpty(t, countries)
	assert.Equal(t, models.NotTellingCode, countries[0].Code)

	roles := staticinit.DefaultRoles()
	require.NotEmpty(t, roles)
	assert.Equal(t, models.NotTellingCode, roles[0].Code)

	seen := map[string]bool{}
	for _, c := range countries {
		assert.False(t, seen[c.Code], "duplicate country code %q", c.Code)
		seen[c.Code] = true
	}
}

func TestInitializeDatabase_SeedsEmptyCollections(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	si := staticinit.New(zap.NewNop(), true)
	require.NoError(t, si.InitializeDatabase(ctx, db))

	n, err := db.Collection("countries").CountDocuments(ctx, bson.M{})
	require.NoError(t, err)
	assert.Equal(t, int64(len(staticinit.DefaultCountries())), n)

	n, err = db.Collection("roles").CountDocuments(ctx, bson.M{})
	require.NoError(t, err)
	assert.Equal(t, int64(len(staticinit.DefaultRoles())), n)
}

func TestInitializeDatabase_LeavesExistingRows(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx := testutil.NewFixtures(t, db)
	fx.CreateCountry(ctx, "GB", "Great Britain")

	si := staticinit.New(zap.NewNop(), true)
	require.NoError(t, si.InitializeDatabase(ctx, db))

	n, err := db.Collection("countries").CountDocuments(ctx, bson.M{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n, "non-empty collection must not be seeded")

	var got models.Country
	require.NoError(t, db.Collection("countries").FindOne(ctx, bson.M{"code": "GB"}).Decode(&got))
	assert.Equal(t, "Great Britain", got.Name)

	n, err = db.Collection("roles").CountDocuments(ctx, bson.M{})
	require.NoError(t, err)
	assert.Equal(t, int64(len(staticinit.DefaultRoles())), n)
}

func TestInitializeDatabase_SeedingDisabled(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	si := staticinit.New(zap.NewNop(), false)
	require.NoError(t, si.InitializeDatabase(ctx, db))

	n, err := db.Collection("countries").CountDocuments(ctx, bson.M{})
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestInitializeDatabase_Idempotent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	si := staticinit.New(zap.NewNop(), true)
	require.NoError(t, si.InitializeDatabase(ctx, db))
	require.NoError(t, si.InitializeDatabase(ctx, db))

	n, err := db.Collection("roles").CountDocuments(ctx, bson.M{})
	require.NoError(t, err)
	assert.Equal(t, int64(len(staticinit.DefaultRoles())), n)
}
