package staticstore_test

import (
	"testing"

	"github.com/dalemusser/signup/internal/app/store/staticstore"
	"github.com/dalemusser/signup/internal/app/system/dbinit"
	"github.com/dalemusser/signup/internal/app/system/staticdata"
	"github.com/dalemusser/signup/internal/app/system/staticinit"
	"github.com/dalemusser/signup/internal/domain/models"
	"github.com/dalemusser/signup/internal/testutil"
	"go.uber.org/zap"
)

func TestStore_ReadsSortedByName(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx := testutil.NewFixtures(t, db)
	fx.CreateCountry(ctx, "US", "United States")
	fx.CreateCountry(ctx, "DE", "Germany")
	fx.CreateRole(ctx, "OPS", "Operations")
	fx.CreateRole(ctx, "DEV", "Developer")

	store := staticstore.New(dbinit.NewRegistry(zap.NewNop()).Open("signup", db))

	countries, err := store.Countries(ctx)
	if err != nil {
		t.Fatalf("Countries failed: %v", err)
	}
	if len(countries) != 2 || countries[0].Code != "DE" || countries[1].Code != "US" {
		t.Errorf("unexpected countries: %+v", countries)
	}

	roles, err := store.Roles(ctx)
	if err != nil {
		t.Fatalf("Roles failed: %v", err)
	}
	if len(roles) != 2 || roles[0].Code != "DEV" {
		t.Errorf("unexpected roles: %+v", roles)
	}
}

func TestStore_PreloadTriggersInitializer(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	reg := dbinit.NewRegistry(zap.NewNop())
	if err := reg.SetInitializer("signup", staticinit.New(zap.NewNop(), true)); err != nil {
		t.Fatalf("SetInitializer failed: %v", err)
	}
	cache := staticdata.New(zap.NewNop())

	if err := cache.Preload(ctx, staticstore.New(reg.Open("signup", db))); err != nil {
		t.Fatalf("Preload failed: %v", err)
	}
	if !reg.Initialized("signup") {
		t.Error("expected initializer to have run")
	}
	if got := cache.Countries(); len(got) == 0 || got[0].Code != models.NotTellingCode {
		t.Errorf("expected seeded countries with not-telling first, got %+v", got)
	}
}
