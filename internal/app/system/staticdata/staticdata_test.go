package staticdata_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/dalemusser/signup/internal/app/system/staticdata"
	"github.com/dalemusser/signup/internal/domain/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeLoader struct {
	countries    []models.Country
	roles        []models.Role
	countriesErr error
	rolesErr     error
	calls        int
}

func (f *fakeLoader) Countries(ctx context.Context) ([]models.Country, error) {
	f.calls++
	return f.countries, f.countriesErr
}

func (f *fakeLoader) Roles(ctx context.Context) ([]models.Role, error) {
	return f.roles, f.rolesErr
}

func sample() *fakeLoader {
	return &fakeLoader{
		countries: []models.Country{
			{Code: "GB", Name: "United Kingdom"},
			{Code: models.NotTellingCode, Name: models.NotTellingName},
			{Code: "DE", Name: "Germany"},
		},
		roles: []models.Role{
			{Code: "OPS", Name: "Operations"},
			{Code: "DEV", Name: "Developer"},
			{Code: models.NotTellingCode, Name: models.NotTellingName},
		},
	}
}

func TestPreload_SortsWithNotTellingFirst(t *testing.T) {
	c := staticdata.New(zap.NewNop())
	require.NoError(t, c.Preload(context.Background(), sample()))

	countries := c.Countries()
	require.Len(t, countries, 3)
	assert.Equal(t, models.NotTellingCode, countries[0].Code)
	assert.Equal(t, "DE", countries[1].Code)
	assert.Equal(t, "GB", countries[2].Code)

	roles := c.Roles()
	require.Len(t, roles, 3)
	assert.Equal(t, models.NotTellingCode, roles[0].Code)
	assert.Equal(t, "DEV", roles[1].Code)
	assert.True(t, c.Loaded())
}

func TestPreload_OnlyOnce(t *testing.T) {
	c := staticdata.New(zap.NewNop())
	l := sample()
	require.NoError(t, c.Preload(context.Background(), l))

	err := c.Preload(context.Background(), l)
	assert.ErrorIs(t, err, staticdata.ErrAlreadyLoaded)
	assert.Equal(t, 1, l.calls)
}

func TestPreload_FailureLeavesCacheEmptyAndIsNotRetried(t *testing.T) {
	c := staticdata.New(zap.NewNop())
	boom := errors.New("store unreachable")
	l := sample()
	l.rolesErr = boom

	err := c.Preload(context.Background(), l)
	require.ErrorIs(t, err, boom)
	assert.False(t, c.Loaded())
	assert.Empty(t, c.Countries())

	err = c.Preload(context.Background(), sample())
	assert.ErrorIs(t, err, staticdata.ErrAlreadyLoaded)
}

func TestPreload_RequiresNotTelling(t *testing.T) {
	tests := []struct {
		name string
		edit func(*fakeLoader)
	}{
		{"empty lists", func(l *fakeLoader) { l.countries, l.roles = nil, nil }},
		{"countries without not telling", func(l *fakeLoader) { l.countries = l.countries[:1] }},
		{"roles without not telling", func(l *fakeLoader) { l.roles = l.roles[:2] }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := staticdata.New(zap.NewNop())
			l := sample()
			tt.edit(l)

			err := c.Preload(context.Background(), l)
			require.ErrorIs(t, err, staticdata.ErrNotTellingMissing)
			assert.False(t, c.Loaded())
			assert.Empty(t, c.Countries())
			assert.Empty(t, c.Roles())
		})
	}
}

func TestLookups(t *testing.T) {
	c := staticdata.New(zap.NewNop())

	_, ok := c.Country("GB")
	assert.False(t, ok, "lookups before preload find nothing")

	require.NoError(t, c.Preload(context.Background(), sample()))

	gb, ok := c.Country("GB")
	require.True(t, ok)
	assert.Equal(t, "United Kingdom", gb.Name)

	_, ok = c.Role("CEO")
	assert.False(t, ok)

	dev, ok := c.Role("DEV")
	require.True(t, ok)
	assert.Equal(t, "Developer", dev.Name)
}

func TestCountries_ReturnsCopy(t *testing.T) {
	c := staticdata.New(zap.NewNop())
	require.NoError(t, c.Preload(context.Background(), sample()))

	list := c.Countries()
	list[0].Name = "mutated"

	assert.Equal(t, models.NotTellingName, c.Countries()[0].Name)
}

func TestConcurrentReadersAfterPreload(t *testing.T) {
	c := staticdata.New(zap.NewNop())
	require.NoError(t, c.Preload(context.Background(), sample()))

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = c.Countries()
			_, _ = c.Role("DEV")
		}()
	}
	wg.Wait()
}
