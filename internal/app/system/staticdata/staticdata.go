// Package staticdata is the in-memory cache of reference data (countries and
// roles) that the sign-up form reads on every request.
//
// The cache is filled once by Preload during startup and is read-only
// afterwards. Readers never block: the loaded lists are published as one
// immutable snapshot.
package staticdata

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/dalemusser/signup/internal/domain/models"
	"go.uber.org/zap"
)

// ErrAlreadyLoaded is returned when Preload is called a second time.
var ErrAlreadyLoaded = errors.New("staticdata: cache already loaded")

// ErrNotTellingMissing is returned by Preload when a list has no entry for
// models.NotTellingCode. The form defaults to that code, so such a list
// would reject every submission.
var ErrNotTellingMissing = errors.New("staticdata: not-telling entry missing")

// Loader reads reference data from the backing store.
type Loader interface {
	Countries(ctx context.Context) ([]models.Country, error)
	Roles(ctx context.Context) ([]models.Role, error)
}

type snapshot struct {
	countries   []models.Country
	roles       []models.Role
	countryByID map[string]models.Country
	roleByID    map[string]models.Role
}

// Cache holds the preloaded reference lists.
type Cache struct {
	log *zap.Logger

	loadMu sync.Mutex
	loaded bool
	snap   atomic.Pointer[snapshot]
}

// New returns an empty cache.
func New(logger *zap.Logger) *Cache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Cache{log: logger}
}

// Preload reads both lists through l and publishes them. Both lists must
// contain the not-telling entry. It runs at most once; later calls return
// ErrAlreadyLoaded, including after a failure.
func (c *Cache) Preload(ctx context.Context, l Loader) error {
	c.loadMu.Lock()
	defer c.loadMu.Unlock()
	if c.loaded {
		return ErrAlreadyLoaded
	}
	c.loaded = true

	countries, err := l.Countries(ctx)
	if err != nil {
		return fmt.Errorf("preload countries: %w", err)
	}
	roles, err := l.Roles(ctx)
	if err != nil {
		return fmt.Errorf("preload roles: %w", err)
	}

	if !hasCountry(countries, models.NotTellingCode) {
		return fmt.Errorf("preload countries (%d loaded): %w", len(countries), ErrNotTellingMissing)
	}
	if !hasRole(roles, models.NotTellingCode) {
		return fmt.Errorf("preload roles (%d loaded): %w", len(roles), ErrNotTellingMissing)
	}

	s := &snapshot{
		countries:   sortCountries(countries),
		roles:       sortRoles(roles),
		countryByID: make(map[string]models.Country, len(countries)),
		roleByID:    make(map[string]models.Role, len(roles)),
	}
	for _, ct := range s.countries {
		s.countryByID[ct.Code] = ct
	}
	for _, r := range s.roles {
		s.roleByID[r.Code] = r
	}
	c.snap.Store(s)

	c.log.Info("static data cache loaded",
		zap.Int("countries", len(s.countries)),
		zap.Int("roles", len(s.roles)))
	return nil
}

// Loaded reports whether a snapshot has been published.
func (c *Cache) Loaded() bool {
	return c.snap.Load() != nil
}

// Countries returns a copy of the country list, "not telling" first then by
// name. It is empty before Preload.
func (c *Cache) Countries() []models.Country {
	s := c.snap.Load()
	if s == nil {
		return nil
	}
	return append([]models.Country(nil), s.countries...)
}

// Roles returns a copy of the role list in display order.
func (c *Cache) Roles() []models.Role {
	s := c.snap.Load()
	if s == nil {
		return nil
	}
	return append([]models.Role(nil), s.roles...)
}

// Country looks up a country by code.
func (c *Cache) Country(code string) (models.Country, bool) {
	s := c.snap.Load()
	if s == nil {
		return models.Country{}, false
	}
	ct, ok := s.countryByID[code]
	return ct, ok
}

// Role looks up a role by code.
func (c *Cache) Role(code string) (models.Role, bool) {
	s := c.snap.Load()
	if s == nil {
		return models.Role{}, false
	}
	r, ok := s.roleByID[code]
	return r, ok
}

func hasCountry(list []models.Country, code string) bool {
	for _, ct := range list {
		if ct.Code == code {
			return true
		}
	}
	return false
}

func hasRole(list []models.Role, code string) bool {
	for _, r := range list {
		if r.Code == code {
			return true
		}
	}
	return false
}

func sortCountries(in []models.Country) []models.Country {
	out := append([]models.Country(nil), in...)
	sort.SliceStable(out, func(i, j int) bool {
		return displayLess(out[i].Code, out[i].Name, out[j].Code, out[j].Name)
	})
	return out
}

func sortRoles(in []models.Role) []models.Role {
	out := append([]models.Role(nil), in...)
	sort.SliceStable(out, func(i, j int) bool {
		return displayLess(out[i].Code, out[i].Name, out[j].Code, out[j].Name)
	})
	return out
}

func displayLess(codeA, nameA, codeB, nameB string) bool {
	if (codeA == models.NotTellingCode) != (codeB == models.NotTellingCode) {
		return codeA == models.NotTellingCode
	}
	return nameA < nameB
}
