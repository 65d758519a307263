package signup_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/dalemusser/signup/internal/app/features/signup"
	prospectstore "github.com/dalemusser/signup/internal/app/store/prospects"
	"github.com/dalemusser/signup/internal/app/system/staticdata"
	"github.com/dalemusser/signup/internal/domain/models"
	"github.com/dalemusser/signup/internal/testutil"
	"github.com/gorilla/sessions"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type listLoader struct{}

func (listLoader) Countries(context.Context) ([]models.Country, error) {
	return []models.Country{
		{Code: models.NotTellingCode, Name: models.NotTellingName},
		{Code: "GB", Name: "United Kingdom"},
		{Code: "US", Name: "United States"},
	}, nil
}

func (listLoader) Roles(context.Context) ([]models.Role, error) {
	return []models.Role{
		{Code: models.NotTellingCode, Name: models.NotTellingName},
		{Code: "DEV", Name: "Developer"},
	}, nil
}

type fakeProspects struct {
	saved []models.Prospect
	dup   string
	err   error
}

func (f *fakeProspects) Create(_ context.Context, p models.Prospect) (models.Prospect, error) {
	if f.err != nil {
		return models.Prospect{}, f.err
	}
	if f.dup != "" && strings.EqualFold(f.dup, p.Email) {
		return models.Prospect{}, prospectstore.ErrDuplicateEmail
	}
	p.ID = primitive.NewObjectID()
	f.saved = append(f.saved, p)
	return p, nil
}

type plainURLs struct{}

func (plainURLs) URL(p string) string { return p + "?v=test" }

type rendered struct {
	name string
	data any
}

func newTestHandler(t *testing.T, loaded bool) (*signup.Handler, *fakeProspects, *[]rendered) {
	t.Helper()
	cache := staticdata.New(zap.NewNop())
	if loaded {
		require.NoError(t, cache.Preload(context.Background(), listLoader{}))
	}
	prospects := &fakeProspects{}
	store := sessions.NewCookieStore([]byte("0123456789abcdef0123456789abcdef"))

	h := signup.NewHandler(cache, prospects, store, "signup-test", plainURLs{}, zap.NewNop())
	var calls []rendered
	h.Render = func(w http.ResponseWriter, r *http.Request, name string, data any) {
		calls = append(calls, rendered{name: name, data: data})
		w.WriteHeader(http.StatusOK)
	}
	return h, prospects, &calls
}

func validForm() url.Values {
	return url.Values{
		"first_name":   {"Ada"},
		"last_name":    {"Lovelace"},
		"email":        {"ada@example.com"},
		"company_name": {"Analytical Engines"},
		"country":      {"GB"},
		"role":         {"DEV"},
	}
}

func errorsOf(t *testing.T, data any) map[string]string {
	t.Helper()
	vm, ok := data.(signup.FormView)
	require.True(t, ok, "unexpected view model %T", data)
	return vm.Errors
}

func TestServeForm_RendersWithLists(t *testing.T) {
	h, _, calls := newTestHandler(t, true)

	rec := httptest.NewRecorder()
	h.ServeForm(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Len(t, *calls, 1)
	assert.Equal(t, "signup", (*calls)[0].name)
	assert.Empty(t, errorsOf(t, (*calls)[0].data))
}

func TestHandleSubmit_SuccessRedirectsAndFlashes(t *testing.T) {
	h, prospects, calls := newTestHandler(t, true)

	rec := httptest.NewRecorder()
	h.HandleSubmit(rec, testutil.NewFormRequest("/", validForm()))

	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/thanks", rec.Header().Get("Location"))
	require.Len(t, prospects.saved, 1)
	assert.Equal(t, "Ada", prospects.saved[0].FirstName)
	assert.Equal(t, "GB", prospects.saved[0].CountryCode)
	assert.Equal(t, "DEV", prospects.saved[0].RoleCode)
	assert.Empty(t, *calls)

	next := testutil.CarryCookies(rec, httptest.NewRequest(http.MethodGet, "/thanks", nil))
	thanks := httptest.NewRecorder()
	h.ServeThanks(thanks, next)

	require.Len(t, *calls, 1)
	assert.Equal(t, "signup_thanks", (*calls)[0].name)
	vm, ok := (*calls)[0].data.(signup.ThanksView)
	require.True(t, ok)
	assert.Equal(t, "Ada", vm.FirstName)
}

func TestServeThanks_WithoutFlash(t *testing.T) {
	h, _, calls := newTestHandler(t, true)

	h.ServeThanks(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/thanks", nil))

	require.Len(t, *calls, 1)
	vm, ok := (*calls)[0].data.(signup.ThanksView)
	require.True(t, ok)
	assert.Empty(t, vm.FirstName)
}

func TestHandleSubmit_ValidationErrors(t *testing.T) {
	tests := []struct {
		name  string
		edit  func(url.Values)
		field string
	}{
		{"missing first name", func(v url.Values) { v.Set("first_name", "  ") }, "first_name"},
		{"markup only last name", func(v url.Values) { v.Set("last_name", "<b></b>") }, "last_name"},
		{"long first name", func(v url.Values) { v.Set("first_name", strings.Repeat("a", 101)) }, "first_name"},
		{"bad email", func(v url.Values) { v.Set("email", "not-an-email") }, "email"},
		{"unknown country", func(v url.Values) { v.Set("country", "ZZ") }, "country"},
		{"unknown role", func(v url.Values) { v.Set("role", "CEO") }, "role"},
		{"missing role", func(v url.Values) { v.Del("role") }, "role"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, prospects, calls := newTestHandler(t, true)
			form := validForm()
			tt.edit(form)

			rec := httptest.NewRecorder()
			h.HandleSubmit(rec, testutil.NewFormRequest("/", form))

			assert.Empty(t, prospects.saved)
			require.Len(t, *calls, 1)
			assert.Equal(t, "signup", (*calls)[0].name)
			assert.Contains(t, errorsOf(t, (*calls)[0].data), tt.field)
		})
	}
}

func TestHandleSubmit_NotTellingIsAccepted(t *testing.T) {
	h, prospects, _ := newTestHandler(t, true)
	form := validForm()
	form.Set("country", models.NotTellingCode)
	form.Set("role", models.NotTellingCode)

	rec := httptest.NewRecorder()
	h.HandleSubmit(rec, testutil.NewFormRequest("/", form))

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	require.Len(t, prospects.saved, 1)
}

func TestHandleSubmit_StripsMarkup(t *testing.T) {
	h, prospects, _ := newTestHandler(t, true)
	form := validForm()
	form.Set("first_name", "<script>alert(1)</script>Ada")
	form.Set("last_name", "&lt;b&gt;Lovelace&lt;/b&gt;")
	form.Set("company_name", "AT&T <i>Labs</i>")

	rec := httptest.NewRecorder()
	h.HandleSubmit(rec, testutil.NewFormRequest("/", form))

	require.Len(t, prospects.saved, 1)
	assert.Equal(t, "Ada", prospects.saved[0].FirstName)
	assert.Equal(t, "Lovelace", prospects.saved[0].LastName)
	assert.Equal(t, "AT&T Labs", prospects.saved[0].CompanyName)
}

func TestHandleSubmit_DuplicateEmail(t *testing.T) {
	h, prospects, calls := newTestHandler(t, true)
	prospects.dup = "ada@example.com"

	rec := httptest.NewRecorder()
	h.HandleSubmit(rec, testutil.NewFormRequest("/", validForm()))

	assert.NotEqual(t, http.StatusSeeOther, rec.Code)
	require.Len(t, *calls, 1)
	assert.Contains(t, errorsOf(t, (*calls)[0].data), "email")
}

func TestHandleSubmit_StoreFailure(t *testing.T) {
	h, prospects, calls := newTestHandler(t, true)
	prospects.err = assert.AnError

	rec := httptest.NewRecorder()
	h.HandleSubmit(rec, testutil.NewFormRequest("/", validForm()))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Empty(t, *calls)
}

func TestHandleSubmit_EmptyCacheRejectsCodes(t *testing.T) {
	h, prospects, calls := newTestHandler(t, false)

	rec := httptest.NewRecorder()
	h.HandleSubmit(rec, testutil.NewFormRequest("/", validForm()))

	assert.Empty(t, prospects.saved)
	require.Len(t, *calls, 1)
	errs := errorsOf(t, (*calls)[0].data)
	assert.Contains(t, errs, "country")
	assert.Contains(t, errs, "role")
}

func TestRoutes(t *testing.T) {
	h, _, calls := newTestHandler(t, true)
	router := signup.Routes(h)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/thanks", nil))
	require.Len(t, *calls, 1)
	assert.Equal(t, "signup_thanks", (*calls)[0].name)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, testutil.NewFormRequest("/", validForm()))
	assert.Equal(t, http.StatusSeeOther, rec.Code)
}
