// Package signup serves the newsletter sign-up form and thank-you page.
package signup

import (
	"context"
	"errors"
	"net/http"

	prospectstore "github.com/dalemusser/signup/internal/app/store/prospects"
	"github.com/dalemusser/signup/internal/app/resources"
	"github.com/dalemusser/signup/internal/app/system/timeouts"
	"github.com/dalemusser/signup/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-playground/validator/v10"
	"github.com/gorilla/sessions"
	"go.uber.org/zap"
)

// flashKey is the session flash bucket for the signed-up first name.
const flashKey = "signed_up"

// StaticData is the read side of the static-data cache.
type StaticData interface {
	Countries() []models.Country
	Roles() []models.Role
	Country(code string) (models.Country, bool)
	Role(code string) (models.Role, bool)
}

// Prospects saves new sign-ups.
type Prospects interface {
	Create(ctx context.Context, p models.Prospect) (models.Prospect, error)
}

// AssetURLs resolves bundle paths to cache-busted URLs.
type AssetURLs interface {
	URL(path string) string
}

// RenderFunc renders a named template.
type RenderFunc func(w http.ResponseWriter, r *http.Request, name string, data any)

// Handler holds dependencies for the sign-up pages.
type Handler struct {
	StaticData  StaticData
	Prospects   Prospects
	Sessions    sessions.Store
	SessionName string
	Assets      AssetURLs
	Log         *zap.Logger

	// Render defaults to the waffle template engine.
	Render RenderFunc

	validate *validator.Validate
}

func NewHandler(cache StaticData, prospects Prospects, store sessions.Store, sessionName string, assets AssetURLs, logger *zap.Logger) *Handler {
	h := &Handler{
		StaticData:  cache,
		Prospects:   prospects,
		Sessions:    store,
		SessionName: sessionName,
		Assets:      assets,
		Log:         logger,
		Render: func(w http.ResponseWriter, r *http.Request, name string, data any) {
			templates.Render(w, r, name, data)
		},
	}
	h.validate = newValidator(cacheLookup{cache})
	return h
}

type cacheLookup struct{ c StaticData }

func (l cacheLookup) HasCountry(code string) bool {
	_, ok := l.c.Country(code)
	return ok
}

func (l cacheLookup) HasRole(code string) bool {
	_, ok := l.c.Role(code)
	return ok
}

// PageView carries what the shared layout needs.
type PageView struct {
	Title  string
	CSSURL string
	JSURL  string
}

// FormView is the sign-up form page.
type FormView struct {
	PageView
	Form      Form
	Errors    map[string]string
	FormError string
	Countries []models.Country
	Roles     []models.Role
}

// ThanksView is the thank-you page.
type ThanksView struct {
	PageView
	FirstName string
}

func (h *Handler) page(title string) PageView {
	return PageView{
		Title:  title,
		CSSURL: h.Assets.URL(resources.SiteCSS),
		JSURL:  h.Assets.URL(resources.SiteJS),
	}
}

func (h *Handler) formPage(f Form, errs map[string]string) FormView {
	vm := FormView{
		PageView:  h.page("Sign up"),
		Form:      f,
		Errors:    errs,
		Countries: h.StaticData.Countries(),
		Roles:     h.StaticData.Roles(),
	}
	if len(vm.Countries) == 0 || len(vm.Roles) == 0 {
		vm.FormError = "Sign-up is temporarily unavailable. Please try again later."
	}
	return vm
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET / – form                                                                |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeForm(w http.ResponseWriter, r *http.Request) {
	f := Form{Country: models.NotTellingCode, Role: models.NotTellingCode}
	h.Render(w, r, "signup", h.formPage(f, nil))
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST / – submit                                                             |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	f := readForm(r)
	if errs := fieldErrors(h.validate, f); errs != nil {
		h.Render(w, r, "signup", h.formPage(f, errs))
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "save sign-up")
	defer cancel()

	p, err := h.Prospects.Create(ctx, models.Prospect{
		FirstName:   f.FirstName,
		LastName:    f.LastName,
		Email:       f.Email,
		CompanyName: f.CompanyName,
		CountryCode: f.Country,
		RoleCode:    f.Role,
	})
	if errors.Is(err, prospectstore.ErrDuplicateEmail) {
		h.Render(w, r, "signup", h.formPage(f, map[string]string{
			"email": "This email address has already signed up.",
		}))
		return
	}
	if err != nil {
		h.Log.Error("save sign-up failed", zap.Error(err))
		http.Error(w, "could not save your sign-up, please try again", http.StatusInternalServerError)
		return
	}

	h.Log.Info("prospect signed up",
		zap.String("id", p.ID.Hex()),
		zap.String("country", p.CountryCode),
		zap.String("role", p.RoleCode))

	sess, err := h.Sessions.Get(r, h.SessionName)
	if err != nil {
		h.Log.Debug("discarding unreadable session", zap.Error(err))
	}
	sess.AddFlash(p.FirstName, flashKey)
	if err := sess.Save(r, w); err != nil {
		h.Log.Warn("save session failed", zap.Error(err))
	}

	http.Redirect(w, r, "/thanks", http.StatusSeeOther)
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /thanks                                                                 |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeThanks(w http.ResponseWriter, r *http.Request) {
	vm := ThanksView{PageView: h.page("Thank you")}

	sess, err := h.Sessions.Get(r, h.SessionName)
	if err != nil {
		h.Log.Debug("discarding unreadable session", zap.Error(err))
	}
	if flashes := sess.Flashes(flashKey); len(flashes) > 0 {
		if name, ok := flashes[0].(string); ok {
			vm.FirstName = name
		}
		if err := sess.Save(r, w); err != nil {
			h.Log.Warn("save session failed", zap.Error(err))
		}
	}

	h.Render(w, r, "signup_thanks", vm)
}
