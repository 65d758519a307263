package bootstrap

import (
	"errors"
	"net/http"

	healthfeature "github.com/dalemusser/signup/internal/app/features/health"
	signupfeature "github.com/dalemusser/signup/internal/app/features/signup"
	prospectstore "github.com/dalemusser/signup/internal/app/store/prospects"
	"github.com/dalemusser/waffle/config"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// RegisterRoutes fills the route registry. It runs as the first startup
// step, so the bundle handler is mounted before any bundle exists and the
// sign-up pages read a cache that is filled later in the sequence.
func RegisterRoutes(r chi.Router, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	reg := deps.Registries
	if reg == nil {
		return errors.New("routes: registries not allocated")
	}

	sessionStore, err := newSessionStore(appCfg.SessionKey, coreCfg.Env == "prod", logger)
	if err != nil {
		logger.Error("session store init failed", zap.Error(err))
		return err
	}

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.SignUpMongoClient, reg.StaticData, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	if appCfg.MetricsEnabled {
		r.Handle("/metrics", promhttp.HandlerFor(reg.Metrics, promhttp.HandlerOpts{}))
	}

	// Concatenated site assets
	r.Handle("/bundles/*", reg.Bundles.Handler())

	// Sign-up form and thank-you page
	prospects := prospectstore.New(reg.Initializers.Open(signupContext, deps.SignUpMongoDatabase))
	signupHandler := signupfeature.NewHandler(reg.StaticData, prospects, sessionStore, appCfg.SessionName, reg.Bundles, logger)
	r.Mount("/", signupfeature.Routes(signupHandler))

	return nil
}

// BuildHandler boots the template engine and returns the router that
// Startup populated.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	if deps.Registries == nil || deps.Registries.Router == nil {
		return nil, errors.New("build handler: routes not registered")
	}

	// Dev mode enables template reloading.
	eng := templates.New(coreCfg.Env == "dev")
	if err := eng.Boot(logger); err != nil {
		logger.Error("template engine boot failed", zap.Error(err))
		return nil, err
	}
	templates.UseEngine(eng, logger)

	return deps.Registries.Router, nil
}
