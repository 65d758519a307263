package bootstrap

import (
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/dalemusser/signup/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/gorilla/securecookie"
	"go.uber.org/zap"
)

// minSessionKeyLen is the shortest session key accepted in prod.
const minSessionKeyLen = 32

// appConfigKeys defines the configuration keys for the sign-up app.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, session_name, etc.
//   - Environment variables: SIGNUP_MONGO_URI, SIGNUP_SESSION_NAME, etc.
//   - Command-line flags: --mongo_uri, --session_name, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "signup", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 50, Desc: "MongoDB max connection pool size"},
	{Name: "mongo_min_pool_size", Default: 2, Desc: "MongoDB min connection pool size"},
	{Name: "session_key", Default: "", Desc: "Session signing key (required in prod, 32+ chars)"},
	{Name: "session_name", Default: "signup-session", Desc: "Session cookie name"},
	{Name: "preload_timeout", Default: "60s", Desc: "Timeout for the startup static data preload"},
	{Name: "seed_static_data", Default: true, Desc: "Seed empty countries/roles collections on first use"},
	{Name: "metrics_enabled", Default: true, Desc: "Expose Prometheus metrics at /metrics"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// Precedence is flags > env (SIGNUP_*) > config files > defaults.
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "SIGNUP", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),
		SessionKey:       appValues.String("session_key"),
		SessionName:      appValues.String("session_name"),
		PreloadTimeout:   appValues.Duration("preload_timeout", timeouts.DefaultPreload),
		SeedStaticData:   appValues.Bool("seed_static_data"),
		MetricsEnabled:   appValues.Bool("metrics_enabled"),
	}

	// Outside prod a blank key gets a random one; flash messages then do not
	// survive a restart, which is fine for local work.
	if appCfg.SessionKey == "" && coreCfg.Env != "prod" {
		appCfg.SessionKey = hex.EncodeToString(securecookie.GenerateRandomKey(32))
		logger.Warn("session_key not set; generated a per-process key",
			zap.String("env", coreCfg.Env))
	}

	timeouts.Configure(timeouts.Config{Preload: appCfg.PreloadTimeout})

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation before anything
// connects.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}
	return validateAppConfig(coreCfg.Env, appCfg)
}

func validateAppConfig(env string, appCfg AppConfig) error {
	var errs []error
	if appCfg.MongoDatabase == "" {
		errs = append(errs, errors.New("mongo_database is required"))
	}
	if appCfg.MongoMaxPoolSize > 0 && appCfg.MongoMinPoolSize > appCfg.MongoMaxPoolSize {
		errs = append(errs, fmt.Errorf("mongo_min_pool_size (%d) exceeds mongo_max_pool_size (%d)",
			appCfg.MongoMinPoolSize, appCfg.MongoMaxPoolSize))
	}
	if appCfg.SessionName == "" {
		errs = append(errs, errors.New("session_name is required"))
	}
	if env == "prod" && len(appCfg.SessionKey) < minSessionKeyLen {
		errs = append(errs, fmt.Errorf("session_key must be at least %d characters in prod", minSessionKeyLen))
	}
	if appCfg.PreloadTimeout < time.Second {
		errs = append(errs, fmt.Errorf("preload_timeout %s is too short", appCfg.PreloadTimeout))
	}
	return errors.Join(errs...)
}
