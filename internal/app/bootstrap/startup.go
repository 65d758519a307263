package bootstrap

import (
	"context"
	"errors"

	"github.com/dalemusser/signup/internal/app/resources"
	"github.com/dalemusser/signup/internal/app/store/staticstore"
	"github.com/dalemusser/signup/internal/app/system/staticinit"
	"github.com/dalemusser/signup/internal/app/system/startup"
	"github.com/dalemusser/signup/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// signupContext names the sign-up data context in the initializer registry.
const signupContext = "signup"

// bootSteps are the four startup steps in execution order. Each field
// mutates one registry.
type bootSteps struct {
	Routes      startup.StepFunc
	Bundles     startup.StepFunc
	Initializer startup.StepFunc
	Preload     startup.StepFunc
}

// defaultBootSteps binds the steps to the app's registries.
func defaultBootSteps(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) bootSteps {
	reg := deps.Registries
	return bootSteps{
		Routes: func(ctx context.Context) error {
			return RegisterRoutes(reg.Router, coreCfg, appCfg, deps, logger)
		},
		Bundles: func(ctx context.Context) error {
			return resources.RegisterBundles(reg.Bundles)
		},
		Initializer: func(ctx context.Context) error {
			return reg.Initializers.SetInitializer(signupContext, staticinit.New(logger, appCfg.SeedStaticData))
		},
		Preload: func(ctx context.Context) error {
			ctx, cancel := timeouts.WithTimeout(ctx, timeouts.Preload(), logger, "static data preload")
			defer cancel()
			dc := reg.Initializers.Open(signupContext, deps.SignUpMongoDatabase)
			return reg.StaticData.Preload(ctx, staticstore.New(dc))
		},
	}
}

// newSequence assembles steps into the startup sequence.
func newSequence(steps bootSteps, logger *zap.Logger, opts ...startup.Option) *startup.Sequence {
	return startup.New("signup", logger, opts...).
		Add("routes", steps.Routes).
		Add("bundles", steps.Bundles).
		Add("initializer", steps.Initializer).
		Add("preload", steps.Preload)
}

// Startup runs one-time application initialization after DB connections and
// schema checks, before the HTTP handler is built. The first failing step
// aborts startup and WAFFLE exits without serving.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if deps.Registries == nil {
		return errors.New("startup: registries not allocated")
	}
	resources.LoadSharedTemplates()

	var opts []startup.Option
	if appCfg.MetricsEnabled {
		m, err := startup.NewMetrics("signup", deps.Registries.Metrics)
		if err != nil {
			return err
		}
		opts = append(opts, startup.WithMetrics(m))
	}

	seq := newSequence(defaultBootSteps(coreCfg, appCfg, deps, logger), logger, opts...)
	report, err := seq.Run(ctx)
	if err != nil {
		logger.Error("application startup failed",
			zap.String("boot_id", report.BootID),
			zap.Int("completed_steps", len(report.Completed)),
			zap.Error(err))
		return err
	}

	logger.Info("application started",
		zap.String("boot_id", report.BootID),
		zap.Duration("took", report.Duration),
		zap.Int("bundles", deps.Registries.Bundles.Len()),
		zap.Int("countries", len(deps.Registries.StaticData.Countries())),
		zap.Int("roles", len(deps.Registries.StaticData.Roles())))
	return nil
}
