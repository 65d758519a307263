package bootstrap

import (
	"github.com/dalemusser/signup/internal/app/resources"
	"github.com/dalemusser/signup/internal/app/system/bundles"
	"github.com/dalemusser/signup/internal/app/system/dbinit"
	"github.com/dalemusser/signup/internal/app/system/staticdata"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// DBDeps holds database/back-end dependencies for the app.
type DBDeps struct {
	SignUpMongoClient   *mongo.Client
	SignUpMongoDatabase *mongo.Database

	// Registries are shared by every hook after ConnectDB.
	Registries *Registries
}

// Registries are the process-wide tables the startup sequence fills in.
// They are written only during Startup and read-only afterwards.
type Registries struct {
	Router       chi.Router
	Bundles      *bundles.Table
	Initializers *dbinit.Registry
	StaticData   *staticdata.Cache

	// Metrics is the app's Prometheus registry, served at /metrics.
	Metrics *prometheus.Registry
}

// NewRegistries allocates empty registries.
func NewRegistries(logger *zap.Logger) *Registries {
	return &Registries{
		Router:       chi.NewRouter(),
		Bundles:      bundles.NewTable(resources.Assets()),
		Initializers: dbinit.NewRegistry(logger),
		StaticData:   staticdata.New(logger),
		Metrics:      prometheus.NewRegistry(),
	}
}
