package server

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"time"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/inventia-dev/fieldset/internal/api/handler"
	"github.com/inventia-dev/fieldset/internal/audit"
	"github.com/inventia-dev/fieldset/internal/auth"
	"github.com/inventia-dev/fieldset/internal/events"
	"github.com/inventia-dev/fieldset/internal/logger"
	"github.com/inventia-dev/fieldset/internal/repository/fields"
	"github.com/inventia-dev/fieldset/internal/repository/values"
	"github.com/inventia-dev/fieldset/internal/server/middleware"
	"github.com/inventia-dev/fieldset/pkg/metrics"
)

// Roles seeded by the original deployment. Admin manages definitions,
// tecnico edits values, cliente only reads.
const (
	RoleAdmin   = "admin"
	RoleTecnico = "tecnico"
	RoleCliente = "cliente"
)

// New assembles the HTTP API over the given stores.
func New(db *sql.DB, mongoCli *mongo.Client, cfg DBConfig) huma.API {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins(),
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	secret := mustJWTSecret()
	enf := newEnforcer()

	api := humachi.New(r, huma.DefaultConfig("Fieldset API", "1.0.0"))
	jwtHandler := auth.NewJWT(secret, 15*time.Minute)

	// Users, values, the audit log and the DLQ always live in SQL; only the
	// definition store moves to Mongo.
	sqlDrv := cfg.Driver
	if sqlDrv == "mongo" {
		sqlDrv = "postgres"
	}
	var store fields.Store
	if cfg.Driver == "mongo" {
		store = &fields.MongoRepo{Client: mongoCli, Database: cfg.MongoDB}
	} else {
		store = &fields.Repo{DB: db, Driver: cfg.Driver, TablePrefix: cfg.TablePrefix}
	}
	rec := &audit.Recorder{DB: db, Driver: sqlDrv, TablePrefix: cfg.TablePrefix}
	valuesRepo := &values.Repo{DB: db, Driver: sqlDrv, TablePrefix: cfg.TablePrefix}

	authHandler := &auth.Handler{
		Repo: &auth.UserRepo{DB: db, Driver: sqlDrv, TablePrefix: cfg.TablePrefix},
		JWT:  jwtHandler,
	}

	// Login stays public; everything registered after the middleware
	// requires a token.
	auth.Register(api, authHandler)
	api.UseMiddleware(auth.Middleware(api, jwtHandler))
	api.UseMiddleware(middleware.RBAC(enf))
	api.UseMiddleware(middleware.MetricsMW)

	auth.RegisterProtected(api, authHandler)
	handler.Register(api, &handler.CustomFieldHandler{Store: store, Recorder: rec})
	handler.RegisterValues(api, &handler.ValuesHandler{Fields: store, Values: valuesRepo})

	setupEvents(db, cfg, sqlDrv)
	metrics.StartFieldGauge(context.Background(), store)

	return api
}

func newEnforcer() *casbin.Enforcer {
	m := model.NewModel()
	m.AddDef("r", "r", "sub, obj, act")
	m.AddDef("p", "p", "sub, obj, act")
	m.AddDef("g", "g", "_, _")
	m.AddDef("e", "e", "some(where (p.eft == allow))")
	m.AddDef("m", "m", "g(r.sub, p.sub) && keyMatch2(r.obj, p.obj) && r.act == p.act")
	enf, err := casbin.NewEnforcer(m)
	if err != nil {
		logger.L.Error("casbin enforcer", "err", err)
		os.Exit(1)
	}
	for _, act := range []string{"GET", "POST", "PUT", "DELETE"} {
		enf.AddPolicy(RoleAdmin, "/v1/*", act)
	}
	enf.AddPolicy(RoleTecnico, "/v1/auth/*", "GET")
	enf.AddPolicy(RoleTecnico, "/v1/auth/*", "POST")
	enf.AddPolicy(RoleTecnico, "/v1/custom-fields", "GET")
	enf.AddPolicy(RoleTecnico, "/v1/custom-fields/validate", "POST")
	enf.AddPolicy(RoleTecnico, "/v1/entities/*", "GET")
	enf.AddPolicy(RoleTecnico, "/v1/entities/*", "PUT")
	enf.AddPolicy(RoleCliente, "/v1/auth/*", "GET")
	enf.AddPolicy(RoleCliente, "/v1/auth/*", "POST")
	enf.AddPolicy(RoleCliente, "/v1/custom-fields", "GET")
	enf.AddPolicy(RoleCliente, "/v1/entities/*", "GET")
	return enf
}

func setupEvents(db *sql.DB, cfg DBConfig, sqlDrv string) {
	evtConf, err := events.LoadConfig(os.Getenv("CF_EVENTS_CONFIG"))
	if err != nil {
		logger.L.Error("load events configuration", "err", err)
		os.Exit(1)
	}
	var sinks []events.Sink
	if wh := events.NewWebhookSink(evtConf.Sinks.Webhook); wh != nil {
		sinks = append(sinks, wh)
	}
	if rs, err := events.NewRedisSink(evtConf.Sinks.Redis); err == nil && rs != nil {
		sinks = append(sinks, rs)
	} else if err != nil {
		logger.L.Error("redis sink", "err", err)
	}
	if len(sinks) == 0 {
		return
	}
	var dlq events.DLQ
	if db != nil {
		dlq = &events.SQLDLQ{DB: db, Driver: sqlDrv, TablePrefix: cfg.TablePrefix}
	}
	events.Default = events.NewDispatcher(evtConf, dlq, sinks...)
}

// Serve runs the API on addr.
func Serve(addr string, api huma.API) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      api.Adapter(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	return srv.ListenAndServe()
}
