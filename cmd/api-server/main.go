package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"flag"
	"os"
	"path/filepath"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"

	"github.com/go-co-op/gocron"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/inventia-dev/fieldset/internal/config"
	"github.com/inventia-dev/fieldset/internal/logger"
	"github.com/inventia-dev/fieldset/internal/repository/fields"
	"github.com/inventia-dev/fieldset/internal/server"
)

func main() {
	dsn := flag.String("dsn", "", "database DSN")
	driver := flag.String("driver", "postgres", "database driver (postgres|mysql|mongo)")
	tblPrefix := flag.String("table-prefix", getEnv("TABLE_PREFIX", "cf_"), "table prefix (default cf_)")
	mongoURI := flag.String("mongo-uri", os.Getenv("MONGO_URL"), "MongoDB URI when driver=mongo")
	mongoDB := flag.String("mongo-db", getEnv("MONGO_DB", "inventario"), "MongoDB database when driver=mongo")
	addr := flag.String("addr", ":8080", "listen address")
	openapi := flag.String("openapi", "", "write OpenAPI JSON and exit")
	purgeDays := flag.Int("purge-days", 90, "days to keep deactivated field definitions")
	flag.Parse()

	logger.Init()

	if *dsn == "" {
		logger.L.Error("dsn is required")
		os.Exit(1)
	}

	db, err := sql.Open(sqlDriver(*driver), *dsn)
	if err != nil {
		logger.L.Error("db open", "err", err)
		os.Exit(1)
	}
	defer db.Close()
	if err := config.CheckPrefix(context.Background(), db, sqlDriver(*driver), *tblPrefix); err != nil {
		logger.L.Error("prefix check", "err", err)
		os.Exit(1)
	}

	var mongoCli *mongo.Client
	if *driver == "mongo" {
		mongoCli, err = mongo.Connect(context.Background(), options.Client().ApplyURI(*mongoURI))
		if err != nil {
			logger.L.Error("mongo connect", "err", err)
			os.Exit(1)
		}
		defer mongoCli.Disconnect(context.Background())
	}

	dbCfg := server.DBConfig{
		Driver:      *driver,
		DSN:         *dsn,
		TablePrefix: *tblPrefix,
		MongoURI:    *mongoURI,
		MongoDB:     *mongoDB,
	}
	api := server.New(db, mongoCli, dbCfg)

	startRetention(db, mongoCli, dbCfg, *purgeDays)

	if *openapi != "" {
		data, err := json.MarshalIndent(api.OpenAPI(), "", "  ")
		if err != nil {
			logger.L.Error("marshal openapi", "err", err)
			os.Exit(1)
		}
		p := filepath.Clean(*openapi)
		if err := os.WriteFile(p, data, 0o600); err != nil {
			logger.L.Error("write openapi", "err", err)
			os.Exit(1)
		}
		return
	}

	logger.L.Info("listening", "addr", *addr)
	if err := server.Serve(*addr, api); err != nil {
		logger.L.Error("server error", "err", err)
		os.Exit(1)
	}
}

// startRetention schedules the nightly purge of definitions that were
// deactivated longer than purgeDays ago.
func startRetention(db *sql.DB, mongoCli *mongo.Client, cfg server.DBConfig, purgeDays int) {
	if purgeDays <= 0 {
		return
	}
	var store fields.Store
	if cfg.Driver == "mongo" {
		store = &fields.MongoRepo{Client: mongoCli, Database: cfg.MongoDB}
	} else {
		store = &fields.Repo{DB: db, Driver: cfg.Driver, TablePrefix: cfg.TablePrefix}
	}
	s := gocron.NewScheduler(time.UTC)
	if _, err := s.Cron("0 3 * * *").Do(func() {
		ctx := context.Background()
		cutoff := time.Now().UTC().AddDate(0, 0, -purgeDays)
		n, err := store.PurgeInactive(ctx, cutoff)
		if err != nil {
			logger.L.Error("purge inactive fields", "err", err)
			return
		}
		if n > 0 {
			logger.L.Info("purged inactive fields", "count", n, "cutoff", cutoff)
		}
	}); err != nil {
		logger.L.Error("schedule purge", "err", err)
		return
	}
	s.StartAsync()
}

func sqlDriver(driver string) string {
	if driver == "mongo" {
		// Users, values and the audit log stay in SQL even with the Mongo
		// field store.
		return "postgres"
	}
	return driver
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
