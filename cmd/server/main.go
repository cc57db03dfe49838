package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"fleet-tracking-service/internal/adapters/auth"
	"fleet-tracking-service/internal/adapters/publisher"
	"fleet-tracking-service/internal/adapters/repositories"
	"fleet-tracking-service/internal/api"
	"fleet-tracking-service/internal/api/dto"
	"fleet-tracking-service/internal/config"
	"fleet-tracking-service/internal/platform/db"
	"fleet-tracking-service/internal/platform/obs"
	"fleet-tracking-service/internal/ports"
	"fleet-tracking-service/internal/services"
	"fleet-tracking-service/internal/simulation"
)

// main is the application composition root.
// It wires concrete adapters (SQL store, Redis, static tokens) behind ports,
// builds the simulation and runs the HTTP server and tick loop together.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Info("No .env file found (using environment variables)")
	}
	obs.Init(config.Get("LOG_LEVEL", "info"))

	if err := run(); err != nil {
		log.WithError(err).Fatal("server exited")
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	driver := config.Get("DB_DRIVER", db.DriverSqlite)
	port := config.Get("PORT", "8080")
	seedPath := config.Get("SEED_PATH", "data/seeds/routes.json")

	simCfg, err := config.Load(config.Get("SIM_CONFIG_PATH", "config.yml"))
	if err != nil {
		return err
	}
	params := simCfg.Params()

	conn, dialect, err := openStore(driver)
	if err != nil {
		return err
	}
	defer conn.Close()

	// Initialize schema and seed demo data on startup for local runs.
	if err := initAndSeed(conn, dialect, seedPath); err != nil {
		return err
	}

	repo := repositories.NewSQLRouteRepository(conn, dialect)

	seed := simCfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	store := simulation.NewSnapshotStore()
	registry := simulation.NewRegistry(params, simulation.NewRandom(seed), simulation.NewRandom(seed+1), store)
	clock, err := simulation.NewClock(registry, params)
	if err != nil {
		return err
	}

	catalog := services.NewRouteCatalog(repo, registry)
	n, err := catalog.ActivateAll(ctx, simCfg.ActiveRoutes)
	if err != nil {
		return err
	}
	log.WithFields(log.Fields{"vehicles": n, "seed": seed}).Info("routes activated")

	tokens, err := tokenValidator(config.Get("API_TOKENS", ""))
	if err != nil {
		return err
	}

	query := services.NewLiveQuery(store)
	control := services.NewControl(clock, registry)
	router := api.NewRouter(api.Deps{
		Query:   query,
		Catalog: catalog,
		Control: control,
		Tokens:  tokens,
	})

	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		// WriteTimeout stays 0: websocket streams are long-lived.
		IdleTimeout: 60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error { return clock.Run(gctx) })

	if url := config.Get("REDIS_URL", ""); url != "" {
		client, err := publisher.Connect(ctx, url)
		if err != nil {
			return err
		}
		defer client.Close()

		pub := publisher.NewRedisSnapshotPublisher(client, config.Get("REDIS_PREFIX", "fleet"), dto.EncodeLiveSnapshot)
		g.Go(func() error { return services.RunPublisher(gctx, query.Subscribe, pub, 2*time.Second) })
		log.WithField("channel", pub.Channel()).Info("redis snapshot publishing enabled")
	}

	g.Go(func() error {
		log.WithField("addr", srv.Addr).Info("Server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		clock.Stop()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if simCfg.AutoStart {
		clock.Start()
	}

	return g.Wait()
}

func openStore(driver string) (*sql.DB, repositories.Dialect, error) {
	switch driver {
	case db.DriverPostgres:
		url := config.Get("DATABASE_URL", "")
		if url == "" {
			return nil, 0, errors.New("DATABASE_URL is required when DB_DRIVER=postgres")
		}
		conn, err := db.Open(driver, url)
		return conn, repositories.Postgres, err
	default:
		conn, err := db.Open(db.DriverSqlite, config.Get("DB_PATH", "data/app.db"))
		return conn, repositories.Sqlite, err
	}
}

func tokenValidator(raw string) (ports.TokenValidator, error) {
	tokens, err := auth.ParseStaticTokens(raw)
	if err != nil {
		return nil, err
	}
	if tokens.Len() == 0 {
		log.Warn("API_TOKENS is empty: authentication is disabled")
		return nil, nil
	}
	return tokens, nil
}

func initAndSeed(conn *sql.DB, d repositories.Dialect, seedPath string) error {
	if err := repositories.InitSchema(conn); err != nil {
		return fmt.Errorf("init and seed: %w", err)
	}

	if err := repositories.SeedFromJSON(conn, d, seedPath); err != nil {
		return fmt.Errorf("init and seed: %w", err)
	}

	return nil
}
