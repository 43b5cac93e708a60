package main

import (
	"context"
	"database/sql"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"

	"stayscape/internal/adapters/apper"
	server "stayscape/internal/adapters/http_server"
	"stayscape/internal/adapters/observability"
	redisad "stayscape/internal/adapters/redis"
	"stayscape/internal/app"
	"stayscape/internal/domain"
	"stayscape/internal/shared"
	"stayscape/internal/storage/memory"
	mysqlrepo "stayscape/internal/storage/mysql"
)

var tables = []string{"booking_c", "hotel_c", "review_c", "user_c"}

func main() {
	cfg := shared.Load()

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store := openStore(ctx, cfg)

	var cache domain.Cache
	if cfg.RedisAddr != "" {
		cache = redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	}

	notify := observability.ToastLog{L: log.Logger}

	reviews := app.NewReviews(store, cache, notify, cfg.CacheTTL)
	hotels := app.NewHotels(store, reviews, cache, notify, cfg.CacheTTL)
	bookings := app.NewBookings(store, notify)
	users := app.NewUsers(store, notify)

	// http
	srv := server.New()
	reg := observability.InitRegistry()
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(&server.Handlers{
		Hotels:   hotels,
		Bookings: bookings,
		Reviews:  reviews,
		Users:    users,
	})

	log.Info().Str("addr", cfg.HTTPAddr).Str("backend", cfg.Backend).Msg("API listening")
	httpSrv := &http.Server{Addr: cfg.HTTPAddr, Handler: srv.Mux()}

	go func() {
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("http server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutCtx); err != nil {
		log.Error().Err(err).Msg("shutdown failed")
	}
}

func openStore(ctx context.Context, cfg shared.Config) domain.TableStore {
	switch cfg.Backend {
	case "mysql":
		db, err := sql.Open("mysql", cfg.MySQLDSN)
		if err != nil {
			log.Fatal().Err(err).Msg("sql.Open failed")
		}
		if err := db.Ping(); err != nil {
			log.Fatal().Err(err).Msg("db.Ping failed")
		}
		repo := mysqlrepo.New(db)
		if err := repo.EnsureSchema(ctx, tables...); err != nil {
			log.Fatal().Err(err).Msg("schema migration failed")
		}
		log.Info().Msg("database connection ok")
		return repo
	case "memory":
		return memory.New()
	default:
		client, err := apper.New(cfg.ApperBase, cfg.ApperProjectID, cfg.ApperPublicKey, cfg.ApperRPS)
		if err != nil {
			log.Fatal().Err(err).Msg("record API client init failed")
		}
		return client
	}
}
