package main

import (
	"context"
	"log"
	"log/slog"
	"math/rand"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/cloudwego/hertz/pkg/app/server"

	httpadapter "lastcity/internal/adapter/http"
	natsadapter "lastcity/internal/adapter/realtime/nats"
	gormrepo "lastcity/internal/adapter/repo/gorm"
	"lastcity/internal/app/auth"
	"lastcity/internal/app/store"
)

type config struct {
	DBDSN         string `env:"LASTCITY_DB_DSN,required"`
	HTTPAddr      string `env:"LASTCITY_HTTP_ADDR" envDefault:":8080"`
	NATSHost      string `env:"LASTCITY_NATS_HOST" envDefault:"127.0.0.1"`
	NATSPort      int    `env:"LASTCITY_NATS_PORT" envDefault:"4222"`
	MigrationsDir string `env:"LASTCITY_MIGRATIONS_DIR" envDefault:"./migrations"`
}

func main() {
	var cfg config
	if err := env.Parse(&cfg); err != nil {
		log.Fatalf("parse env: %v", err)
	}

	db, err := gormrepo.OpenPostgres(cfg.DBDSN)
	if err != nil {
		log.Fatalf("open postgres: %v", err)
	}
	if err := gormrepo.ApplyMigrations(context.Background(), db, cfg.MigrationsDir); err != nil {
		log.Fatalf("apply migrations: %v", err)
	}

	nats, err := natsadapter.NewServer(
		natsadapter.WithHost(cfg.NATSHost),
		natsadapter.WithPort(cfg.NATSPort),
	)
	if err != nil {
		log.Fatalf("build nats server: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		if err := nats.Start(ctx); err != nil {
			log.Fatalf("nats server: %v", err)
		}
	}()
	if !nats.WaitReady(10 * time.Second) {
		log.Fatal("nats server did not become ready")
	}

	credentials := gormrepo.NewCredentialRepo(db)
	profiles := gormrepo.NewProfileRepo(db)
	authService := auth.Service{
		SignInUC: auth.SignInUseCase{Credentials: credentials, Profiles: profiles},
		SignUpUC: auth.SignUpUseCase{Credentials: credentials, Profiles: profiles},
	}
	feed := &natsadapter.Feed{Server: nats}

	h := httpadapter.NewHandler(func() *store.Store {
		return store.New(store.Config{
			Auth:    authService,
			Lobbies: gormrepo.NewLobbyRepo(db),
			Feed:    feed,
			Rand:    rand.New(rand.NewSource(time.Now().UnixNano())),
		})
	})

	s := server.Default(server.WithHostPorts(cfg.HTTPAddr))
	h.RegisterRoutes(s)

	slog.Info("lastcity server listening", "addr", cfg.HTTPAddr)
	s.Spin()
}
