package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/time/rate"

	"github.com/Sama2911arth/Travisco/internal/auth"
	"github.com/Sama2911arth/Travisco/internal/dataapi"
	"github.com/Sama2911arth/Travisco/internal/router"
	"github.com/Sama2911arth/Travisco/internal/supabase"
	"github.com/Sama2911arth/Travisco/internal/web"
	"github.com/Sama2911arth/Travisco/pkg/utilities"
)

func main() {
	// load .env file if present so os.Getenv picks values from it
	_ = godotenv.Load()

	// init logger
	lg, err := utilities.Init(utilities.ConfigFromEnv())
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer lg.Sync()

	sugar := lg.Sugar()
	sugar.Info("starting travisco web")

	authClient, err := supabase.New(supabase.ConfigFromEnv())
	if err != nil {
		sugar.Fatalf("supabase client: %v", err)
	}
	cookieCfg, err := auth.CookieConfigFromEnv()
	if err != nil {
		sugar.Fatalf("session cookie config: %v", err)
	}
	if os.Getenv("SESSION_SECRET") == "" {
		sugar.Warn("SESSION_SECRET not set; sessions will not survive a restart")
	}

	// graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store := auth.NewStore(auth.StoreConfigFromEnv(), authClient, sugar)
	go store.Run(ctx)
	sessions := auth.NewProvider(store, auth.NewCookieCodec(cookieCfg), sugar)

	dataCfg := dataapi.ConfigFromEnv()
	pages, err := web.NewHandler(dataapi.New(dataCfg, nil), sessions, sugar)
	if err != nil {
		sugar.Fatalf("load templates: %v", err)
	}

	cfg := router.ConfigFromEnv()
	handler := router.RegisterRoutes(sugar, router.Deps{
		Web:          pages,
		WebConfig:    web.ConfigFromEnv(),
		Sessions:     sessions,
		LoginLimiter: router.NewRateLimiter(ctx, rate.Limit(cfg.LoginRate), cfg.LoginBurst),
	})
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// run server in background
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			sugar.Fatalf("http server failed: %v", err)
		}
	}()
	sugar.Infow("listening", "addr", cfg.Addr, "data_api", dataCfg.BaseURL)

	<-ctx.Done()

	sugar.Info("shutting down")

	// give a short grace period for in-flight requests
	doneCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(doneCtx); err != nil {
		sugar.Warnf("http server shutdown failed: %v", err)
	}

	sugar.Info("goodbye")
}
