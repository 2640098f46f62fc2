package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"kitchenbot/internal/config"
	"kitchenbot/internal/database"
	"kitchenbot/internal/evaluation"
	"kitchenbot/internal/llm"
	"kitchenbot/internal/monitoring"
	"kitchenbot/internal/playground"
)

var (
	configFile = flag.String("config", "", "Path to configuration file")
	scenario   = flag.String("scenario", "", "Run one scenario headless and exit")
	seed       = flag.Int64("seed", 0, "Seed for the headless run (0 keeps the configured seed)")
	verbose    = flag.Bool("verbose", false, "Print the bots' decision journals after a headless run")
	liveBots   = flag.Int("live-bots", 2, "Bots playing the live kitchen")
	tokenFor   = flag.String("token", "", "Print a bearer token for the given subject and exit")
)

func main() {
	flag.Parse()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load(*configFile)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if *tokenFor != "" {
		if cfg.Auth.JWTSecret == "" {
			log.Fatalf("No JWT secret configured")
		}
		token, err := playground.IssueToken(cfg.Auth.JWTSecret, *tokenFor, cfg.Auth.TokenTTL)
		if err != nil {
			log.Fatalf("Failed to issue token: %v", err)
		}
		fmt.Println(token)
		return
	}

	catalog, err := cfg.Catalog()
	if err != nil {
		log.Fatalf("Failed to load recipes: %v", err)
	}

	store, err := initializeDB(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer store.Close()

	metricsCollector := evaluation.NewMetricsCollector()
	evaluator := evaluation.NewEvaluator(catalog, cfg.Kitchen, cfg.Agent)
	evaluator.Metrics = metricsCollector
	if cfg.LLM.Enabled {
		model, err := llm.New(cfg.LLM)
		if err != nil {
			log.Fatalf("Failed to initialize LLM: %v", err)
		}
		evaluator.Debriefer = evaluation.NewDebriefer(model)
	}

	if *scenario != "" {
		if err := runHeadless(ctx, evaluator, store); err != nil {
			log.Fatalf("Evaluation failed: %v", err)
		}
		return
	}

	monitor := monitoring.NewMonitor()
	session, err := playground.NewSession(cfg.Kitchen, catalog, cfg.Agent, *liveBots, monitor)
	if err != nil {
		log.Fatalf("Failed to start live session: %v", err)
	}
	go session.Run(ctx, cfg.Server.Tick, 5*time.Second)

	gin.SetMode(cfg.Server.Mode)
	playgroundServer := playground.NewPlaygroundServer(playground.Options{
		Context:   ctx,
		Evaluator: evaluator,
		Catalog:   catalog,
		Monitor:   monitor,
		Store:     store,
		Session:   session,
		JWTSecret: cfg.Auth.JWTSecret,
	})

	var metricsServer *http.Server
	if cfg.Metrics.Enabled {
		metricsServer = startMetricsServer(cfg.Metrics.Port, cfg.Metrics.Path, metricsCollector)
	}

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: playgroundServer.Router(),
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("Shutting down servers...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("API server shutdown error: %v", err)
		}
		if metricsServer != nil {
			if err := metricsServer.Shutdown(shutdownCtx); err != nil {
				log.Printf("Metrics server shutdown error: %v", err)
			}
		}

		cancel()
	}()

	log.Printf("Starting playground server on port %d", cfg.Server.Port)
	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatalf("API server error: %v", err)
	}
	playgroundServer.Wait()
}

// initializeDB opens the run log, or returns nil when it is disabled
func initializeDB(cfg *config.Config) (*database.Store, error) {
	if !cfg.Database.Enabled {
		return nil, nil
	}
	store, err := database.Open(cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		return nil, err
	}
	if err := store.Migrate(); err != nil {
		store.Close()
		return nil, err
	}
	return store, nil
}

func runHeadless(ctx context.Context, evaluator *evaluation.Evaluator, store *database.Store) error {
	result, err := evaluator.Run(ctx, *scenario, *seed)
	if err != nil {
		return err
	}

	if store != nil {
		if err := store.SaveRun(result.Record()); err != nil {
			log.Printf("Failed to store run: %v", err)
		}
	}

	fmt.Printf("Run %s: %s (seed %d)\n", result.RunID, result.Scenario, result.Seed)
	fmt.Printf("Score: %d\n", result.Score)

	keys := make([]string, 0, len(result.Metrics))
	for k := range result.Metrics {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Printf("  %-22s %v\n", k, result.Metrics[k])
	}

	if *verbose {
		players := make([]int, 0, len(result.Memories))
		for p := range result.Memories {
			players = append(players, p)
		}
		sort.Ints(players)
		for _, p := range players {
			fmt.Printf("\nBot %d journal:\n", p)
			for _, e := range result.Memories[p] {
				fmt.Printf("  %s\n", e)
			}
		}
	}

	if result.Debrief != "" {
		fmt.Printf("\nDebrief:\n%s\n", result.Debrief)
	}
	return nil
}

func startMetricsServer(port int, path string, collector *evaluation.MetricsCollector) *http.Server {
	metricsRouter := gin.New()
	metricsRouter.GET(path, gin.WrapH(promhttp.HandlerFor(collector.Registry(), promhttp.HandlerOpts{})))

	metricsServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: metricsRouter,
	}

	go func() {
		log.Printf("Starting metrics server on port %d", port)
		if err := metricsServer.ListenAndServe(); err != http.ErrServerClosed {
			log.Printf("Metrics server error: %v", err)
		}
	}()
	return metricsServer
}
