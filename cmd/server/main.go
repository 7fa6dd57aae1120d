package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"charter-concierge/internal/domain/entity"
	"charter-concierge/internal/domain/repository"
	"charter-concierge/internal/infrastructure/config"
	"charter-concierge/internal/infrastructure/oauth"
	"charter-concierge/internal/infrastructure/persistence"
	"charter-concierge/internal/infrastructure/router"
	"charter-concierge/internal/interface/api"
	"charter-concierge/internal/interface/oracle"
	repo "charter-concierge/internal/interface/repository"
	"charter-concierge/internal/usecase"
	"charter-concierge/internal/usecase/specialists"
	"charter-concierge/pkg/logger"
	"charter-concierge/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.NewLogger(false).Fatal("Failed to load config", "error", err)
	}

	// Create logger
	log := logger.NewLogger(cfg.Debug)
	defer log.Sync()
	log.Info("Starting Charter Concierge", "version", cfg.AppVersion, "engine", cfg.Engine)

	// Set up context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Set up MongoDB connection
	log.Info("Connecting to MongoDB")
	mongoClient, db, err := persistence.NewMongoClient(ctx, cfg.MongoURI, cfg.MongoUser, cfg.MongoPassword, cfg.MongoDB)
	if err != nil {
		log.Fatal("Failed to connect to MongoDB", "error", err)
	}

	// Airport master data
	var timezones repository.TimezoneRepository
	gormDB, err := persistence.NewPostgresDB(cfg.PostgresURI, cfg.Debug)
	if err != nil {
		log.Fatal("Failed to connect to PostgreSQL", "error", err)
	}
	if gormDB != nil {
		timezones = repo.NewGormTimezoneRepository(gormDB)
	} else {
		log.Warn("POSTGRES_DSN is not set, airport timezones come from the backend only")
	}

	// Turn ledger
	redisClient, err := persistence.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		log.Fatal("Failed to connect to Redis", "error", err)
	}
	ledger := repo.NewRedisTurnLedger(redisClient)

	// Set up repositories
	chats := repo.NewMongoChatRepository(db)
	messages := repo.NewMongoMessageRepository(db)

	var backend repository.CharterBackendRepository
	if cfg.BackendURL != "" {
		backendAuth := oauth.NewBackendOAuth(cfg.BackendClientID, cfg.BackendClientSecret, cfg.BackendTokenURL, cfg.BackendScopes, log)
		backend = repo.NewHTTPCharterBackendRepository(cfg.BackendURL, backendAuth.HTTPClient(ctx, 30*time.Second), log)
	} else {
		log.Warn("BACKEND_URL is not set, charter backend calls will fail")
		backend = repo.NewUnimplementedCharterBackend(log)
	}

	places, err := repo.NewMapsPlacesRepository(cfg.MapsAPIKey, cfg.MapsBaseURL, log)
	if err != nil {
		log.Fatal("Failed to create places repository", "error", err)
	}

	// Crew
	crew, err := usecase.LoadCrewDirectory()
	if err != nil {
		log.Fatal("Failed to load crew directory", "error", err)
	}
	binding := engineBinding(cfg)
	handOver := usecase.NewHandOverService(crew, binding, log)
	charter := usecase.NewCharterOptionsService(backend, timezones, log)

	crewRouter := router.NewCrewRouter(log)
	specialists.RegisterCrew(crewRouter, handOver, charter, places, log)
	if missing := crewRouter.Missing(); len(missing) > 0 {
		log.Fatal("Crew members without dispatch table", "missing", missing)
	}

	oracles, err := newOracles(ctx, cfg, log)
	if err != nil {
		log.Fatal("Failed to create oracle", "error", err)
	}

	// Turns
	m := metrics.NewMetrics("concierge")
	processor := usecase.NewTurnProcessor(chats, messages, crewRouter, oracles, handOver, ledger, m, log)
	processor.SetMaxRounds(cfg.MaxRound)

	queue := usecase.NewTurnQueue(processor, chats, usecase.QueueConfig{
		MaxConcurrent: cfg.MaxConcurrentTurns,
		Delay:         cfg.AIDelay,
		StaleAfter:    cfg.StaleTurnAfter,
		SweepInterval: cfg.SweepInterval,
	}, m, log)
	processor.SetScheduler(queue)

	queueDone := make(chan struct{})
	go func() {
		queue.Run(ctx)
		close(queueDone)
	}()

	chatService := usecase.NewChatService(chats, messages, binding, queue, log)

	// Set up HTTP server
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("Healthy"))
	})
	api.NewChatHandler(chatService, cfg.JWTSecret, log).Register(mux)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      mux,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	// Start HTTP server in a goroutine
	go func() {
		log.Info("Starting HTTP server", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server error", "error", err)
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan
	log.Info("Received signal", "signal", sig)

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error", "error", err)
	}

	cancel() // Cancel the context to stop the turn queue
	<-queueDone

	if err := redisClient.Close(); err != nil {
		log.Error("Redis close error", "error", err)
	}

	// Disconnect from MongoDB
	if err := mongoClient.Disconnect(shutdownCtx); err != nil {
		log.Error("MongoDB disconnect error", "error", err)
	}

	log.Info("Charter Concierge stopped")
}

func engineBinding(cfg *config.Config) usecase.EngineBinding {
	if cfg.Engine != string(entity.EngineOpenAI) {
		return usecase.EngineBinding{Engine: entity.EngineVertexAI}
	}
	remote := make(map[entity.AssistantID]string, len(cfg.AssistantIDs))
	for key, id := range cfg.AssistantIDs {
		remote[entity.AssistantID(key)] = id
	}
	return usecase.EngineBinding{Engine: entity.EngineOpenAI, RemoteIDs: remote}
}

// newOracles creates the oracle of the configured engine
func newOracles(ctx context.Context, cfg *config.Config, log logger.Logger) (map[entity.Engine]usecase.Oracle, error) {
	var (
		engine = entity.EngineVertexAI
		core   usecase.Oracle
	)
	if cfg.Engine == string(entity.EngineOpenAI) {
		engine = entity.EngineOpenAI
		core = oracle.NewOpenAIOracle(cfg.OpenAIAPIKey, cfg.OpenAIModel, cfg.OpenAIMaxOutputTokens, log)
	} else {
		genAI, err := oracle.NewGenAIOracle(ctx, oracle.GenAIConfig{
			APIKey:          cfg.GeminiAPIKey,
			Project:         cfg.VertexProject,
			Location:        cfg.VertexLocation,
			Model:           cfg.VertexModel,
			Temperature:     float32(cfg.VertexTemperature),
			MaxOutputTokens: int32(cfg.VertexMaxOutputTokens),
		}, log)
		if err != nil {
			return nil, err
		}
		core = genAI
	}

	if cfg.DebugAI {
		core = oracle.NewTracingOracle(core, log.With("component", "oracle"))
	}
	return map[entity.Engine]usecase.Oracle{engine: core}, nil
}
