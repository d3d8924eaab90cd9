package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/windfall/vocal_service/internal/client"
	"github.com/windfall/vocal_service/internal/config"
	httphandler "github.com/windfall/vocal_service/internal/handler/http"
	wshandler "github.com/windfall/vocal_service/internal/handler/ws"
	"github.com/windfall/vocal_service/internal/logger"
	"github.com/windfall/vocal_service/internal/repository"
	"github.com/windfall/vocal_service/internal/server"
	"github.com/windfall/vocal_service/internal/service"
)

// closers run in reverse order at shutdown.
type closers []func(ctx context.Context)

func (c *closers) add(fn func(ctx context.Context)) {
	*c = append(*c, fn)
}

func (c closers) run(ctx context.Context) {
	for i := len(c) - 1; i >= 0; i-- {
		c[i](ctx)
	}
}

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	// Initialize logger
	log := logger.New(cfg.LogLevel, cfg.LogFormat)
	log.Info().Str("env", cfg.Environment).Msg("Starting " + httphandler.ServiceName)

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var cleanup closers

	// AI providers
	aiService := newAIService(ctx, cfg, log, &cleanup)
	var textAI service.TextGenerator
	if aiService.Configured() {
		textAI = aiService
		log.Info().Str("provider", aiService.Active()).Str("model", aiService.ActiveModel()).Msg("AI provider selected")
	} else {
		log.Warn().Msg("No AI provider configured, using rule-based coaching")
	}

	// Redis: conversation history and voice list cache
	var redisClient *client.RedisClient
	if cfg.RedisURL != "" {
		redisClient, err = client.NewRedisClient(cfg.RedisURL)
		if err != nil {
			log.Error().Err(err).Msg("Failed to initialize Redis client")
		} else {
			log.Info().Msg("Redis client initialized")
			cleanup.add(func(context.Context) { redisClient.Close() })
		}
	}

	var history repository.HistoryRepository
	var voiceCache service.JSONCache
	historyBackend := "memory"
	if redisClient != nil {
		history = repository.NewRedisHistoryRepository(redisClient, cfg.HistoryTTL)
		voiceCache = redisClient
		historyBackend = "redis"
	} else {
		history = repository.NewMemoryHistoryRepository().WithTTL(cfg.HistoryTTL)
	}

	sessionRepo := newSessionRepository(ctx, cfg, log, &cleanup)

	// Session events
	var events service.EventPublisher
	if cfg.PubSubProjectID != "" && cfg.PubSubTopicID != "" {
		pubsubClient, err := client.NewPubSubClient(ctx, cfg.PubSubProjectID, cfg.PubSubTopicID)
		if err != nil {
			log.Error().Err(err).Msg("Failed to initialize Pub/Sub client")
		} else {
			log.Info().Str("topic", cfg.PubSubTopicID).Msg("Pub/Sub client initialized")
			events = pubsubClient
			cleanup.add(func(context.Context) { pubsubClient.Close() })
		}
	}

	audioStore := newAudioStore(ctx, cfg, log, &cleanup)

	// Voice and speech collaborators
	var synth service.Synthesizer
	if cfg.ElevenLabsAPIKey != "" {
		synth = client.NewElevenLabsClient(cfg.ElevenLabsAPIKey, cfg.ElevenLabsBaseURL, cfg.ElevenLabsModel)
	} else {
		log.Warn().Msg("ELEVENLABS_API_KEY not set, text-to-speech disabled")
	}

	var recognizer service.SpeechRecognizer
	if cfg.AzureAISpeechKey != "" && cfg.AzureServiceRegion != "" {
		recognizer = client.NewAzureSpeechClient(cfg.AzureAISpeechKey, cfg.AzureServiceRegion)
	}
	var whisper service.WhisperTranscriber
	if cfg.AzureWhisperEndpoint != "" && cfg.AzureWhisperKey != "" {
		whisper = client.NewAzureWhisperClient(cfg.AzureWhisperEndpoint, cfg.AzureWhisperKey)
	}

	// Initialize services
	catalog := repository.NewDefaultSpeechCatalog()
	analysisService := service.NewAnalysisService(textAI, log)
	patternAnalyzer := service.NewPatternAnalyzer(textAI, log)
	comparisonService := service.NewComparisonService(catalog, analysisService, textAI, log)
	responseGenerator := service.NewResponseGenerator(textAI, log)
	conversationService := service.NewConversationService(responseGenerator, patternAnalyzer, history, cfg.BackgroundTimeout, log)
	sessionService := service.NewSessionService(sessionRepo, analysisService, events, cfg.BackgroundTimeout, log)
	voiceService := service.NewVoiceService(synth, voiceCache, audioStore, cfg.ElevenLabsDefaultVoice, cfg.VoiceListTTL, log)
	transcriptionService := service.NewTranscriptionService(recognizer, whisper, log)
	meetingService := service.NewMeetingService(log)

	// Initialize handlers
	healthHandler := httphandler.NewHealthHandler(httphandler.ServiceStatus{
		Environment:         cfg.Environment,
		AIProvider:          aiService.Active(),
		AIModel:             aiService.ActiveModel(),
		VoiceSynthesis:      voiceService.Configured(),
		SpeechToText:        transcriptionService.Configured(),
		SessionStore:        sessionService.Backend(),
		ConversationHistory: historyBackend,
		AudioStorage:        voiceService.StorageBackend(),
		SessionEvents:       events != nil,
	})
	handlers := server.Handlers{
		Health:       healthHandler,
		Coaching:     httphandler.NewCoachingHandler(log, analysisService, patternAnalyzer, comparisonService, catalog, sessionService),
		Conversation: httphandler.NewConversationHandler(log, conversationService),
		Speech:       httphandler.NewSpeechHandler(log, transcriptionService, voiceService),
		Session:      httphandler.NewSessionHandler(log, sessionService),
		Meeting:      httphandler.NewMeetingHandler(log, meetingService),
		WebSocket:    wshandler.NewHandler(log, conversationService, analysisService),
	}

	// Initialize WebSocket hub
	hub := server.NewWebSocketHub(log, cfg.CORSAllowedOrigins)
	go hub.Run(ctx)

	// Initialize servers
	httpServer := server.NewHTTPServer(cfg, log, hub, handlers)

	var grpcServer *server.GRPCServer
	if cfg.EnableGRPC {
		grpcServer = server.NewGRPCServer(cfg, log)
	}

	// Start servers
	go func() {
		if err := httpServer.Start(); err != nil {
			log.Error().Err(err).Msg("HTTP server error")
			cancel()
		}
	}()

	if grpcServer != nil {
		go func() {
			if err := grpcServer.Start(); err != nil {
				log.Error().Err(err).Msg("gRPC server error")
				cancel()
			}
		}()
		grpcServer.SetServing(true)
	}

	log.Info().
		Str("http_addr", cfg.HTTPAddress()).
		Bool("grpc", cfg.EnableGRPC).
		Msg("Servers started")

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-quit:
		log.Info().Msg("Shutdown signal received")
	case <-ctx.Done():
		log.Info().Msg("Context cancelled")
	}

	// Graceful shutdown
	log.Info().Msg("Shutting down servers...")
	healthHandler.SetReady(false)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	if grpcServer != nil {
		grpcServer.GracefulStop()
	}
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}
	cancel()

	cleanup.run(shutdownCtx)

	log.Info().Msg("Server stopped")
}

// newAIService registers every configured provider.
func newAIService(ctx context.Context, cfg *config.Config, log zerolog.Logger, cleanup *closers) *service.AIService {
	ai := service.NewAIService(log, cfg.AIProvider)

	if cfg.GeminiAPIKey != "" {
		gemini, err := client.NewGeminiAPIClient(ctx, cfg.GeminiAPIKey)
		if err != nil {
			log.Error().Err(err).Msg("Failed to initialize Gemini API client")
		} else {
			ai.Register(service.ProviderGemini, gemini.WithModel(cfg.GeminiModel))
			cleanup.add(func(context.Context) { gemini.Close() })
		}
	}

	if cfg.GCPProjectID != "" || cfg.GeminiSAPath != "" {
		var vertex *client.GeminiClient
		var err error
		if cfg.GeminiSAPath != "" {
			vertex, err = client.NewGeminiClientWithServiceAccount(ctx, cfg.GCPProjectID, cfg.GCPLocation, cfg.GeminiSAPath)
		} else {
			vertex, err = client.NewGeminiClient(ctx, cfg.GCPProjectID, cfg.GCPLocation)
		}
		if err != nil {
			log.Error().Err(err).Msg("Failed to initialize Vertex Gemini client")
		} else {
			ai.Register(service.ProviderVertex, vertex.WithModel(cfg.GeminiModel))
		}
	}

	if cfg.OpenAIAPIKey != "" {
		ai.Register(service.ProviderOpenAI, client.NewOpenAIClient(cfg.OpenAIAPIKey).WithModel(cfg.OpenAIModel))
	}
	if cfg.AnthropicAPIKey != "" {
		ai.Register(service.ProviderAnthropic, client.NewAnthropicClient(cfg.AnthropicAPIKey).WithModel(cfg.AnthropicModel))
	}
	if cfg.AzureChatEndpoint != "" && cfg.AzureChatKey != "" {
		ai.Register(service.ProviderAzure, client.NewAzureChatClient(cfg.AzureChatEndpoint, cfg.AzureChatKey))
	}

	return ai
}

// newSessionRepository picks the session store. "auto" prefers Postgres, then Mongo, then memory.
func newSessionRepository(ctx context.Context, cfg *config.Config, log zerolog.Logger, cleanup *closers) repository.SessionRepository {
	usePostgres := cfg.SessionStore == "postgres" || (cfg.SessionStore == "auto" && cfg.DatabaseURL != "")
	useMongo := cfg.SessionStore == "mongo" || (cfg.SessionStore == "auto" && cfg.DatabaseURL == "" && cfg.MongoURI != "")

	switch {
	case usePostgres:
		pg, err := client.NewPostgresClient(ctx, cfg.DatabaseURL, client.PostgresOptions{
			MaxConns: cfg.DBMaxConns,
			MinConns: cfg.DBMinConns,
		})
		if err != nil {
			log.Error().Err(err).Msg("Failed to initialize Postgres client, using in-memory sessions")
			break
		}
		log.Info().Msg("Postgres client initialized")
		cleanup.add(func(context.Context) { pg.Close() })
		return repository.NewPostgresSessionRepository(pg)

	case useMongo:
		mongo, err := client.NewMongoClient(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			log.Error().Err(err).Msg("Failed to initialize MongoDB client, using in-memory sessions")
			break
		}
		log.Info().Str("database", cfg.MongoDatabase).Msg("MongoDB client initialized")
		cleanup.add(func(ctx context.Context) {
			if err := mongo.Close(ctx); err != nil {
				log.Warn().Err(err).Msg("MongoDB disconnect failed")
			}
		})
		return repository.NewMongoSessionRepository(mongo)
	}

	return repository.NewMemorySessionRepository()
}

// newAudioStore prefers Cloudflare R2 and falls back to GCS. nil means audio is not stored.
func newAudioStore(ctx context.Context, cfg *config.Config, log zerolog.Logger, cleanup *closers) service.AudioStore {
	if cfg.HasR2() {
		r2, err := client.NewCloudflareClient(ctx,
			cfg.CloudflareAccessKeyID,
			cfg.CloudflareSecretKey,
			cfg.CloudflareR2Endpoint,
			cfg.CloudflareBucketName,
			cfg.CloudflarePublicURL,
		)
		if err == nil {
			checkCtx, cancel := context.WithTimeout(ctx, cfg.BackgroundTimeout)
			err = r2.Check(checkCtx)
			cancel()
		}
		if err == nil {
			log.Info().Str("bucket", cfg.CloudflareBucketName).Msg("Cloudflare R2 client initialized")
			return r2
		}
		log.Error().Err(err).Msg("Failed to initialize Cloudflare client")
	}

	if cfg.GCSBucketName != "" {
		gcs, err := client.NewStorageClient(ctx, cfg.GCSBucketName)
		if err == nil {
			log.Info().Str("bucket", cfg.GCSBucketName).Msg("GCS client initialized")
			cleanup.add(func(context.Context) { gcs.Close() })
			return gcs
		}
		log.Error().Err(err).Msg("Failed to initialize GCS client")
	}

	log.Warn().Msg("No audio storage configured, synthesized speech is returned inline only")
	return nil
}
