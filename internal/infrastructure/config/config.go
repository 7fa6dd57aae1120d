// internal/infrastructure/config/config.go
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	// App
	AppVersion string
	Debug      bool

	// Server
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	// MongoDB
	MongoURI      string
	MongoDB       string
	MongoUser     string
	MongoPassword string

	// PostgreSQL
	PostgresURI string

	// Redis
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Engine
	Engine   string
	AIDelay  time.Duration
	DebugAI  bool
	MaxRound int

	// OpenAI
	OpenAIAPIKey          string
	OpenAIModel           string
	OpenAIMaxOutputTokens int64
	AssistantIDs          map[string]string

	// Vertex AI / Gemini
	VertexProject         string
	VertexLocation        string
	VertexModel           string
	GeminiAPIKey          string
	VertexTemperature     float64
	VertexMaxOutputTokens int

	// Maps
	MapsAPIKey  string
	MapsBaseURL string

	// Charter backend
	BackendURL          string
	BackendTokenURL     string
	BackendClientID     string
	BackendClientSecret string
	BackendScopes       []string

	// Auth
	JWTSecret string

	// Queue
	MaxConcurrentTurns int
	StaleTurnAfter     time.Duration
	SweepInterval      time.Duration
}

// assistantKeys are the specialists that may be bound to remote OpenAI assistants
var assistantKeys = []string{"thomas", "waypoints", "flight", "flightOptions", "catering", "transfer"}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	// Load .env file if it exists
	godotenv.Load()

	config := &Config{
		AppVersion:   getEnv("APP_VERSION", "1.0.0"),
		Debug:        getEnvAsBool("DEBUG", false),
		Port:         getEnv("PORT", "8080"),
		ReadTimeout:  time.Duration(getEnvAsInt("READ_TIMEOUT", 30)) * time.Second,
		WriteTimeout: time.Duration(getEnvAsInt("WRITE_TIMEOUT", 30)) * time.Second,

		MongoURI:      getEnv("MONGODB_DSN", "mongodb://localhost:27017"),
		MongoDB:       getEnv("MONGO_DB", "concierge"),
		MongoUser:     getEnv("MONGO_USER", ""),
		MongoPassword: getEnv("MONGO_PASSWORD", ""),

		PostgresURI: getEnv("POSTGRES_DSN", ""),

		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvAsInt("REDIS_DB", 0),

		Engine:   strings.ToLower(getEnv("ENGINE", "vertexai")),
		AIDelay:  time.Duration(getEnvAsInt("AI_DELAY", 0)) * time.Millisecond,
		DebugAI:  getEnvAsBool("DEBUG_AI", false),
		MaxRound: getEnvAsInt("AI_MAX_ROUNDS", 0),

		OpenAIAPIKey:          getEnv("OPENAI_API_KEY", ""),
		OpenAIModel:           getEnv("OPENAI_MODEL", "gpt-4o"),
		OpenAIMaxOutputTokens: int64(getEnvAsInt("OPENAI_MAX_OUTPUT_TOKENS", 4096)),
		AssistantIDs:          make(map[string]string),

		VertexProject:         getEnv("VERTEX_AI_PROJECT", ""),
		VertexLocation:        getEnv("VERTEX_AI_LOCATION", "us-central1"),
		VertexModel:           getEnv("VERTEX_AI_MODEL", "gemini-1.5-pro"),
		GeminiAPIKey:          getEnv("GEMINI_API_KEY", ""),
		VertexTemperature:     getEnvAsFloat("VERTEX_AI_TEMPERATURE", 0),
		VertexMaxOutputTokens: getEnvAsInt("VERTEX_AI_MAX_OUTPUT_TOKENS", 8192),

		MapsAPIKey:  getEnv("MAPS_API_KEY", ""),
		MapsBaseURL: getEnv("MAPS_BASE_URL", ""),

		BackendURL:          getEnv("BACKEND_URL", ""),
		BackendTokenURL:     getEnv("BACKEND_TOKEN_URL", ""),
		BackendClientID:     getEnv("BACKEND_CLIENT_ID", ""),
		BackendClientSecret: getEnv("BACKEND_CLIENT_SECRET", ""),
		BackendScopes:       getEnvAsList("BACKEND_SCOPES"),

		JWTSecret: getEnv("JWT_SECRET", ""),

		MaxConcurrentTurns: getEnvAsInt("QUEUE_MAX_CONCURRENT", 0),
		StaleTurnAfter:     time.Duration(getEnvAsInt("QUEUE_STALE_AFTER", 0)) * time.Second,
		SweepInterval:      time.Duration(getEnvAsInt("QUEUE_SWEEP_INTERVAL", 0)) * time.Second,
	}

	for _, key := range assistantKeys {
		if id := getEnv("ASSISTANT_ID_"+strings.ToUpper(key), ""); id != "" {
			config.AssistantIDs[key] = id
		}
	}

	return config, nil
}

// Helper functions to get environment variables
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsList(key string) []string {
	var values []string
	for _, v := range strings.Split(getEnv(key, ""), ",") {
		if v = strings.TrimSpace(v); v != "" {
			values = append(values, v)
		}
	}
	return values
}
