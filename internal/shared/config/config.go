package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	Auth       AuthConfig
	OAuth      OAuthConfig
	Frontend   FrontendConfig
	Logging    LoggingConfig
	RateLimit  RateLimitConfig
	Bitcoin    BitcoinConfig
	Generation GenerationConfig
	Evolution  EvolutionConfig
	Admin      AdminConfig
}

type ServerConfig struct {
	Port         string
	URL          string
	Environment  string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type DatabaseConfig struct {
	Host            string
	Port            string
	User            string
	Password        string
	Name            string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type RedisConfig struct {
	Enabled  bool
	URL      string
	Host     string
	Port     string
	Password string
	DB       int
}

type AuthConfig struct {
	JWTSecret       string
	TokenExpiration time.Duration
	CookieSecure    bool
	CookieSameSite  string
}

type OAuthConfig struct {
	Google OAuthProviderConfig
	GitHub OAuthProviderConfig
}

type OAuthProviderConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	Scopes       []string
}

type FrontendConfig struct {
	URL       string
	CORSDebug bool
}

type LoggingConfig struct {
	Level      string
	JSONFormat bool
}

type RateLimitConfig struct {
	Enabled           bool
	RequestsPerSecond float64
	BurstSize         int
}

// BitcoinConfig drives the external block fetch collaborator.
type BitcoinConfig struct {
	APIURL       string
	FetchTimeout time.Duration
	MaxRetries   int
	RetryBackoff time.Duration
	CacheTTL     time.Duration
}

// GenerationConfig holds the creature-level generation knobs. The
// allocation constants themselves live with the particle package.
type GenerationConfig struct {
	TotalParticles int
	ContentDir     string
}

// EvolutionConfig is the mutation tuning surface consumed, not owned,
// by the evolution engine.
type EvolutionConfig struct {
	MutationIntensity       float64
	MaxMutationsPerEvent    int
	EnableExoticMutations   bool
	EnableSubclassMutations bool
}

type AdminConfig struct {
	Email       string
	Username    string
	DisplayName string
}

var GlobalConfig *Config

func Init() error {
	if err := godotenv.Load(); err != nil {
		fmt.Println("No .env file found, using system environment variables")
	}

	config := load()
	if err := config.validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	GlobalConfig = config
	return nil
}

func load() *Config {
	return &Config{
		Server:     loadServerConfig(),
		Database:   loadDatabaseConfig(),
		Redis:      loadRedisConfig(),
		Auth:       loadAuthConfig(),
		OAuth:      loadOAuthConfig(),
		Frontend:   loadFrontendConfig(),
		Logging:    loadLoggingConfig(),
		RateLimit:  loadRateLimitConfig(),
		Bitcoin:    loadBitcoinConfig(),
		Generation: loadGenerationConfig(),
		Evolution:  loadEvolutionConfig(),
		Admin:      loadAdminConfig(),
	}
}

func loadServerConfig() ServerConfig {
	return ServerConfig{
		Port:         getEnv("SERVER_PORT", "8080"),
		URL:          getEnv("SERVER_URL", "http://localhost:8080"),
		Environment:  getEnv("ENVIRONMENT", "development"),
		ReadTimeout:  getEnvSeconds("SERVER_READ_TIMEOUT_SECONDS", 15),
		WriteTimeout: getEnvSeconds("SERVER_WRITE_TIMEOUT_SECONDS", 15),
		IdleTimeout:  getEnvSeconds("SERVER_IDLE_TIMEOUT_SECONDS", 60),
	}
}

func loadDatabaseConfig() DatabaseConfig {
	return DatabaseConfig{
		Host:            getEnv("DB_HOST", "localhost"),
		Port:            getEnv("DB_PORT", "5432"),
		User:            getEnv("DB_USER", "postgres"),
		Password:        getEnv("DB_PASSWORD", "postgres"),
		Name:            getEnv("DB_NAME", "creatures"),
		SSLMode:         getEnv("DB_SSLMODE", "disable"),
		MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 25),
		MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 5),
		ConnMaxLifetime: time.Duration(getEnvInt("DB_CONN_MAX_LIFETIME_MINUTES", 5)) * time.Minute,
	}
}

func loadRedisConfig() RedisConfig {
	return RedisConfig{
		Enabled:  getEnv("REDIS_ENABLED", "true") == "true",
		URL:      getEnv("REDIS_URL", ""),
		Host:     getEnv("REDIS_HOST", "localhost"),
		Port:     getEnv("REDIS_PORT", "6379"),
		Password: getEnv("REDIS_PASSWORD", ""),
		DB:       getEnvInt("REDIS_DB", 0),
	}
}

func loadAuthConfig() AuthConfig {
	environment := getEnv("ENVIRONMENT", "development")

	return AuthConfig{
		JWTSecret:       getEnv("JWT_SECRET", ""),
		TokenExpiration: time.Duration(getEnvInt("JWT_EXPIRATION_HOURS", 24)) * time.Hour,
		CookieSecure:    environment == "production",
		CookieSameSite:  getEnv("COOKIE_SAME_SITE", "lax"),
	}
}

func loadOAuthConfig() OAuthConfig {
	serverURL := getEnv("SERVER_URL", "http://localhost:8080")

	return OAuthConfig{
		Google: OAuthProviderConfig{
			ClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
			ClientSecret: getEnv("GOOGLE_CLIENT_SECRET", ""),
			RedirectURL:  serverURL + "/auth/google/callback",
			Scopes:       []string{"openid", "profile", "email"},
		},
		GitHub: OAuthProviderConfig{
			ClientID:     getEnv("GITHUB_CLIENT_ID", ""),
			ClientSecret: getEnv("GITHUB_CLIENT_SECRET", ""),
			RedirectURL:  serverURL + "/auth/github/callback",
			Scopes:       []string{"user:email"},
		},
	}
}

func loadFrontendConfig() FrontendConfig {
	return FrontendConfig{
		URL:       getEnv("FRONTEND_URL", "http://localhost:3000"),
		CORSDebug: getEnv("CORS_DEBUG", "") == "true",
	}
}

func loadLoggingConfig() LoggingConfig {
	environment := getEnv("ENVIRONMENT", "development")

	return LoggingConfig{
		Level:      getEnv("LOG_LEVEL", "debug"),
		JSONFormat: environment == "production",
	}
}

func loadRateLimitConfig() RateLimitConfig {
	requestsPerSecond, _ := strconv.ParseFloat(getEnv("RATE_LIMIT_REQUESTS_PER_SECOND", "10"), 64)

	return RateLimitConfig{
		Enabled:           getEnv("RATE_LIMIT_ENABLED", "true") == "true",
		RequestsPerSecond: requestsPerSecond,
		BurstSize:         getEnvInt("RATE_LIMIT_BURST_SIZE", 20),
	}
}

func loadBitcoinConfig() BitcoinConfig {
	return BitcoinConfig{
		APIURL:       getEnv("BITCOIN_API_URL", "https://blockstream.info/api"),
		FetchTimeout: getEnvSeconds("BITCOIN_FETCH_TIMEOUT_SECONDS", 10),
		MaxRetries:   getEnvInt("BITCOIN_MAX_RETRIES", 3),
		RetryBackoff: getEnvSeconds("BITCOIN_RETRY_BACKOFF_SECONDS", 1),
		CacheTTL:     getEnvSeconds("BITCOIN_CACHE_TTL_SECONDS", 60),
	}
}

func loadGenerationConfig() GenerationConfig {
	return GenerationConfig{
		TotalParticles: getEnvInt("GENERATION_TOTAL_PARTICLES", 500),
		ContentDir:     getEnv("GENERATION_CONTENT_DIR", "content"),
	}
}

func loadEvolutionConfig() EvolutionConfig {
	intensity, _ := strconv.ParseFloat(getEnv("EVOLUTION_MUTATION_INTENSITY", "1.0"), 64)

	return EvolutionConfig{
		MutationIntensity:       intensity,
		MaxMutationsPerEvent:    getEnvInt("EVOLUTION_MAX_MUTATIONS_PER_EVENT", 3),
		EnableExoticMutations:   getEnv("EVOLUTION_ENABLE_EXOTIC", "false") == "true",
		EnableSubclassMutations: getEnv("EVOLUTION_ENABLE_SUBCLASS", "true") == "true",
	}
}

func loadAdminConfig() AdminConfig {
	return AdminConfig{
		Email:       getEnv("ADMIN_EMAIL", "admin@localhost"),
		Username:    getEnv("ADMIN_USERNAME", "admin"),
		DisplayName: getEnv("ADMIN_DISPLAY_NAME", "Admin"),
	}
}

func (c *Config) validate() error {
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if len(c.Auth.JWTSecret) < 32 {
		return fmt.Errorf("JWT_SECRET must be at least 32 characters long")
	}
	if c.Server.Port == "" {
		return fmt.Errorf("SERVER_PORT is required")
	}
	if c.Server.URL == "" {
		return fmt.Errorf("SERVER_URL is required")
	}
	if c.Database.Host == "" {
		return fmt.Errorf("DB_HOST is required")
	}
	if c.Database.Name == "" {
		return fmt.Errorf("DB_NAME is required")
	}
	if c.Bitcoin.APIURL == "" {
		return fmt.Errorf("BITCOIN_API_URL is required")
	}
	if c.Generation.TotalParticles < 200 {
		return fmt.Errorf("GENERATION_TOTAL_PARTICLES must be at least 200")
	}
	if c.Evolution.MaxMutationsPerEvent < 1 {
		return fmt.Errorf("EVOLUTION_MAX_MUTATIONS_PER_EVENT must be at least 1")
	}
	return nil
}

func (c *Config) GoogleOAuthConfigured() bool {
	return c.OAuth.Google.ClientID != "" && c.OAuth.Google.ClientSecret != ""
}

func (c *Config) GitHubOAuthConfigured() bool {
	return c.OAuth.GitHub.ClientID != "" && c.OAuth.GitHub.ClientSecret != ""
}

func (c *Config) ConnectionString() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvSeconds(key string, fallback int) time.Duration {
	return time.Duration(getEnvInt(key, fallback)) * time.Second
}
