package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"servecart/pricing"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
)

type Config struct {
	Port string

	MongoURI      string
	MongoDB       string
	RedisAddr     string
	RedisPassword string
	MenuCacheTTL  time.Duration

	CatalogSeedFile string
	MenuPicDir      string

	JWTSecret         string
	AdminUsername     string
	AdminPasswordHash string

	SiteName       string
	CurrencySymbol string
	CurrencyCode   string
	MessengerURL   string

	VariationPolicy pricing.VariationPolicy
	CartSessionTTL  time.Duration

	RateLimitRPS   int
	RateLimitBurst int

	LogLevel    string
	LogFormat   string
	CORSOrigins []string
}

// Load reads .env when present and then the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	policy, err := pricing.ParseVariationPolicy(getEnv("VARIATION_POLICY", "first"))
	if err != nil {
		return nil, errors.Wrap(err, "VARIATION_POLICY")
	}

	port := getEnv("PORT", ":8080")
	if port[0] != ':' {
		port = ":" + port
	}

	return &Config{
		Port:              port,
		MongoURI:          getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:           getEnv("MONGO_DB", "servecart"),
		RedisAddr:         getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:     getEnv("REDIS_PASSWORD", ""),
		MenuCacheTTL:      getEnvAsDuration("MENU_CACHE_TTL", 5*time.Minute),
		CatalogSeedFile:   getEnv("CATALOG_SEED_FILE", ""),
		MenuPicDir:        getEnv("MENU_PIC_DIR", "static/menupic"),
		JWTSecret:         getEnv("JWT_SECRET", "change-me"),
		AdminUsername:     getEnv("ADMIN_USERNAME", "admin"),
		AdminPasswordHash: getEnv("ADMIN_PASSWORD_HASH", ""),
		SiteName:          getEnv("SITE_NAME", "The Serve"),
		CurrencySymbol:    getEnv("CURRENCY_SYMBOL", "₱"),
		CurrencyCode:      getEnv("CURRENCY_CODE", "PHP"),
		MessengerURL:      getEnv("MESSENGER_URL", "https://m.me/theservebrewandbake"),
		VariationPolicy:   policy,
		CartSessionTTL:    getEnvAsDuration("CART_SESSION_TTL", 2*time.Hour),
		RateLimitRPS:      getEnvAsInt("RATE_LIMIT_RPS", 5),
		RateLimitBurst:    getEnvAsInt("RATE_LIMIT_BURST", 10),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		LogFormat:         getEnv("LOG_FORMAT", "json"),
		CORSOrigins:       getEnvAsList("CORS_ORIGINS", []string{"*"}),
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsDuration accepts Go durations ("90s") or plain seconds ("90").
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(valueStr); err == nil {
		return d
	}
	if secs := getEnvAsInt(key, -1); secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(valueStr, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
