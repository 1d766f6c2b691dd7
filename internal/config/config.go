package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	HTTPPort        string
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration

	HubURL        string
	AccessToken   string
	UserID        string
	HandshakeWait time.Duration

	ReconnectInitialDelay time.Duration
	ReconnectMaxDelay     time.Duration
	ReconnectMaxRetries   int

	NotificationCapacity int
	DedupeWindow         int

	RedisAddr     string
	RedisPassword string
	CartTTL       time.Duration

	KafkaBrokers  []string
	CheckoutTopic string
	ConsumerGroup string

	LogLevel  string
	LogFormat string
}

// Load reads the environment, after merging an optional .env file.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		HTTPPort:        getEnv("HTTP_PORT", "8090"),
		RequestTimeout:  getDuration("REQUEST_TIMEOUT", 10*time.Second),
		ShutdownTimeout: getDuration("SHUTDOWN_TIMEOUT", 10*time.Second),

		HubURL:        getEnv("HUB_URL", "ws://localhost:5000/hubs/notifications"),
		AccessToken:   getEnv("ACCESS_TOKEN", ""),
		UserID:        getEnv("USER_ID", ""),
		HandshakeWait: getDuration("HUB_HANDSHAKE_TIMEOUT", 15*time.Second),

		ReconnectInitialDelay: getDuration("RECONNECT_INITIAL_DELAY", time.Second),
		ReconnectMaxDelay:     getDuration("RECONNECT_MAX_DELAY", 30*time.Second),
		ReconnectMaxRetries:   getInt("RECONNECT_MAX_RETRIES", 5),

		NotificationCapacity: getInt("NOTIFICATION_CAPACITY", 50),
		DedupeWindow:         getInt("NOTIFICATION_DEDUPE_WINDOW", 100),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		CartTTL:       getDuration("CART_TTL", 12*time.Hour),

		KafkaBrokers:  getList("KAFKA_BROKERS"),
		CheckoutTopic: getEnv("CHECKOUT_TOPIC", "checkout-outbox"),
		ConsumerGroup: getEnv("CHECKOUT_CONSUMER_GROUP", "gym-client"),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getInt(key string, defaultValue int) int {
	if value, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if value, err := time.ParseDuration(os.Getenv(key)); err == nil {
		return value
	}
	return defaultValue
}

func getList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
