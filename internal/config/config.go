package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port                  string
	AllowedOrigin         string
	DatabaseURL           string
	SQLitePath            string
	SeedFile              string
	RedisAddr             string
	RedisPassword         string
	RedisDB               int
	CartTTLMinutes        int
	AuthSecret            string
	AccessTokenTTLMinutes int
	AdminPassword         string
	ShowcaseDwell         time.Duration
	ShowcaseTick          time.Duration
	ShowcaseIntro         time.Duration
	CountdownTick         time.Duration
	Locale                string
}

// Load reads the environment, after merging a .env file from the working
// directory when one exists. Variables already set win over the file.
func Load() Config {
	_ = godotenv.Load()

	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))
	tokenTTL, err := strconv.Atoi(getEnv("ACCESS_TOKEN_TTL_MINUTES", "480"))
	if err != nil || tokenTTL < 1 {
		tokenTTL = 480
	}
	cartTTL, err := strconv.Atoi(getEnv("CART_TTL_MINUTES", "1440"))
	if err != nil || cartTTL < 0 {
		cartTTL = 1440
	}

	return Config{
		Port:                  getEnv("PORT", "8080"),
		AllowedOrigin:         getEnv("ALLOWED_ORIGIN", "http://127.0.0.1:3000"),
		DatabaseURL:           os.Getenv("DATABASE_URL"),
		SQLitePath:            strings.TrimSpace(os.Getenv("SQLITE_PATH")),
		SeedFile:              strings.TrimSpace(os.Getenv("SEED_FILE")),
		RedisAddr:             os.Getenv("REDIS_ADDR"),
		RedisPassword:         os.Getenv("REDIS_PASSWORD"),
		RedisDB:               redisDB,
		CartTTLMinutes:        cartTTL,
		AuthSecret:            strings.TrimSpace(os.Getenv("AUTH_SECRET")),
		AccessTokenTTLMinutes: tokenTTL,
		AdminPassword:         strings.TrimSpace(os.Getenv("ADMIN_PASSWORD")),
		ShowcaseDwell:         getEnvMillis("SHOWCASE_DWELL_MS", 6000),
		ShowcaseTick:          getEnvMillis("SHOWCASE_TICK_MS", 50),
		ShowcaseIntro:         getEnvMillis("SHOWCASE_INTRO_MS", 3000),
		CountdownTick:         getEnvMillis("COUNTDOWN_TICK_MS", 1000),
		Locale:                getEnv("STORE_LOCALE", "ar-DZ"),
	}
}

func (c Config) Address() string {
	return fmt.Sprintf(":%s", c.Port)
}

func (c Config) CartTTL() time.Duration {
	return time.Duration(c.CartTTLMinutes) * time.Minute
}

func getEnv(key string, fallback string) string {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	return val
}

// getEnvMillis parses a positive millisecond count, falling back on
// anything missing or invalid.
func getEnvMillis(key string, fallback int) time.Duration {
	ms, err := strconv.Atoi(getEnv(key, strconv.Itoa(fallback)))
	if err != nil || ms < 1 {
		ms = fallback
	}
	return time.Duration(ms) * time.Millisecond
}
