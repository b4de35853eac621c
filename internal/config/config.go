package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// Configはアプリ全体の設定
type Config struct {
	Port  string // サーバーポート（8080）
	GoEnv string // dev/prod

	LogLevel string // debug/info/warn/error

	DatabaseURL      string // 指定があれば最優先
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresHost     string
	PostgresPort     int
	PostgresSSLMode  string

	NonceSecret  string        // nonce(JWT)署名シークレット
	NonceTTL     time.Duration // nonceの有効期限
	AdminKeyHash string        // bcrypt。空なら管理APIは無効
	CookieSecure bool

	RabbitMQURL string // 空ならブロードキャストしない

	TransientStore    string // memory/db
	TransientCapacity int

	CurrencySymbol string

	// settingsテーブルが空のときの初期値
	Defaults SettingsDefaults
}

// 管理画面の設定の初期値
type SettingsDefaults struct {
	ShippingThreshold  decimal.Decimal
	ShippingBarEnabled bool
	CrossSellsEnabled  bool
	CrossSellsLimit    int
	AutoOpen           bool
}

const (
	EnvDev  = "dev"
	EnvProd = "prod"

	TransientStoreMemory = "memory"
	TransientStoreDB     = "db"
)

// Loadは.envと環境変数から読む。.envが無くてもエラーにしない。
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	return FromEnv()
}

// FromEnvは環境変数だけから読む（テスト用）。
func FromEnv() (Config, error) {
	pgPort, err := envInt("POSTGRES_PORT", 5432)
	if err != nil {
		return Config{}, err
	}
	capacity, err := envInt("TRANSIENT_CAPACITY", 10000)
	if err != nil {
		return Config{}, err
	}
	limit, err := envInt("CROSS_SELLS_LIMIT", 6)
	if err != nil {
		return Config{}, err
	}
	nonceTTL, err := envDuration("NONCE_TTL", 12*time.Hour)
	if err != nil {
		return Config{}, err
	}
	threshold, err := envDecimal("SHIPPING_THRESHOLD", decimal.NewFromInt(50))
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		Port:     getenv("PORT", "8080"),
		GoEnv:    getenv("GO_ENV", EnvDev),
		LogLevel: getenv("LOG_LEVEL", "info"),

		DatabaseURL:      os.Getenv("DATABASE_URL"),
		PostgresUser:     getenv("POSTGRES_USER", "postgres"),
		PostgresPassword: getenv("POSTGRES_PASSWORD", "postgres"),
		PostgresDB:       getenv("POSTGRES_DB", "sidecart"),
		PostgresHost:     getenv("POSTGRES_HOST", "localhost"),
		PostgresPort:     pgPort,
		PostgresSSLMode:  getenv("POSTGRES_SSLMODE", "disable"),

		NonceSecret:  os.Getenv("NONCE_SECRET"),
		NonceTTL:     nonceTTL,
		AdminKeyHash: os.Getenv("ADMIN_KEY_HASH"),
		CookieSecure: envBool("COOKIE_SECURE", false),

		RabbitMQURL: os.Getenv("RABBITMQ_URL"),

		TransientStore:    strings.ToLower(getenv("TRANSIENT_STORE", TransientStoreMemory)),
		TransientCapacity: capacity,

		CurrencySymbol: getenv("CURRENCY_SYMBOL", "$"),

		Defaults: SettingsDefaults{
			ShippingThreshold:  threshold,
			ShippingBarEnabled: envBool("SHIPPING_BAR_ENABLED", true),
			CrossSellsEnabled:  envBool("CROSS_SELLS_ENABLED", true),
			CrossSellsLimit:    limit,
			AutoOpen:           envBool("AUTO_OPEN", true),
		},
	}

	//必須チェック
	if cfg.GoEnv != EnvDev && cfg.GoEnv != EnvProd {
		return Config{}, fmt.Errorf("GO_ENV must be %s or %s", EnvDev, EnvProd)
	}
	if cfg.NonceSecret == "" {
		if cfg.GoEnv == EnvProd {
			return Config{}, fmt.Errorf("NONCE_SECRET is required")
		}
		cfg.NonceSecret = "dev_secret_change_me"
	}
	if cfg.NonceTTL <= 0 {
		return Config{}, fmt.Errorf("NONCE_TTL must be positive")
	}
	if cfg.TransientStore != TransientStoreMemory && cfg.TransientStore != TransientStoreDB {
		return Config{}, fmt.Errorf("TRANSIENT_STORE must be %s or %s", TransientStoreMemory, TransientStoreDB)
	}
	if cfg.TransientCapacity < 1 {
		return Config{}, fmt.Errorf("TRANSIENT_CAPACITY must be >= 1")
	}
	if cfg.Defaults.CrossSellsLimit < 0 {
		return Config{}, fmt.Errorf("CROSS_SELLS_LIMIT must be >= 0")
	}
	if cfg.Defaults.ShippingThreshold.IsNegative() {
		return Config{}, fmt.Errorf("SHIPPING_THRESHOLD must be >= 0")
	}

	return cfg, nil
}

// DSNはgorm(postgres)用の接続文字列
func (c Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.PostgresHost, c.PostgresPort, c.PostgresUser, c.PostgresPassword, c.PostgresDB, c.PostgresSSLMode,
	)
}

// Addrは":8080"形式
func (c Config) Addr() string {
	if strings.HasPrefix(c.Port, ":") {
		return c.Port
	}
	return ":" + c.Port
}

func (c Config) IsProd() bool {
	return c.GoEnv == EnvProd
}

func getenv(key string, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func envInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be number: %w", key, err)
	}
	return i, nil
}

func envDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be duration: %w", key, err)
	}
	return d, nil
}

func envDecimal(key string, def decimal.Decimal) (decimal.Decimal, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := decimal.NewFromString(v)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%s must be decimal: %w", key, err)
	}
	return d, nil
}

func envBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	switch v {
	case "1", "true", "TRUE", "True":
		return true
	case "0", "false", "FALSE", "False":
		return false
	default:
		return def
	}
}
