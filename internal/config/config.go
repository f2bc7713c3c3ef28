package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

type Config struct {
	Env        string     `yaml:"env" env:"APP_ENV" env-default:"local"`
	HTTPServer HTTPServer `yaml:"http_server"`
	Postgres   Postgres   `yaml:"postgres"`
	JWT        JWT        `yaml:"jwt"`
	ES         ES         `yaml:"elasticsearch"`
	Minio      Minio      `yaml:"minio"`
	Promo      Promo      `yaml:"promo"`
	RateLimit  RateLimit  `yaml:"rate_limit"`
	Bootstrap  Bootstrap  `yaml:"bootstrap"`
}

// Bootstrap controls what serve does to the database before listening.
type Bootstrap struct {
	Migrate bool `yaml:"migrate" env:"AUTO_MIGRATE" env-default:"true"`
	Seed    bool `yaml:"seed" env:"SEED_ON_START" env-default:"true"`
}

type Promo struct {
	Code            string `yaml:"code" env:"PROMO_CODE" env-default:"BFSALE25"`
	DiscountPercent int    `yaml:"discount_percent" env:"PROMO_DISCOUNT" env-default:"50"`
}

// RateLimit bounds promo validation attempts per user.
type RateLimit struct {
	PromoPerMinute int `yaml:"promo_per_minute" env:"PROMO_RATE_PER_MINUTE" env-default:"30"`
	PromoBurst     int `yaml:"promo_burst" env:"PROMO_RATE_BURST" env-default:"10"`
}

type Minio struct {
	Endpoint  string        `yaml:"endpoint" env:"MINIO_ENDPOINT"`
	AccessKey string        `yaml:"access_key" env:"MINIO_ACCESS_KEY"`
	SecretKey string        `yaml:"secret_key" env:"MINIO_SECRET_KEY"`
	UseSSL    bool          `yaml:"use_ssl" env:"MINIO_USE_SSL"`
	Images    BucketConfig  `yaml:"images"`
	CacheTTL  time.Duration `yaml:"url_cache_ttl" env-default:"10m"`
}

type BucketConfig struct {
	Name       string        `yaml:"name" env:"MINIO_IMAGES_BUCKET" env-default:"course-images"`
	PresignTTL time.Duration `yaml:"presign_ttl" env-default:"1h"`
}

// Enabled reports whether object storage is configured.
func (m Minio) Enabled() bool {
	return m.Endpoint != ""
}

type ES struct {
	Hosts    []string `yaml:"hosts" env:"ELASTIC_HOSTS" env-separator:","`
	Index    string   `yaml:"index" env:"ELASTIC_INDEX" env-default:"courses"`
	Username string   `yaml:"username" env:"ELASTIC_USERNAME" env-default:"elastic"`
	Password string   `yaml:"password" env:"ELASTIC_PASSWORD"`
}

func (e ES) Enabled() bool {
	return len(e.Hosts) > 0
}

type JWT struct {
	SecretKey  string        `yaml:"secret_key" env:"JWT_SECRET" env-required:"true"`
	Issuer     string        `yaml:"issuer" env:"JWT_ISSUER" env-default:"coursehub"`
	AccessTTL  time.Duration `yaml:"access_token_ttl" env:"JWT_ACCESS_TTL" env-default:"15m"`
	RefreshTTL time.Duration `yaml:"refresh_token_ttl" env:"JWT_REFRESH_TTL" env-default:"720h"`
}

type Postgres struct {
	Host     string `yaml:"host" env:"DATABASE_HOST" env-default:"localhost"`
	Port     string `yaml:"port" env:"DATABASE_PORT" env-default:"5432"`
	User     string `yaml:"user" env:"DATABASE_USER" env-default:"postgres"`
	Password string `yaml:"password" env:"DATABASE_PASSWORD"`
	DBName   string `yaml:"dbname" env:"DATABASE_NAME" env-default:"coursehub"`
	SSLMode  string `yaml:"sslmode" env:"DATABASE_SSLMODE" env-default:"disable"`
}

func (p Postgres) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s", p.User, p.Password, p.Host, p.Port, p.DBName, p.SSLMode)
}

type HTTPServer struct {
	Address        string        `yaml:"address" env:"HTTP_ADDRESS" env-default:"localhost:5000"`
	Timeout        time.Duration `yaml:"timeout" env-default:"5s"`
	IdleTimeout    time.Duration `yaml:"idle_timeout" env-default:"60s"`
	AllowedOrigins []string      `yaml:"allowed_origins" env:"CORS_ORIGINS" env-separator:"," env-default:"http://localhost:3000,http://localhost:5173,http://127.0.0.1:5173"`
}

// MustLoad reads an optional .env file, then the YAML file at CONFIG_PATH
// if one is set, and finally the process environment.
func MustLoad() *Config {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Fatalf("Can not read .env file: %s", err)
	}

	var cfg Config

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			log.Fatalf("Can not read config from env: %s", err)
		}
		return &cfg
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		log.Fatalf("Config file not exist: %s", configPath)
	}

	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		log.Fatalf("Can not read config file %s", err)
	}

	return &cfg
}
