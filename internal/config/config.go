// Package config loads process configuration exactly once at startup. The result
// is a plain value handed to components; nothing re-reads the environment later.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"rayalaseema/internal/ratelimiter"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvStaging     = "staging"
	EnvProduction  = "production"
)

type Server struct {
	Addr        string `validate:"required"`
	Env         string `validate:"oneof=development staging production"`
	FrontendURL string
	ReceiptSalt string
	Razorpay    Razorpay
	DB          DB
	RateLimiter ratelimiter.Config
	Basic       BasicAuth
}

type Razorpay struct {
	KeyID     string `validate:"required"`
	KeySecret string `validate:"required"`
	APIURL    string `validate:"required,url"`
}

// DB is optional; an empty Addr means in-memory storage.
type DB struct {
	Addr        string
	MaxConns    int32 `validate:"gte=0"`
	MaxIdleTime time.Duration
}

type BasicAuth struct {
	User string
	Pass string
}

// Client is the storefront side. It never carries the gateway secret.
type Client struct {
	APIURL    string `validate:"required,url"`
	KeyID     string
	StateFile string `validate:"required"`
	Env       string `validate:"oneof=development staging production"`
	// LocalVerify enables the shape-only verification fallback. Honoured in development only.
	LocalVerify bool
}

func (c Client) AllowUntrusted() bool {
	return c.Env == EnvDevelopment && c.LocalVerify
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// loadEnvFiles reads .env files into the process environment. Missing files are fine.
func loadEnvFiles(files []string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

func newViper() *viper.Viper {
	v := viper.New()
	v.AutomaticEnv()
	return v
}

func LoadServer(envFiles ...string) (Server, error) {
	if err := loadEnvFiles(envFiles); err != nil {
		return Server{}, err
	}

	v := newViper()
	v.SetDefault("ADDR", ":8080")
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("RAZORPAY_API_URL", "https://api.razorpay.com")
	v.SetDefault("DB_MAX_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_TIME", "15m")
	v.SetDefault("RATELIMITER_REQUESTS_COUNT", 20)
	v.SetDefault("RATELIMITER_TIME_FRAME", "5s")
	v.SetDefault("RATELIMITER_ENABLED", true)
	v.SetDefault("RECEIPT_SALT", "rayalaseema")

	cfg := Server{
		Addr:        v.GetString("ADDR"),
		Env:         v.GetString("ENV"),
		FrontendURL: v.GetString("FRONTEND_URL"),
		ReceiptSalt: v.GetString("RECEIPT_SALT"),
		Razorpay: Razorpay{
			KeyID:     v.GetString("RAZORPAY_KEY_ID"),
			KeySecret: v.GetString("RAZORPAY_KEY_SECRET"),
			APIURL:    v.GetString("RAZORPAY_API_URL"),
		},
		DB: DB{
			Addr:        v.GetString("DB_ADDR"),
			MaxConns:    v.GetInt32("DB_MAX_CONNS"),
			MaxIdleTime: v.GetDuration("DB_MAX_IDLE_TIME"),
		},
		RateLimiter: ratelimiter.Config{
			RequestsPerTimeFrame: v.GetInt("RATELIMITER_REQUESTS_COUNT"),
			TimeFrame:            v.GetDuration("RATELIMITER_TIME_FRAME"),
			Enabled:              v.GetBool("RATELIMITER_ENABLED"),
		},
		Basic: BasicAuth{
			User: v.GetString("AUTH_BASIC_USER"),
			Pass: v.GetString("AUTH_BASIC_PASS"),
		},
	}

	if err := validate.Struct(cfg); err != nil {
		return Server{}, fmt.Errorf("invalid server config: %w", err)
	}
	if cfg.Env == EnvProduction && (cfg.Basic.User == "" || cfg.Basic.Pass == "") {
		return Server{}, fmt.Errorf("invalid server config: AUTH_BASIC_USER and AUTH_BASIC_PASS are required in production")
	}
	return cfg, nil
}

func defaultStateFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, "rayalaseema", "checkout.json")
}

func LoadClient(envFiles ...string) (Client, error) {
	if err := loadEnvFiles(envFiles); err != nil {
		return Client{}, err
	}

	v := newViper()
	v.SetDefault("CHECKOUT_API_URL", "http://localhost:8080")
	v.SetDefault("CHECKOUT_STATE_FILE", defaultStateFile())
	v.SetDefault("ENV", EnvDevelopment)

	cfg := Client{
		APIURL:      v.GetString("CHECKOUT_API_URL"),
		KeyID:       v.GetString("RAZORPAY_KEY_ID"),
		StateFile:   v.GetString("CHECKOUT_STATE_FILE"),
		Env:         v.GetString("ENV"),
		LocalVerify: v.GetBool("CHECKOUT_LOCAL_VERIFY"),
	}

	if err := validate.Struct(cfg); err != nil {
		return Client{}, fmt.Errorf("invalid client config: %w", err)
	}
	return cfg, nil
}
