package main

import (
	"context"
	"expvar"
	"fmt"
	"log"
	"os"
	"runtime"

	"rayalaseema/internal/config"
	"rayalaseema/internal/db"
	"rayalaseema/internal/domain/gatewayorders"
	"rayalaseema/internal/kv"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger creates a console zap logger with coloured levels.
func NewLogger() (*zap.SugaredLogger, error) {
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder

	consoleEncoder := zapcore.NewConsoleEncoder(encoderCfg)
	core := zapcore.NewCore(consoleEncoder, zapcore.AddSync(os.Stdout), zapcore.InfoLevel)

	return zap.New(core).Sugar(), nil
}

var version = "0.3.0"

type storage struct {
	kv     kv.Store
	orders gatewayorders.Store
	close  func()
}

// openStorage uses Postgres when DB_ADDR is set and process memory otherwise.
func openStorage(ctx context.Context, cfg config.DB, logger *zap.SugaredLogger) (storage, error) {
	if cfg.Addr == "" {
		logger.Warn("DB_ADDR not set, using in-memory storage")
		return storage{kv: kv.NewMemory(), orders: gatewayorders.NewMemory(), close: func() {}}, nil
	}

	pool, err := db.New(ctx, db.Config{Addr: cfg.Addr, MaxConns: cfg.MaxConns, MaxIdleTime: cfg.MaxIdleTime})
	if err != nil {
		return storage{}, err
	}

	kvStore := kv.NewPostgres(pool)
	if err := kvStore.EnsureSchema(ctx); err != nil {
		pool.Close()
		return storage{}, fmt.Errorf("kv schema: %w", err)
	}
	orders := gatewayorders.NewRepository(pool)
	if err := orders.EnsureSchema(ctx); err != nil {
		pool.Close()
		return storage{}, fmt.Errorf("gateway orders schema: %w", err)
	}

	expvar.Publish("database", expvar.Func(func() any {
		s := pool.Stat()
		return map[string]int64{
			"total_conns":    int64(s.TotalConns()),
			"idle_conns":     int64(s.IdleConns()),
			"acquired_conns": int64(s.AcquiredConns()),
			"acquire_count":  s.AcquireCount(),
		}
	}))
	logger.Info("database connection pool established")

	return storage{kv: kvStore, orders: orders, close: pool.Close}, nil
}

func main() {
	cfg, err := config.LoadServer()
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	logger, err := NewLogger()
	if err != nil {
		fmt.Println("Error creating logger:", err)
		return
	}
	defer logger.Sync()

	st, err := openStorage(context.Background(), cfg.DB, logger)
	if err != nil {
		logger.Fatal(err)
	}
	defer st.close()

	app, err := newApplication(cfg, logger, st.kv, st.orders)
	if err != nil {
		logger.Fatal(err)
	}

	// Metrics collected at /v1/debug/vars
	expvar.NewString("version").Set(version)
	expvar.Publish("goroutines", expvar.Func(func() any {
		return runtime.NumGoroutine()
	}))

	mux := app.mount()

	logger.Fatal(app.run(mux))
}
