package main

import (
	"fmt"
	"io"
	"os"

	"rayalaseema/internal/audit"
	"rayalaseema/internal/checkout"
	"rayalaseema/internal/config"
	"rayalaseema/internal/kv"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var Version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var envFile string

	rootCmd := &cobra.Command{
		Use:           "checkout",
		Short:         "Rayalaseema Farms storefront checkout",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Optional dotenv file")

	open := func(cmd *cobra.Command) (*session, error) {
		return openSession(envFile, cmd.ErrOrStderr())
	}

	rootCmd.AddCommand(productsCmd(open))
	rootCmd.AddCommand(payCmd(open))
	rootCmd.AddCommand(statusCmd(open))
	rootCmd.AddCommand(attemptsCmd(open))
	rootCmd.AddCommand(logoutCmd(open))

	return rootCmd
}

// newLogger mirrors the server's console logger but writes warnings and up to w.
func newLogger(w io.Writer) *zap.SugaredLogger {
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder

	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encoderCfg), zapcore.AddSync(w), zapcore.WarnLevel)
	return zap.New(core).Sugar()
}

type session struct {
	cfg      config.Client
	logger   *zap.SugaredLogger
	client   *checkout.Client
	verified *checkout.VerifiedStore
	attempts *audit.Log
}

type opener func(cmd *cobra.Command) (*session, error)

func openSession(envFile string, logOut io.Writer) (*session, error) {
	cfg, err := config.LoadClient(envFile)
	if err != nil {
		return nil, err
	}
	logger := newLogger(logOut)

	state := kv.NewFallback(kv.NewFile(cfg.StateFile), logger)

	return &session{
		cfg:    cfg,
		logger: logger,
		client: checkout.NewClient(cfg.APIURL),
		verified: checkout.NewVerifiedStore(state,
			checkout.AllowUntrusted(cfg.AllowUntrusted()),
			checkout.WithStoreLogger(logger),
		),
		attempts: audit.NewLog(state, audit.WithLogger(logger)),
	}, nil
}

// machine builds a checkout over cart. Verification goes through the server; in
// development with CHECKOUT_LOCAL_VERIFY set, an unreachable server falls back
// to the shape-only local check.
func (s *session) machine(cart *checkout.Cart) *checkout.Machine {
	var verifier checkout.Verifier = s.client
	if s.cfg.AllowUntrusted() {
		verifier = &devVerifier{server: s.client, logger: s.logger}
	}
	return checkout.NewMachine(cart, verifier, s.verified, s.attempts,
		checkout.WithOrderCreator(s.client),
		checkout.WithLogger(s.logger),
	)
}
