// Command nakula is a trading terminal for the Binance USDⓈ-M futures
// testnet. It exposes balance, price, and order operations as subcommands
// and can serve the same operations as a web dashboard.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"nakula/internal/config"
	"nakula/pkg/exchange/binance"
)

const usage = `Usage: nakula <command> [flags]

Commands:
  balance               show the futures account balance
  price SYMBOL          show the latest price for a symbol
  order                 place an order (see 'nakula order -h')
  open-orders [SYMBOL]  list open orders, optionally for one symbol
  cancel                cancel an order (see 'nakula cancel -h')
  serve                 serve the web dashboard

Configuration comes from the environment (or a .env file):
  BINANCE_TESTNET_API_KEY, BINANCE_TESTNET_API_SECRET (required),
  BINANCE_SANDBOX, HTTP_TIMEOUT, HTTP_MAX_RETRIES, LOG_LEVEL, LOG_FILE,
  LISTEN_ADDR.
`

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	if len(args) == 0 || args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		fmt.Fprint(os.Stderr, usage)
		return nil
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger, closeLogger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer closeLogger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := binance.New(cfg.ClientConfig(), binance.WithLogger(logger))
	if err != nil {
		return fmt.Errorf("create exchange client: %w", err)
	}
	defer client.Close()

	if err := client.Ping(ctx); err != nil {
		return fmt.Errorf("exchange unreachable: %w", err)
	}

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "balance":
		return cmdBalance(ctx, client)
	case "price":
		return cmdPrice(ctx, client, rest)
	case "order":
		return cmdOrder(ctx, client, rest)
	case "open-orders":
		return cmdOpenOrders(ctx, client, rest)
	case "cancel":
		return cmdCancel(ctx, client, rest)
	case "serve":
		return cmdServe(ctx, client, cfg, logger)
	default:
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("unknown command: %s", cmd)
	}
}

// newLogger builds the process logger: human-readable console output plus
// an optional append-only log file receiving the same lines.
func newLogger(cfg *config.Config) (zerolog.Logger, func(), error) {
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Log.Level))
	if err != nil {
		return zerolog.Nop(), nil, fmt.Errorf("parse log level: %w", err)
	}

	writers := []io.Writer{zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}}
	closer := func() {}

	if cfg.Log.File != "" {
		f, err := os.OpenFile(cfg.Log.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return zerolog.Nop(), nil, fmt.Errorf("open log file: %w", err)
		}
		writers = append(writers, f)
		closer = func() { _ = f.Close() }
	}

	logger := zerolog.New(zerolog.MultiLevelWriter(writers...)).
		Level(level).
		With().Timestamp().
		Logger()

	return logger, closer, nil
}
