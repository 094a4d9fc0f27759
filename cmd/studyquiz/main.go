package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"golang.org/x/term"

	"studyquiz/internal/api"
	"studyquiz/internal/cli"
	"studyquiz/internal/config"
	"studyquiz/internal/history"
	"studyquiz/internal/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run() error {
	setID := flag.Int64("set", 0, "quiz set ID to study")
	showHistory := flag.Bool("history", false, "print recent session results and exit")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var store *history.Store
	if cfg.HistoryDB != "" {
		store, err = history.NewStore(cfg.HistoryDB)
		if err != nil {
			return fmt.Errorf("open history database: %w", err)
		}
		defer store.Close()
	}

	if *showHistory {
		return printHistory(ctx, store)
	}

	if *setID <= 0 {
		return fmt.Errorf("a quiz set is required, pass -set <id>")
	}

	token := cfg.APIToken
	if token == "" {
		token, err = promptToken()
		if err != nil {
			return err
		}
	}

	client := api.NewClient(cfg.ServerURL, token, &http.Client{Timeout: cfg.HTTPTimeout}, log)

	return cli.Run(ctx, os.Stdin, os.Stdout, *setID, cli.Deps{
		Client:        client,
		History:       store,
		Log:           log,
		FastAdvance:   cfg.FastAdvance(),
		RemoteAdvance: cfg.RemoteAdvance(),
	})
}

// promptToken reads the API token without echo when stdin is a terminal.
// Non-interactive runs proceed without a token; the backend decides whether
// anonymous access is allowed.
func promptToken() (string, error) {
	if !term.IsTerminal(int(syscall.Stdin)) {
		return "", nil
	}

	fmt.Fprint(os.Stderr, "API token: ")
	raw, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("read token: %w", err)
	}
	return strings.TrimSpace(string(raw)), nil
}

func printHistory(ctx context.Context, store *history.Store) error {
	if store == nil {
		return fmt.Errorf("no history database configured, set QUIZ_HISTORY_DB")
	}

	outcomes, err := store.ListRecent(ctx, 20)
	if err != nil {
		return err
	}
	if len(outcomes) == 0 {
		fmt.Println("No recorded sessions yet.")
		return nil
	}

	for _, outcome := range outcomes {
		status := "completed"
		if !outcome.Completed {
			status = "abandoned"
		}
		fmt.Printf(
			"%s  set %d  %s  %d/%d correct  %d wrong  (%s)\n",
			outcome.FinishedAt.Local().Format("2006-01-02 15:04"),
			outcome.SetID,
			outcome.Mode,
			outcome.Score,
			outcome.Total,
			outcome.WrongCount,
			status,
		)
	}
	return nil
}
