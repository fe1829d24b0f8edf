package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/erazemk/izposoja/internal/api"
	"github.com/erazemk/izposoja/internal/clock"
	"github.com/erazemk/izposoja/internal/db"
	"github.com/erazemk/izposoja/internal/model"
	"github.com/erazemk/izposoja/internal/notify"
	"github.com/erazemk/izposoja/internal/rental"
	"github.com/erazemk/izposoja/internal/store"
)

func main() {
	fs := flag.NewFlagSet("izposoja", flag.ContinueOnError)

	var dbPath string
	fs.StringVar(&dbPath, "db", "izposoja.sqlite3", "")
	fs.StringVar(&dbPath, "d", "izposoja.sqlite3", "")

	var addr string
	fs.StringVar(&addr, "addr", ":8080", "")
	fs.StringVar(&addr, "a", ":8080", "")

	var logPath string
	fs.StringVar(&logPath, "log", "", "")
	fs.StringVar(&logPath, "l", "", "")

	var sweepInterval time.Duration
	fs.DurationVar(&sweepInterval, "sweep", rental.DefaultSweepInterval, "")
	fs.DurationVar(&sweepInterval, "s", rental.DefaultSweepInterval, "")

	var loanDays int
	fs.IntVar(&loanDays, "loan", 14, "")

	var fromAddr string
	fs.StringVar(&fromAddr, "from", "noreply@izposoja.local", "")

	fs.Usage = func() {
		fmt.Fprint(os.Stdout, `Usage: izposoja [flags]

Flags:
  -d, -db <path>          SQLite database path (default: izposoja.sqlite3)
  -a, -addr <host:port>   listen address (default: :8080)
  -l, -log <path>         log file path (default: no file, stdout/stderr only)
  -s, -sweep <duration>   overdue sweep interval (default: 1h)
  -loan <days>            loan period in days (default: 14)
  -from <address>         sender address for notices (default: noreply@izposoja.local)
  -h, -help               show this help and exit

Environment:
  SENDGRID_API_KEY        send notices through SendGrid; without it notices are only logged
`)
	}

	if err := fs.Parse(os.Args[1:]); err != nil {
		if err == flag.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	if fs.NArg() > 0 {
		fmt.Fprintf(os.Stderr, "unexpected argument: %s\n", fs.Arg(0))
		fs.Usage()
		os.Exit(1)
	}

	if sweepInterval <= 0 || loanDays <= 0 {
		fmt.Fprintln(os.Stderr, "sweep interval and loan period must be positive")
		os.Exit(1)
	}
	if err := model.ValidateEmail(fromAddr); err != nil {
		fmt.Fprintf(os.Stderr, "invalid -from: %v\n", err)
		os.Exit(1)
	}

	closeLog, err := setupLogger(logPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	defer closeLog()

	if err := run(dbPath, addr, fromAddr, sweepInterval, time.Duration(loanDays)*24*time.Hour); err != nil {
		slog.Error("izposoja stopped", "error", err)
		closeLog()
		os.Exit(1)
	}
}

func run(dbPath, addr, fromAddr string, sweepInterval, loanPeriod time.Duration) error {
	database, err := db.Open(dbPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer database.Close()

	if err := db.EnsureSchema(database); err != nil {
		return fmt.Errorf("ensuring database schema: %w", err)
	}
	slog.Info("database ready", "path", dbPath)

	clk := clock.NewSystem()
	items := store.NewItems(database)
	users := store.NewUsers(database)

	var transport notify.Notifier = notify.Log{}
	if key := os.Getenv("SENDGRID_API_KEY"); key != "" {
		transport = notify.NewSendGrid(key, fromAddr, "Izposoja")
		slog.Info("sending notices through SendGrid", "from", fromAddr)
	} else {
		slog.Info("SENDGRID_API_KEY not set, notices are only logged")
	}
	notifier := notify.NewJournal(transport, store.NewNotifications(database), clk)

	coord := rental.NewCoordinator(rental.Stores{
		Items:   items,
		Users:   users,
		Rentals: store.NewRentals(database),
		Waiting: store.NewWaitingList(database),
		Tx:      store.Transactor(database),
	}, notifier, clk, rental.WithLoanPeriod(loanPeriod))
	sweep := rental.NewSweep(coord, items, users, notifier, sweepInterval)

	server := &http.Server{
		Addr:              addr,
		Handler:           api.NewRouter(database, coord, sweep),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		slog.Info("server started", "addr", addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serving http: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		return sweep.Run(ctx)
	})

	g.Go(func() error {
		<-ctx.Done()
		slog.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("server forced to shutdown", "error", err)
		}
		return nil
	})

	err = g.Wait()
	slog.Info("server stopped, closing database")
	return err
}
