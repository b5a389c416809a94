// Package cli implements the credctl operator command line.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	sqliteadapter "github.com/ericfisherdev/credtrust/internal/adapter/driven/sqlite"
	"github.com/ericfisherdev/credtrust/internal/application"
	"github.com/ericfisherdev/credtrust/internal/config"
)

// ErrNotVerified is returned by the verify command when the credential does
// not verify, so the process exits non-zero.
var ErrNotVerified = errors.New("credential did not verify")

// options holds the persistent flags shared by every subcommand.
type options struct {
	configPath string
	dbPath     string
	now        func() time.Time
}

// session is an open database with the services built on top of it.
type session struct {
	db       *sqliteadapter.DB
	store    *sqliteadapter.CredentialRepo
	counts   *sqliteadapter.VerificationCountRepo
	issuer   *application.IssuanceService
	verifier *application.VerificationService
	progress *application.ProgressService
	sweeper  *application.SweepService
	logger   *slog.Logger
}

// NewRootCommand builds the credctl command tree.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&options{now: time.Now})
}

func newRootCommand(opts *options) *cobra.Command {
	root := &cobra.Command{
		Use:           "credctl",
		Short:         "Operate a credtrust credential database",
		Long:          "credctl issues, revokes, and verifies credentials and reports learner progress against a local credtrust SQLite database.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "YAML config file (defaults to $CREDTRUST_CONFIG)")
	root.PersistentFlags().StringVar(&opts.dbPath, "db", "", "SQLite database path (overrides db_path)")

	root.AddCommand(
		newIssueCommand(opts),
		newRevokeCommand(opts),
		newVerifyCommand(opts),
		newSkillsCommand(opts),
		newNSQFCommand(opts),
		newSweepCommand(opts),
		newStatsCommand(opts),
	)
	return root
}

// open loads configuration, opens and migrates the database, and wires the
// application services. Callers must close the returned session.
func (o *options) open(ctx context.Context, stderr io.Writer) (*session, error) {
	path := o.configPath
	var (
		cfg *config.Config
		err error
	)
	if path != "" {
		cfg, err = config.LoadFile(path)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}
	if o.dbPath != "" {
		cfg.DBPath = o.dbPath
	}
	if cfg.UsesBackend() && o.dbPath == "" {
		return nil, errors.New("credctl needs a local database; unset backend_url or pass --db")
	}

	logger := cfg.NewLogger(stderr)

	db, err := sqliteadapter.NewDB(cfg.DBPath)
	if err != nil {
		return nil, err
	}
	if err := sqliteadapter.RunMigrations(db.Writer); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := db.Ping(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("database unreachable: %w", err)
	}

	store := sqliteadapter.NewCredentialRepo(db)
	counts := sqliteadapter.NewVerificationCountRepo(db)

	return &session{
		db:       db,
		store:    store,
		counts:   counts,
		issuer:   application.NewIssuanceService(store, logger).WithClock(o.now),
		verifier: application.NewVerificationService(store, logger, counts).WithClock(o.now),
		progress: application.NewProgressService(store, logger).WithClock(o.now),
		sweeper:  application.NewSweepService(store, time.Hour, logger).WithClock(o.now),
		logger:   logger,
	}, nil
}

func (s *session) close() {
	if err := s.db.Close(); err != nil {
		s.logger.Error("error closing database", "error", err)
	}
}

// withSession wraps a RunE body with session setup and teardown.
func withSession(opts *options, fn func(cmd *cobra.Command, args []string, s *session) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		s, err := opts.open(cmd.Context(), cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		defer s.close()
		return fn(cmd, args, s)
	}
}
