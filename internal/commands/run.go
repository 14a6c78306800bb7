package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/saltyjared/banking-system/internal/config"
	"github.com/saltyjared/banking-system/internal/ledger"
	"github.com/saltyjared/banking-system/internal/logging"
	"github.com/saltyjared/banking-system/internal/oplog"
	"github.com/saltyjared/banking-system/internal/script"
)

type runOptions struct {
	configPath  string
	envFile     string
	journalPath string
	failFast    bool
}

func newRunCommand() *cobra.Command {
	var opts runOptions

	cmd := &cobra.Command{
		Use:   "run <script.csv>",
		Short: "Replay an operations script against a fresh ledger",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScript(cmd.OutOrStdout(), args[0], opts)
		},
	}

	cmd.Flags().StringVar(&opts.configPath, "config", "", "config file (default ./"+config.FileName+" if present)")
	cmd.Flags().StringVar(&opts.envFile, "env-file", ".env", "dotenv file with "+config.EnvPrefix+"* overrides")
	cmd.Flags().StringVar(&opts.journalPath, "journal", "", "append executed operations to this CSV journal")
	cmd.Flags().BoolVar(&opts.failFast, "fail-fast", false, "stop at the first rejected operation")

	return cmd
}

func runScript(out io.Writer, path string, opts runOptions) error {
	cfg, err := loadConfig(opts.configPath, opts.envFile)
	if err != nil {
		return err
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		return fmt.Errorf("building logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	policy, err := cfg.Ledger.Policy()
	if err != nil {
		return fmt.Errorf("invalid ledger config: %w", err)
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening script: %w", err)
	}
	defer f.Close()

	ops, err := script.Parse(f)
	if err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}

	l, err := ledger.New(policy, logger)
	if err != nil {
		return fmt.Errorf("creating ledger: %w", err)
	}

	results := script.NewRunner(l).RunAll(ops, opts.failFast)
	var failed *script.Result
	for i, res := range results {
		fmt.Fprintln(out, res.String())
		if res.Err != nil && failed == nil {
			failed = &results[i]
		}
	}

	if opts.journalPath != "" {
		if err := oplog.Append(opts.journalPath, journalEntries(l.Session(), results)); err != nil {
			return fmt.Errorf("writing journal: %w", err)
		}
	}

	fields := []zap.Field{
		zap.String("session", l.Session()),
		zap.String("script", path),
		zap.Int("operations", len(results)),
		zap.Int("merges", len(l.Merges())),
	}
	if now, ok := l.Now(); ok {
		fields = append(fields, zap.Int64("last_ts", now))
	}
	logger.Info("script finished", fields...)
	for _, e := range l.Merges() {
		logger.Debug("merge applied", zap.String("retired", e.Retired), zap.String("surviving", e.Surviving), zap.Int64("ts", e.Timestamp))
	}

	if opts.failFast && failed != nil {
		return fmt.Errorf("line %d: %s: %w", failed.Op.Line, failed.Op.Name, failed.Err)
	}
	return nil
}

func loadConfig(path, envFile string) (*config.Config, error) {
	if envFile != "" {
		if err := config.LoadEnvFile(envFile); err != nil {
			return nil, err
		}
	}

	cfg := config.Default()
	if path == "" {
		if _, err := os.Stat(config.FileName); err == nil {
			path = config.FileName
		}
	}
	if path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func journalEntries(session string, results []script.Result) []oplog.Entry {
	entries := make([]oplog.Entry, 0, len(results))
	for _, res := range results {
		e := oplog.Entry{
			Session:   session,
			Timestamp: res.Op.Timestamp,
			Operation: res.Op.Name,
			Args:      res.Op.Args,
			Result:    res.Output,
		}
		if res.Err != nil {
			e.Error = res.Err.Error()
		}
		entries = append(entries, e)
	}
	return entries
}
