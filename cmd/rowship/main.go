package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"runtime/debug"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	pflag "github.com/spf13/pflag"

	"github.com/rerun-io/rowship"
	"github.com/rerun-io/rowship/internal/cliconfig"
	logAdapter "github.com/rerun-io/rowship/pkg/log"
)

const helpBanner = `
 ____    ___  __        __ ____   _   _  ___  ____
|  _ \  / _ \ \ \      / // ___| | | | ||_ _||  _ \
| |_) || | | | \ \ /\ / / \___ \ | |_| | | | | |_) |
|  _ < | |_| |  \ V  V /   ___) ||  _  | | | |  __/
|_| \_\ \___/    \_/\_/   |____/ |_| |_||___||_|
`

const helpDescription = `
Ship recorded rows to the rowship ingestion service without slowing the recorder.

Highlights:
  - Batches rows into tables by size, count, or age, whichever fires first.
  - Resumes from committed offsets after a restart; nothing ships twice on a clean run.
  - Derives the stream id from the recording manifest; configure via file, env, or flags.
  - Safe defaults with tunable flush thresholds.

Docs: https://docs.rowship.io/getting-started
Contact: support@rowship.io
`

var longHelp = strings.TrimSpace(helpBanner) + "\n\n" + strings.TrimSpace(helpDescription)

var exampleUsage = strings.TrimSpace(`
  rowship --source-dir /var/log/recordings --auth-key <api-key>
  rowship --config $HOME/.rowship/config.toml --once
`)

func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

func main() {
	cfg := cliconfig.DefaultConfig()
	var cfgPath string
	var printConfig bool

	log := cliconfig.Logger()

	root := &cobra.Command{
		Use:     "rowship",
		Short:   "Ship recorded rows to the rowship ingestion service",
		Long:    longHelp,
		Example: exampleUsage,
		Version: fmt.Sprintf("%s %s/%s", getVersion(), runtime.GOOS, runtime.GOARCH),
		RunE: func(cmd *cobra.Command, args []string) error {
			// Load config file first (default $HOME/.rowship/config.toml), then apply flag overrides
			cfgFile := cfgPath
			if cfgFile == "" {
				cfgFile = cliconfig.DefaultConfigPath()
			}

			// Build set of changed flags
			changed := map[string]bool{}
			cmd.Flags().Visit(func(f *pflag.Flag) { changed[f.Name] = true })

			if cfgFile != "" && cliconfig.FileExists(cfgFile) {
				fc, err := cliconfig.LoadFileConfig(cfgFile)
				if err != nil {
					return fmt.Errorf("load config: %w", err)
				}
				if err := cliconfig.ApplyFileConfig(&cfg, fc, changed); err != nil {
					return err
				}
			}

			// Apply environment variables (ROWSHIP_*)
			// These override file config but are overridden by flags (checked via changed map)
			if err := cliconfig.ApplyEnvConfig(&cfg, changed); err != nil {
				return err
			}

			// Validate and set derived defaults
			if err := cfg.Validate(); err != nil {
				return err
			}

			// Derive the stream id from the recording manifest when not configured
			if err := cliconfig.LoadStreamInfo(&cfg); err != nil {
				return err
			}

			if cfg.Verbose {
				zerolog.SetGlobalLevel(zerolog.DebugLevel)
			}

			// Log configuration (masking API key)
			logCfg := cfg
			if len(logCfg.AuthKey) > 0 {
				logCfg.AuthKey = "*****"
			}
			log.Info().Interface("config", logCfg).Msg("configuration")
			if printConfig {
				return nil
			}

			// Convert cliconfig.Config to rowship.Config
			libCfg := rowship.Config{
				SourceDir:     cfg.SourceDir,
				StateDir:      cfg.StateDir,
				StreamID:      cfg.StreamID,
				ServiceURL:    cfg.ServiceURL,
				AuthKey:       cfg.AuthKey,
				PollInterval:  cfg.PollInterval,
				HTTPTimeout:   cfg.HTTPTimeout,
				FlushNumBytes: cfg.FlushNumBytes,
				FlushNumRows:  cfg.FlushNumRows,
				FlushTick:     cfg.FlushTick,
				Once:          cfg.Once,
			}

			// Create zerolog adapter for the library
			zerologAdapter := logAdapter.NewZerologAdapterWithLogger(log)

			agent, err := rowship.New(libCfg, rowship.WithLogger(zerologAdapter))
			if err != nil {
				return fmt.Errorf("create rowship: %w", err)
			}

			// Setup signal handling for graceful shutdown
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

			if err := agent.Start(ctx); err != nil {
				return fmt.Errorf("start rowship: %w", err)
			}

			// Create done channel to detect completion
			doneCh := make(chan struct{})
			go func() {
				// Poll for completion (for once mode)
				ticker := time.NewTicker(100 * time.Millisecond)
				defer ticker.Stop()
				for {
					select {
					case <-ctx.Done():
						return
					case <-ticker.C:
						status := agent.Status()
						if status == rowship.StateStopped || status == rowship.StateCrashed {
							close(doneCh)
							return
						}
					}
				}
			}()

			// Wait for signal or completion
			select {
			case <-sigCh:
				log.Info().Msg("received signal, stopping...")
			case <-doneCh:
				// Completed (once mode or crash)
				if agent.Status() == rowship.StateCrashed {
					log.Error().Msg("rowship crashed")
				}
			}

			// Graceful shutdown; the agent may already have stopped on its own
			if err := agent.Stop(); err != nil && !errors.Is(err, rowship.ErrNotRunning) {
				return fmt.Errorf("stop rowship: %w", err)
			}
			return nil
		},
	}

	// Flags
	root.Flags().StringVar(&cfgPath, "config", "", "path to config file (default: $HOME/.rowship/config.toml)")
	root.Flags().StringVar(&cfg.SourceDir, "source-dir", cfg.SourceDir, "directory of .jsonl record files to ship")
	root.Flags().StringVar(&cfg.StreamID, "stream-id", cfg.StreamID, "stream identifier (default: derived from recording.json or generated)")

	root.Flags().StringVar(&cfg.ServiceURL, "service-url", cfg.ServiceURL, fmt.Sprintf("base service URL (defaults to %s; override only for internal testing)", cliconfig.DefaultServiceURL))
	if err := root.Flags().MarkHidden("service-url"); err != nil {
		log.Info().Err(err).Msg("failed to hide service-url flag")
	}
	root.Flags().StringVar(&cfg.AuthKey, "auth-key", cfg.AuthKey, "API key for authentication")

	root.Flags().DurationVar(&cfg.PollInterval, "poll", cfg.PollInterval, "poll interval when idle")
	root.Flags().Uint64Var(&cfg.FlushNumBytes, "flush-bytes", cfg.FlushNumBytes, "pending byte size that seals a table (0 disables)")
	root.Flags().Uint64Var(&cfg.FlushNumRows, "flush-rows", cfg.FlushNumRows, "pending row count that seals a table (0 disables)")
	root.Flags().DurationVar(&cfg.FlushTick, "flush-tick", cfg.FlushTick, "longest a pending table stays open (0 disables)")

	root.Flags().StringVar(&cfg.StateDir, "state-dir", cfg.StateDir, "state directory for state.json (defaults to source-dir)")
	if err := root.Flags().MarkHidden("state-dir"); err != nil {
		log.Info().Err(err).Msg("failed to hide state-dir flag")
	}
	root.Flags().DurationVar(&cfg.HTTPTimeout, "timeout", cfg.HTTPTimeout, "HTTP timeout")
	root.Flags().BoolVar(&cfg.Verbose, "verbose", cfg.Verbose, "enable debug logging")
	root.Flags().BoolVar(&cfg.Once, "once", cfg.Once, "ship available records and exit")
	root.Flags().BoolVar(&printConfig, "print-config", false, "print the resolved configuration and exit")

	if err := root.Execute(); err != nil {
		log.Error().Err(err).Msg("rowship")
		os.Exit(1)
	}
}
