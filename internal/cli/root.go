// Package cli provides the command-line interface for keypulse.
package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"keypulse/internal/config"
	"keypulse/internal/keymap"
)

type options struct {
	configPath      string
	process         string
	key             string
	interval        string
	sequence        string
	independentKeys string
	maxRetries      int
	pauseHotkey     string
	verbose         bool
	loop            bool
	repeatCount     int
	savePath        string
	apiPort         int
	apiToken        string
	tray            bool
}

// NewRootCommand creates the root command.
func NewRootCommand(version string) *cobra.Command {
	cmd, _ := newRootCommand(version)
	return cmd
}

func newRootCommand(version string) (*cobra.Command, *options) {
	opts := &options{}

	root := &cobra.Command{
		Use:   "keypulse",
		Short: "Automated keystroke delivery to a target process",
		Long: `keypulse locates a running process by name and delivers keystrokes to
its window on a schedule: either a sequence executed in order, or several
keys each on an independent timer.

Only automate software you are permitted to automate.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			setupLogging(opts.verbose)

			cfg, err := buildConfig(cmd, opts)
			if err != nil {
				return err
			}
			if opts.verbose {
				cfg.Verbose = true
			}

			if opts.savePath != "" {
				if err := cfg.Save(opts.savePath); err != nil {
					return fmt.Errorf("save config: %w", err)
				}
				log.Info().Str("path", opts.savePath).Msg("configuration written")
				return nil
			}

			return runSession(cfg, opts)
		},
	}

	f := root.Flags()
	f.StringVarP(&opts.configPath, "config", "c", "", "path to a JSON config file")
	f.StringVarP(&opts.process, "process", "p", "", "target process name (case-insensitive substring)")
	f.StringVarP(&opts.key, "key", "k", "", "single key or combination to send repeatedly")
	f.StringVar(&opts.interval, "interval", "1s", "interval between sends for --key (e.g. 500ms, 2s, 1m)")
	f.StringVar(&opts.sequence, "sequence", "", "key sequence, e.g. \"r:1000,space:500\"")
	f.StringVar(&opts.independentKeys, "independent-keys", "", "independent timers, e.g. \"r:1000;a:5000\"")
	f.IntVar(&opts.maxRetries, "max-retries", 0, "attempts to locate the target process before giving up")
	f.StringVar(&opts.pauseHotkey, "pause-hotkey", "", "pause hotkey to record in the config")
	f.BoolVarP(&opts.verbose, "verbose", "v", false, "log every keystroke")
	f.BoolVar(&opts.loop, "loop", true, "restart the sequence after the last step")
	f.IntVar(&opts.repeatCount, "repeat-count", 0, "stop after this many full passes (0 = unlimited)")
	f.StringVar(&opts.savePath, "save-config", "", "write the effective configuration to this path and exit")
	f.IntVar(&opts.apiPort, "api-port", 0, "serve the control API on this port (0 = disabled)")
	f.StringVar(&opts.apiToken, "api-token", "", "bearer token required by the control API")
	f.BoolVar(&opts.tray, "tray", false, "show a system tray icon with a pause toggle")

	return root, opts
}

// buildConfig merges the config file with command-line overrides and
// validates the result. A mode given on the command line replaces whatever
// mode the file configured; giving both modes is an error, from either
// source.
func buildConfig(cmd *cobra.Command, opts *options) (*config.Config, error) {
	cfg := config.Default()
	if opts.configPath != "" {
		loaded, err := config.Load(opts.configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	modeFlags := 0
	if opts.key != "" {
		modeFlags++
	}
	if opts.sequence != "" {
		modeFlags++
	}
	if opts.independentKeys != "" {
		modeFlags++
	}
	if modeFlags > 1 {
		return nil, errors.New("--key, --sequence and --independent-keys are mutually exclusive")
	}

	switch {
	case opts.key != "":
		interval, err := config.ParseDuration(opts.interval)
		if err != nil {
			return nil, fmt.Errorf("invalid --interval: %w", err)
		}
		cfg.KeySequence = []config.Step{{Key: opts.key, IntervalAfter: interval}}
		cfg.IndependentKeys = nil
	case opts.sequence != "":
		steps, err := config.ParseSequence(opts.sequence)
		if err != nil {
			return nil, fmt.Errorf("invalid --sequence: %w", err)
		}
		cfg.KeySequence = steps
		cfg.IndependentKeys = nil
	case opts.independentKeys != "":
		timers, err := config.ParseIndependent(opts.independentKeys)
		if err != nil {
			return nil, fmt.Errorf("invalid --independent-keys: %w", err)
		}
		cfg.IndependentKeys = timers
		cfg.KeySequence = nil
	}

	if opts.process != "" {
		cfg.ProcessName = opts.process
	}
	if cmd.Flags().Changed("max-retries") {
		cfg.MaxRetries = opts.maxRetries
	}
	if cmd.Flags().Changed("pause-hotkey") {
		cfg.PauseHotkey = opts.pauseHotkey
	}
	if cmd.Flags().Changed("loop") {
		cfg.LoopSequence = opts.loop
	}
	if cmd.Flags().Changed("repeat-count") {
		cfg.RepeatCount = opts.repeatCount
	}

	if err := cfg.Validate(keymap.New()); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Execute runs the root command and returns the process exit code.
func Execute(version string) int {
	root := NewRootCommand(version)
	if err := root.Execute(); err != nil {
		log.Error().Err(err).Msg("keypulse failed")
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

// setupLogging configures zerolog for human-readable console output.
func setupLogging(verbose bool) {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	if verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
		return
	}
	switch os.Getenv("LOG_LEVEL") {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}
