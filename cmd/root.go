package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/Beastly713/bpcs/pkg/bpcs"
	"github.com/Beastly713/bpcs/pkg/config"
	"github.com/Beastly713/bpcs/pkg/crypto/secrets"
	"github.com/Beastly713/bpcs/pkg/pipeline"
)

var (
	configPath  string
	logLevel    string
	logJSON     bool
	threshold   int
	password    string
	askPassword bool
	encrypt     bool
	randomize   bool

	// settings holds the config file merged over the defaults.
	settings *config.Settings
	logger   zerolog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "bpcs",
	Short: "Hide files inside 24-bit bitmaps",
	Long: `BPCS: hide a named file inside the noisy bit-planes of an uncompressed
24-bit BMP using Bit-Plane Complexity Segmentation.

Only 8x8 regions that already look like noise are replaced, so the stego
image stays visually identical to the cover.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// 1. Settings file
		var err error
		if configPath != "" {
			settings, err = config.Load(configPath)
		} else {
			settings, err = config.LoadDefault()
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		// 2. Logging
		level := settings.LogLevel
		if cmd.Flags().Changed("log-level") {
			level = logLevel
		}
		logger, err = newLogger(cmd.ErrOrStderr(), level, logJSON)
		return err
	},
}

func newLogger(w io.Writer, level string, asJSON bool) (zerolog.Logger, error) {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		return zerolog.Nop(), fmt.Errorf("invalid log level %q: %w", level, err)
	}
	if !asJSON {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}
	}
	return zerolog.New(w).Level(lvl).With().Timestamp().Logger(), nil
}

// pipelineConfig merges the settings file with the flags given on the
// command line. The returned secret must be destroyed by the caller.
func pipelineConfig(cmd *cobra.Command) (pipeline.Config, *secrets.Secret, error) {
	flags := cmd.Flags()
	cfg := pipeline.Config{
		Threshold: settings.Threshold,
		Encrypt:   settings.Encrypt,
		Randomize: settings.Randomize,
		Logger:    &logger,
	}
	if flags.Changed("threshold") {
		cfg.Threshold = threshold
	}
	if flags.Changed("encrypt") {
		cfg.Encrypt = encrypt
	}
	if flags.Changed("randomize") {
		cfg.Randomize = randomize
	}

	pw := secrets.NewPassword(password)
	if askPassword {
		typed, err := readPassword(cmd, "Password: ")
		if err != nil {
			return cfg, nil, err
		}
		pw.Destroy()
		pw = secrets.WrapSecret(typed)
	}
	if (cfg.Encrypt || cfg.Randomize) && pw.Empty() {
		logger.Warn().Msg("no password given: --encrypt and --randomize have no effect")
	}
	cfg.Password = pw.String()
	return cfg, pw, nil
}

// outputDir is the -d flag of cmd, or output_dir from the settings file.
func outputDir(cmd *cobra.Command, flagValue string) string {
	if cmd.Flags().Changed("destination") || settings.OutputDir == "" {
		return flagValue
	}
	return settings.OutputDir
}

// describe turns a pipeline failure into the message shown to the user.
func describe(err error) error {
	res := pipeline.Classify(err)
	switch res.Kind {
	case pipeline.CapacityExceeded:
		return fmt.Errorf("secret data too large: maximum capacity is %d bytes: %w", res.MaxBytes, err)
	case pipeline.UnsupportedFormat:
		return fmt.Errorf("only uncompressed 24-bit BMP files are supported: %w", err)
	case pipeline.CorruptData:
		if errors.Is(err, bpcs.ErrSelectionDrift) {
			return fmt.Errorf("%s: %w (try a lower --threshold, or --encrypt with a --password)", res.Kind, err)
		}
		return fmt.Errorf("%s: %w", res.Kind, err)
	}
	return err
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func GetRootCmd() *cobra.Command {
	return rootCmd
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configPath, "config", "", "YAML settings file (default: $HOME/"+config.DefaultFile+" if present)")
	pf.StringVar(&logLevel, "log-level", "info", "Log level: debug, info, warn or error")
	pf.BoolVar(&logJSON, "log-json", false, "Write logs as JSON instead of console text")
	pf.IntVar(&threshold, "threshold", bpcs.DefaultThreshold, "Minimum block complexity (1-112) for a block to carry data")
	pf.StringVarP(&password, "password", "p", "", "Password for the cipher and block shuffle")
	pf.BoolVar(&askPassword, "ask-password", false, "Prompt for the password without echoing it")
	pf.BoolVarP(&encrypt, "encrypt", "e", false, "Apply the substitution cipher keyed by the password")
	pf.BoolVarP(&randomize, "randomize", "r", false, "Shuffle block order with a seed derived from the password")
}
