package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/Beastly713/bpcs/pkg/pipeline"
)

var (
	extractDir string
	overwrite  bool
)

var extractCmd = &cobra.Command{
	Use:   "extract [stego.bmp]",
	Short: "Recover a hidden file from a stego bitmap",
	Long: `Extract reads the file hidden by embed and writes it under its original
name. The password, --encrypt, --randomize and --threshold must match the
values used to embed.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, pw, err := pipelineConfig(cmd)
		if err != nil {
			return err
		}
		defer pw.Destroy()

		stego, err := loadBitmap(args[0])
		if err != nil {
			return describe(err)
		}

		res, err := pipeline.Extract(cmd.Context(), stego, cfg)
		if err != nil {
			return describe(err)
		}

		name, err := safeName(res.Filename)
		if err != nil {
			return err
		}
		dir := outputDir(cmd, extractDir)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create destination directory: %w", err)
		}
		out := filepath.Join(dir, name)

		if _, err := os.Stat(out); err == nil && !overwrite {
			return fmt.Errorf("output file %s already exists (use --overwrite to replace)", out)
		}
		if err := writeFileAtomic(out, res.Secret, 0600); err != nil {
			return fmt.Errorf("failed to write %s: %w", out, err)
		}

		cmd.Printf("Recovered %s (%d bytes)\n", out, len(res.Secret))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(extractCmd)

	extractCmd.Flags().StringVarP(&extractDir, "destination", "d", ".", "Directory to write the recovered file to")
	extractCmd.Flags().BoolVarP(&overwrite, "overwrite", "f", false, "Replace an existing file")
}
