package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Beastly713/bpcs/pkg/pipeline"
)

var (
	gatherDir       string
	gatherOverwrite bool
)

var gatherCmd = &cobra.Command{
	Use:   "gather [directory]",
	Short: "Recover a scattered file from its stego images",
	Long: `Gather looks for .bmp files in the specified directory (or the current
directory if not provided), extracts the shard hidden in each and rebuilds
the original file.

You need at least T (threshold) images from the same scatter run.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		// 1. Determine Source Directory
		sourceDir := "."
		if len(args) > 0 {
			sourceDir = args[0]
		}

		cfg, pw, err := pipelineConfig(cmd)
		if err != nil {
			return err
		}
		defer pw.Destroy()

		entries, err := os.ReadDir(sourceDir)
		if err != nil {
			return fmt.Errorf("failed to read directory: %w", err)
		}
		var paths []string
		for _, e := range entries {
			if !e.IsDir() && strings.EqualFold(filepath.Ext(e.Name()), ".bmp") {
				paths = append(paths, filepath.Join(sourceDir, e.Name()))
			}
		}
		if len(paths) == 0 {
			return fmt.Errorf("no .bmp files found in %s", sourceDir)
		}

		// 2. Extract every shard we can find
		cmd.Printf("Scanning %d images in %s...\n", len(paths), sourceDir)
		bar := newProgressBar(cmd.ErrOrStderr(), len(paths), "Extracting shards")
		var shards []*pipeline.Shard
		for _, p := range paths {
			img, err := loadBitmap(p)
			if err == nil {
				var s *pipeline.Shard
				if s, err = pipeline.ExtractShard(cmd.Context(), img, cfg); err == nil {
					shards = append(shards, s)
				}
			}
			if err != nil {
				logger.Warn().Str("file", p).Err(err).Msg("skipping image")
			}
			bar.Add(1)
		}

		// 3. Rebuild
		res, err := pipeline.Gather(shards)
		if err != nil {
			return describe(err)
		}

		name, err := safeName(res.Filename)
		if err != nil {
			return err
		}
		dir := outputDir(cmd, gatherDir)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create destination directory: %w", err)
		}
		out := filepath.Join(dir, name)
		if _, err := os.Stat(out); err == nil && !gatherOverwrite {
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
	rootCmd.AddCommand(gatherCmd)

	gatherCmd.Flags().StringVarP(&gatherDir, "destination", "d", ".", "Directory to write the recovered file to")
	gatherCmd.Flags().BoolVarP(&gatherOverwrite, "overwrite", "f", false, "Replace an existing file")
}
