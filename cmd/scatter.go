package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/Beastly713/bpcs/pkg/bitmap"
	"github.com/Beastly713/bpcs/pkg/compression"
	"github.com/Beastly713/bpcs/pkg/pipeline"
)

var (
	coverPaths       []string
	needed           int
	scatterDir       string
	codecName        string
	scatterOverwrite bool
)

var scatterCmd = &cobra.Command{
	Use:   "scatter [file]",
	Short: "Spread a file across several cover images",
	Long: `Scatter compresses and encrypts a file, cuts it into erasure-coded shards
and hides one shard in each cover. Any T of the resulting stego images are
enough to recover the file with gather; fewer reveal nothing.

Example:
  bpcs scatter diary.txt --covers a.bmp,b.bmp,c.bmp -t 2 -d out/

  This writes a_1_of_3.bmp, b_2_of_3.bmp and c_3_of_3.bmp into out/.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		filePath := args[0]
		total := len(coverPaths)

		// 1. Validation
		if total < 2 {
			return fmt.Errorf("at least 2 covers are required (--covers)")
		}
		if needed < 2 || needed > total {
			return fmt.Errorf("-t must be between 2 and the number of covers (%d)", total)
		}

		cfg, pw, err := pipelineConfig(cmd)
		if err != nil {
			return err
		}
		defer pw.Destroy()

		// 2. Load inputs
		secret, err := os.ReadFile(filePath)
		if err != nil {
			return fmt.Errorf("failed to read file: %w", err)
		}
		covers := make([]*bitmap.Image, total)
		for i, p := range coverPaths {
			if covers[i], err = loadBitmap(p); err != nil {
				return describe(err)
			}
		}

		// 3. Prepare output directory
		dir := outputDir(cmd, scatterDir)
		if dir == "" {
			dir = filepath.Dir(filePath)
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create destination directory: %w", err)
		}

		// 4. Seal, shard and embed
		bar := newProgressBar(cmd.ErrOrStderr(), total, "Embedding shards")
		results, err := pipeline.Scatter(cmd.Context(), covers, filepath.Base(filePath), secret, pipeline.ScatterConfig{
			Threshold:   needed,
			Compression: codecName,
			OnEmbedded:  func(int, *pipeline.Result) { bar.Add(1) },
		}, cfg)
		if err != nil {
			return describe(err)
		}

		// 5. Write stego images
		outs := make([]string, total)
		for i := range results {
			outs[i] = stegoName(dir, coverPaths[i], fmt.Sprintf("_%d_of_%d", i+1, total))
			if _, err := os.Stat(outs[i]); err == nil && !scatterOverwrite {
				return fmt.Errorf("output file %s already exists (use --overwrite to replace)", outs[i])
			}
		}
		for i, res := range results {
			out := outs[i]
			if err := saveBitmap(out, res.Image); err != nil {
				return fmt.Errorf("failed to write %s: %w", out, err)
			}
			logger.Debug().Str("file", out).Float64("psnr", res.PSNR).Msg("stego image written")
			cmd.Printf("Created %s (PSNR %.2f dB)\n", out, res.PSNR)
		}

		cmd.Printf("Done! Any %d of these %d images recover %s.\n", needed, total, filepath.Base(filePath))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(scatterCmd)

	scatterCmd.Flags().StringSliceVar(&coverPaths, "covers", nil, "Comma separated cover images, one shard each")
	scatterCmd.Flags().IntVarP(&needed, "need", "t", 0, "Number of stego images required to recover the file")
	scatterCmd.Flags().StringVarP(&scatterDir, "destination", "d", "", "Directory to write the stego images to (default: next to the file)")

	scatterCmd.Flags().StringVar(&codecName, "compression", compression.Gzip, "Compression applied before sealing: gzip or zstd")

	scatterCmd.Flags().BoolVarP(&scatterOverwrite, "overwrite", "f", false, "Replace existing stego images")

	scatterCmd.MarkFlagRequired("covers")
	scatterCmd.MarkFlagRequired("need")
}
