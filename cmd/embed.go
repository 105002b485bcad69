package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/Beastly713/bpcs/pkg/pipeline"
)

var (
	embedOutput    string
	embedName      string
	embedOverwrite bool
)

var embedCmd = &cobra.Command{
	Use:   "embed [cover.bmp] [secret-file]",
	Short: "Hide a file inside a 24-bit bitmap",
	Long: `Embed hides a file, together with its name, in the complex regions of a
24-bit uncompressed BMP and writes the result as a new BMP.

Example:
  bpcs embed holiday.bmp diary.txt -p "correct horse" -e -r

  This writes holiday_stego.bmp. Extract it with the same password and flags.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		coverPath, secretPath := args[0], args[1]

		// 1. Options
		cfg, pw, err := pipelineConfig(cmd)
		if err != nil {
			return err
		}
		defer pw.Destroy()

		// 2. Inputs
		cover, err := loadBitmap(coverPath)
		if err != nil {
			return describe(err)
		}
		secret, err := os.ReadFile(secretPath)
		if err != nil {
			return fmt.Errorf("failed to read secret: %w", err)
		}
		name := embedName
		if name == "" {
			name = filepath.Base(secretPath)
		}

		// 3. Embed
		res, err := pipeline.Embed(cmd.Context(), cover, name, secret, cfg)
		if err != nil {
			return describe(err)
		}

		// 4. Write the stego image
		out := embedOutput
		if out == "" {
			dir := settings.OutputDir
			if dir == "" {
				dir = filepath.Dir(coverPath)
			}
			out = stegoName(dir, coverPath, "_stego")
		}
		if _, err := os.Stat(out); err == nil && !embedOverwrite {
			return fmt.Errorf("output file %s already exists (use --overwrite to replace)", out)
		}
		if err := saveBitmap(out, res.Image); err != nil {
			return fmt.Errorf("failed to write stego image: %w", err)
		}

		cmd.Printf("Hid %s (%d bytes) in %s\n", name, len(secret), out)
		cmd.Printf("PSNR: %.2f dB\n", res.PSNR)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(embedCmd)

	embedCmd.Flags().StringVarP(&embedOutput, "output", "o", "", "Stego image to write (default: <cover>_stego.bmp)")
	embedCmd.Flags().StringVar(&embedName, "name", "", "Filename to store instead of the secret's own name")
	embedCmd.Flags().BoolVarP(&embedOverwrite, "overwrite", "f", false, "Replace an existing stego image")
}
