package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Beastly713/bpcs/pkg/bitmap"
	"github.com/Beastly713/bpcs/pkg/bpcs"
	"github.com/Beastly713/bpcs/pkg/pipeline"
)

var capacityName string

var capacityCmd = &cobra.Command{
	Use:   "capacity [image.bmp]",
	Short: "Report how much an image can hide",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, pw, err := pipelineConfig(cmd)
		if err != nil {
			return err
		}
		pw.Destroy()

		img, err := loadBitmap(args[0])
		if err != nil {
			return describe(err)
		}
		report, err := pipeline.Capacity(img, cfg)
		if err != nil {
			return err
		}
		logger.Debug().Int("blocks", report.Blocks).Int("eligible", report.Eligible).Msg("cover scored")

		cmd.Printf("%s: %dx%d, threshold %d\n\n", args[0], report.Width, report.Height, report.Threshold)

		wtr := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', tabwriter.AlignRight)
		fmt.Fprintln(wtr, "Plane\tR\tG\tB\tBytes\t")
		for plane := bpcs.BitPlanes - 1; plane >= 0; plane-- {
			sum := 0
			fmt.Fprintf(wtr, "%d\t", plane)
			for ch := 0; ch < bitmap.Channels; ch++ {
				n := report.Planes[ch][plane]
				sum += n
				fmt.Fprintf(wtr, "%d\t", n)
			}
			fmt.Fprintf(wtr, "%d\t\n", sum*bpcs.BlockBits/8)
		}
		wtr.Flush()

		cmd.Printf("\nEligible blocks: %d of %d\n", report.Eligible, report.Blocks)
		cmd.Printf("Capacity:        %d bytes\n", report.MaxBytes)
		if capacityName != "" {
			cmd.Printf("Room for a secret named %q: %d bytes\n", capacityName, report.SecretRoom(capacityName))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(capacityCmd)

	capacityCmd.Flags().StringVar(&capacityName, "name", "", "Also show the room left for a secret stored under this name")
}
