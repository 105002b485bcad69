package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Beastly713/bpcs/pkg/server"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve embed, extract and capacity over HTTP",
	Long: `Serve starts an HTTP service with three multipart endpoints:

  POST /embed     cover, secret (files); password, encrypt, randomize, threshold
  POST /extract   stego (file); password, encrypt, randomize, threshold
  POST /capacity  cover (file); threshold`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		addr := settings.Server.Address
		if cmd.Flags().Changed("addr") {
			addr = serveAddr
		}
		cfg, pw, err := pipelineConfig(cmd)
		if err != nil {
			return err
		}
		pw.Destroy()

		srv := server.New(server.Options{
			Threshold:      cfg.Threshold,
			MaxUploadBytes: settings.Server.MaxUploadMB << 20,
			Logger:         &logger,
		})

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return srv.ListenAndServe(ctx, addr)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveAddr, "addr", "127.0.0.1:8080", "Address to listen on")
}
