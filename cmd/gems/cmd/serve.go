package cmd

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var port string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server until interrupted",
	RunE: func(cmd *cobra.Command, args []string) error {
		a := newApplication()
		if port != "" {
			a.Config().App.Port = port
		}

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return a.Run(ctx)
	},
}

func init() {
	serveCmd.Flags().StringVarP(&port, "port", "p", "", "port to listen on (default APP_PORT)")
	rootCmd.AddCommand(serveCmd)
}
