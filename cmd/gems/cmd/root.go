package cmd

import (
	"github.com/spf13/cobra"

	"github.com/km-arc/go-gems/framework/app"
	"github.com/km-arc/go-gems/internal/demo"
)

var envFiles []string

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "gems",
	Short: "Container behaviors demo server",
	Long: `gems runs a small HTTP application built on the go-gems container:
a hot-swappable greeter, a decorated per-session counter and a controller
the request scope instantiates on demand.`,
	Version:      app.Version,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringSliceVar(&envFiles, "env", nil, "env files to load (default .env)")
}

// newApplication builds and boots the demo application.
func newApplication() *app.Application {
	a := demo.NewApplication(app.WithEnvFiles(envFiles...))
	a.Boot()
	return a
}
