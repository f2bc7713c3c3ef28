package main

import (
	"CourseHub/internal/app"
	"CourseHub/internal/config"
	"fmt"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	serve := func(cmd *cobra.Command, args []string) error {
		gin.SetMode(gin.ReleaseMode)
		app.Run(config.MustLoad())
		return nil
	}

	root := &cobra.Command{
		Use:           "coursehub",
		Short:         "Course catalog and subscription API",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          serve,
	}
	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Run the HTTP API (default)",
			RunE:  serve,
		},
		&cobra.Command{
			Use:   "migrate",
			Short: "Apply database migrations",
			RunE: func(cmd *cobra.Command, args []string) error {
				return app.Migrate(config.MustLoad())
			},
		},
		&cobra.Command{
			Use:   "seed",
			Short: "Load demo courses and users into an empty database",
			RunE: func(cmd *cobra.Command, args []string) error {
				return app.Seed(config.MustLoad())
			},
		},
	)
	return root
}
