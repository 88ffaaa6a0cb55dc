package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/justestif/moodmatch/internal/logging"
	"github.com/justestif/moodmatch/internal/web"
)

func newServeCmd(a *app) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the matching API over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			repo, cleanup, err := a.openRepository(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			if cmd.Flags().Changed("addr") {
				a.cfg.Addr = addr
			}

			server, err := web.NewServer(web.ServerConfig{
				Addr:     a.cfg.Addr,
				Catalogs: repo,
				Selector: a.selector(0),
				Logger:   logging.New("web"),
			})
			if err != nil {
				return fmt.Errorf("creating server: %w", err)
			}
			return server.Run()
		},
	}

	cmd.Flags().StringVar(&addr, "addr", web.DefaultAddr, "listen address")
	return cmd
}
