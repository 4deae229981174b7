package main

import (
	"log"
	"time"

	"github.com/spf13/cobra"

	"music-chatter/internal/server"
)

func newServeCommand() *cobra.Command {
	var sessionTTL time.Duration

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Expose the bots over an HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}

			srv := server.New(a.factory, a.recorder, sessionTTL)
			log.Printf("listening on %s", a.cfg.ListenAddr)
			return srv.Run(a.cfg.ListenAddr)
		},
	}

	cmd.Flags().DurationVar(&sessionTTL, "session-ttl", time.Hour, "Evict chat sessions idle for longer than this")
	return cmd
}
