package main

import (
	"log"

	"github.com/spf13/cobra"

	"music-chatter/internal/bot"
	"music-chatter/internal/config"
	"music-chatter/internal/music"
	"music-chatter/internal/transcript"
)

// app bundles the collaborators every command needs: validated settings,
// the loaded database and the bot factory.
type app struct {
	cfg      *config.Config
	settings *config.Settings
	store    music.Store
	factory  *bot.Factory
	recorder transcript.Recorder
}

func newApp() (*app, error) {
	cfg := config.New()

	settings, err := config.LoadSettings(cfg.SettingsPath)
	if err != nil {
		return nil, err
	}
	store, err := music.Open(cfg.DatabasePath)
	if err != nil {
		return nil, err
	}
	log.Printf("loaded %d records from %s", store.Len(), cfg.DatabasePath)

	var recorder transcript.Recorder
	if cfg.TranscriptPath != "" {
		r, err := transcript.NewFileRecorder(cfg.TranscriptPath)
		if err != nil {
			return nil, err
		}
		recorder = r
	}

	return &app{
		cfg:      cfg,
		settings: settings,
		store:    store,
		factory:  bot.NewFactory(cfg, settings, store),
		recorder: recorder,
	}, nil
}

func newRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "music-chatter",
		Short:         "Music recommendation chatbot backed by hosted LLMs",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.AddCommand(newChatCommand())
	rootCmd.AddCommand(newServeCommand())
	rootCmd.AddCommand(newTelegramCommand())

	return rootCmd
}
