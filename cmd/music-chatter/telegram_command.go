package main

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"music-chatter/internal/auth"
	"music-chatter/internal/bot"
	"music-chatter/internal/telegram"
)

func newTelegramCommand() *cobra.Command {
	var kind string

	cmd := &cobra.Command{
		Use:   "telegram",
		Short: "Run the recommendation bot behind a Telegram chat",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			if a.cfg.TelegramBotToken == "" {
				return fmt.Errorf("TELEGRAM_BOT_TOKEN is not configured")
			}

			// Fail fast on bad credentials before accepting updates.
			if _, err := a.factory.New(kind); err != nil {
				return err
			}

			tg, err := telegram.New(
				a.cfg.TelegramBotToken,
				auth.New(a.cfg.AllowedUsers),
				telegram.NewFromFactory(a.factory, kind),
				a.recorder,
			)
			if err != nil {
				return fmt.Errorf("failed to init telegram bot: %w", err)
			}

			log.Printf("telegram bot started with backend %q", kind)
			tg.Start(cmd.Context())
			return nil
		},
	}

	cmd.Flags().StringVar(&kind, "bot", bot.KindOpenAIFunctions, "Backend variant serving the chat")
	return cmd
}
