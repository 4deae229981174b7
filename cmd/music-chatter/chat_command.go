package main

import (
	"bufio"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"music-chatter/internal/bot"
	"music-chatter/internal/citation"
	"music-chatter/internal/transcript"
)

// Words that end the interactive session.
var exitWords = map[string]bool{
	"tks": true, "thanks": true, "bye": true,
	"obrigado": true, "tchau": true, "valeu": true, "vlw": true, "flw": true,
}

func newChatCommand() *cobra.Command {
	var only string

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Interactive chat comparing every configured backend",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}

			kinds := a.factory.Available()
			if only != "" {
				kinds = []string{only}
			}
			if len(kinds) == 0 {
				return fmt.Errorf("no backend credentials configured")
			}

			bots := make([]bot.Bot, 0, len(kinds))
			for _, kind := range kinds {
				b, err := a.factory.New(kind)
				if err != nil {
					return err
				}
				bots = append(bots, b)
			}

			log.Printf("chat initialized with %d bot(s), say %q to quit", len(bots), "bye")
			return runChatLoop(cmd, bots, a.recorder)
		},
	}

	cmd.Flags().StringVar(&only, "bot", "", "Run a single backend variant instead of all of them")
	return cmd
}

func runChatLoop(cmd *cobra.Command, bots []bot.Bot, recorder transcript.Recorder) error {
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Fprint(cmd.OutOrStdout(), "> ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if exitWords[strings.ToLower(line)] {
			return nil
		}

		rows := make([][]string, 0, len(bots))
		for _, b := range bots {
			start := time.Now()
			reply := b.Chat(cmd.Context(), line)
			elapsed := time.Since(start).Round(time.Millisecond)
			if reply.Err != nil {
				log.Printf("[%s] turn failed: %v", b.Name(), reply.Err)
			}

			if recorder != nil {
				event := transcript.Event{
					Timestamp:   time.Now(),
					Session:     "cli",
					Bot:         b.Name(),
					UserMessage: line,
					BotMessage:  reply.Message,
					Citations:   reply.Citations,
				}
				if err := recorder.Append(event); err != nil {
					log.Printf("failed to record transcript event: %v", err)
				}
			}

			rows = append(rows, []string{
				b.Name(),
				reply.Message,
				citationsSummary(reply.Citations),
				elapsed.String(),
			})
		}

		fmt.Fprintln(cmd.OutOrStdout(), renderTable(
			[]string{"Bot", "Message", "Citations", "Time"},
			rows,
		))
	}
}

func citationsSummary(citations []citation.Citation) string {
	if len(citations) == 0 {
		return "none"
	}
	parts := make([]string, 0, len(citations))
	for _, c := range citations {
		parts = append(parts, fmt.Sprintf("%s (%.2f)", c.Record.Title, c.Score))
	}
	return fmt.Sprintf("%d: %s", len(citations), strings.Join(parts, ", "))
}
