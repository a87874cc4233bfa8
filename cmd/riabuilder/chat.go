package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Talk to the assistant from the terminal",
	Long: `Starts a line-based conversation with the assistant.

Commands inside the session:
  /summarize   Save a summary of the session and start fresh
  /quit        Exit`,
	RunE: runChat,
}

func runChat(cmd *cobra.Command, args []string) error {
	app, err := buildApp()
	if err != nil {
		return err
	}
	defer app.Close()

	history := app.orch.History()
	if len(history) > 0 {
		fmt.Println(history[0].Text)
	}

	reader := bufio.NewReader(os.Stdin)
	for {
		fmt.Print("\nyou> ")
		line, err := reader.ReadString('\n')
		if err != nil {
			fmt.Println()
			return nil
		}
		line = strings.TrimSpace(line)

		switch {
		case line == "":
			continue
		case line == "/quit" || line == "/exit":
			return nil
		case line == "/summarize":
			summary, err := app.orch.Summarize(cmd.Context())
			if err != nil {
				fmt.Printf("summarize failed: %v\n", err)
				continue
			}
			if summary == nil {
				fmt.Println("Nothing to summarize yet.")
				continue
			}
			fmt.Printf("Saved: %s\n", summary.Summary)
			continue
		case strings.HasPrefix(line, "/"):
			fmt.Println("Unknown command. Try /summarize or /quit.")
			continue
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), app.cfg.ModelTimeout())
		reply, err := app.orch.Turn(ctx, line)
		cancel()
		if err != nil {
			fmt.Printf("turn failed: %v\n", err)
			continue
		}
		fmt.Printf("\nassistant> %s\n", reply.Text)
	}
}
