package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"cruxy/internal/chat"
	"cruxy/internal/synthesis"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Talk to the bot persona in the terminal",
	Long: `Opens a conversational session with the bot. The session remembers
recent exchanges the same way a channel conversation would. Type /quit to
leave, /forget to start over.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		client := synthesis.NewGeminiClientWithConfig(synthesis.GeminiConfig{
			APIKey:  cfg.LLM.APIKey,
			BaseURL: cfg.LLM.BaseURL,
			Model:   cfg.LLM.Model,
			Timeout: cfg.GetLLMTimeout(),
		})
		manager := chat.NewManager(client, logger, cfg.Planner.ChatHistory)

		fmt.Println("Chatting with Cruxy. /quit to leave, /forget to start over.")
		scanner := bufio.NewScanner(os.Stdin)
		for {
			fmt.Print("you> ")
			if !scanner.Scan() {
				return scanner.Err()
			}
			line := strings.TrimSpace(scanner.Text())
			switch {
			case line == "/quit":
				return nil
			case line == "/forget":
				manager.Forget("cli")
				fmt.Println("cruxy> Fresh start! What's on your mind?")
				continue
			case line == "":
				fmt.Println("cruxy> Hello there! How can I help you today?")
				continue
			}

			reply, err := manager.Handle(ctx, "cli", line)
			if err != nil {
				fmt.Println("cruxy> Sorry, I'm having trouble with the AI service right now.")
				continue
			}
			fmt.Println("cruxy> " + reply)
		}
	},
}
