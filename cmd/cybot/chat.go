package main

import (
	"bufio"
	"fmt"
	"strings"

	"cybot-be/internal/dto"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var showContext bool

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Chat with CyBot in the terminal",
	Long: `Opens one chat session and reads one message per line.

Commands:
  /reset   start the conversation over
  /draft   show the complaint being filed
  /exit    leave`,
	Args: cobra.NoArgs,
	RunE: runChat,
}

func init() {
	chatCmd.Flags().BoolVar(&showContext, "show-context", false, "print the document context behind each answer")
}

func runChat(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	c, err := boot(ctx)
	if err != nil {
		return err
	}

	session, err := c.ChatbotService.CreateSession(ctx)
	if err != nil {
		return err
	}
	bot := color.New(color.FgCyan)
	meta := color.New(color.Faint)

	bot.Printf("Bot: %s\n", session.Greeting)

	scanner := bufio.NewScanner(cmd.InOrStdin())
	for {
		color.New(color.FgGreen, color.Bold).Print("You: ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())

		switch line {
		case "":
			continue
		case "/exit", "/quit":
			return nil
		case "/reset":
			res, err := c.ChatbotService.ResetSession(ctx, session.Id)
			if err != nil {
				return err
			}
			bot.Printf("Bot: %s\n", res.Greeting)
			continue
		case "/draft":
			draft, err := c.ChatbotService.GetDraft(ctx, session.Id)
			if err != nil {
				return err
			}
			printDraft(draft)
			continue
		}

		res, err := c.ChatbotService.SendChat(ctx, &dto.SendChatRequest{
			ChatSessionId: session.Id,
			Chat:          line,
			ShowContext:   showContext,
		})
		if err != nil {
			color.Red("Error: %v", err)
			continue
		}

		if res.Refinement != nil && res.Refinement.Refined != res.Refinement.Original {
			meta.Printf("(refined: %s)\n", res.Refinement.Refined)
		}
		if res.Context != "" {
			meta.Printf("--- context ---\n%s\n---------------\n", res.Context)
		}
		bot.Printf("Bot: %s\n", res.Reply)
		meta.Printf("[%s]\n", res.Action)
	}
}

func printDraft(d *dto.ComplaintDraftResponse) {
	if !d.Active {
		color.Yellow("No complaint in progress")
		return
	}
	color.Yellow("Complaint in progress (asking for %s)", d.CurrentField)
	fmt.Printf("  Name:    %s\n  Phone:   %s\n  Email:   %s\n  Details: %s\n", d.Name, d.PhoneNumber, d.Email, d.Details)
}
