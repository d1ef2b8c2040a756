package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/lithammer/shortuuid/v4"
	"github.com/spf13/cobra"

	"github.com/Avaneesh16/Travel-Genie/server/service/assistant"
)

const chatPrompt = "you> "

func newChatCmd() *cobra.Command {
	var session string
	cmd := &cobra.Command{
		Use:   "chat [message]",
		Short: "Talk to the assistant from the terminal",
		Long:  "With a message argument, handle it and exit. Without one, read messages line by line until EOF or \"exit\".",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := loadProfile()
			if err != nil {
				return err
			}
			a, err := newApp(cmd.Context(), p)
			if err != nil {
				return err
			}
			defer a.Close()

			if session == "" {
				session = shortuuid.New()
			}
			out := cmd.OutOrStdout()
			if len(args) > 0 {
				return handleLine(cmd.Context(), a.assistant, session, strings.Join(args, " "), out)
			}
			return chatLoop(cmd.Context(), a.assistant, session, cmd.InOrStdin(), out)
		},
	}
	cmd.Flags().StringVar(&session, "session", "", "session ID, a new one when empty")
	return cmd
}

func chatLoop(ctx context.Context, asst *assistant.Assistant, session string, in io.Reader, out io.Writer) error {
	fmt.Fprintln(out, "🧞 Hi! I'm Genie. Ask me about your calendar or plan a trip. Type \"exit\" to quit.")
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, chatPrompt)
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		switch strings.ToLower(line) {
		case "":
			continue
		case "exit", "quit":
			return nil
		}
		if err := handleLine(ctx, asst, session, line, out); err != nil {
			fmt.Fprintln(os.Stderr, err)
		}
	}
}

func handleLine(ctx context.Context, asst *assistant.Assistant, session, line string, out io.Writer) error {
	reply, err := asst.Handle(ctx, session, line)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "genie> %s\n", reply.Text)
	for _, w := range reply.Warnings {
		fmt.Fprintf(out, "  ⚠️ %s\n", w)
	}
	return nil
}
