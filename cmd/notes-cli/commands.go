package main

import (
	"fmt"
	"strings"

	"ai-notes-backend/internal/models"
	"ai-notes-backend/internal/search"

	"github.com/spf13/cobra"
)

var (
	loginEmail    string
	loginPassword string
	searchLimit   float64
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in and remember the session token",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		token, err := newClient().Login(loginEmail, loginPassword)
		if err != nil {
			return err
		}
		if err := newStore().SaveToken(token); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Logged in.")
		return nil
	},
}

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Ask the assistant about your notes",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store := newStore()
		token, err := requireToken(store)
		if err != nil {
			return err
		}
		history, err := store.Messages()
		if err != nil {
			return err
		}

		question := strings.Join(args, " ")
		answer, err := newClient().Ask(token, question, history)
		if err != nil {
			// History stays as it was.
			return err
		}

		if err := store.Append(
			models.ChatMessage{Role: models.RoleUser, Content: question},
			models.ChatMessage{Role: models.RoleAssistant, Content: answer},
		); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), answer)
		return nil
	},
}

var clearChatCmd = &cobra.Command{
	Use:   "clear-chat",
	Short: "Forget the local chat history",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := newStore().Clear(); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Chat cleared.")
		return nil
	},
}

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Fuzzy search your notes",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		token, err := requireToken(newStore())
		if err != nil {
			return err
		}
		notes, err := newClient().Notes(token, "")
		if err != nil {
			return err
		}

		matches := search.New(notes, search.WithThreshold(searchLimit)).Search(strings.Join(args, " "))
		out := cmd.OutOrStdout()
		if len(matches) == 0 {
			fmt.Fprintln(out, "No notes found.")
			return nil
		}
		for _, note := range matches {
			fmt.Fprintf(out, "%s  %s\n", note.ID, preview(note.Text))
		}
		return nil
	},
}

func init() {
	loginCmd.Flags().StringVar(&loginEmail, "email", "", "account email")
	loginCmd.Flags().StringVar(&loginPassword, "password", "", "account password")
	_ = loginCmd.MarkFlagRequired("email")
	_ = loginCmd.MarkFlagRequired("password")

	searchCmd.Flags().Float64Var(&searchLimit, "threshold", search.DefaultThreshold, "match threshold, 0 is exact and 1 matches anything")
}

// preview returns the first line of text, cut to 60 runes.
func preview(text string) string {
	line, _, _ := strings.Cut(text, "\n")
	if r := []rune(line); len(r) > 60 {
		return string(r[:60]) + "..."
	}
	if line == "" {
		return "(empty)"
	}
	return line
}
