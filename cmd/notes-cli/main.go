package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"ai-notes-backend/internal/apiclient"
	"ai-notes-backend/internal/chatstore"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

var (
	serverURL string
	stateDir  string
	timeout   time.Duration
)

var rootCmd = &cobra.Command{
	Use:          "notes-cli",
	Short:        "Chat with your notes from the terminal",
	SilenceUsage: true,
}

func init() {
	defaultURL := os.Getenv("AI_NOTES_URL")
	if defaultURL == "" {
		defaultURL = "http://localhost:3000"
	}

	rootCmd.PersistentFlags().StringVar(&serverURL, "server", defaultURL, "base URL of the notes server")
	rootCmd.PersistentFlags().StringVar(&stateDir, "state-dir", defaultStateDir(), "directory holding the token and chat history")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 90*time.Second, "request timeout")

	rootCmd.AddCommand(loginCmd, askCmd, clearChatCmd, searchCmd)
}

func defaultStateDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".ai-notes"
	}
	return filepath.Join(dir, "ai-notes")
}

func newStore() *chatstore.Store {
	return chatstore.New(afero.NewOsFs(), stateDir)
}

func newClient() *apiclient.Client {
	return apiclient.New(serverURL, timeout)
}

// requireToken returns the stored session token or an error asking to log in.
func requireToken(store *chatstore.Store) (string, error) {
	token, err := store.Token()
	if err != nil {
		return "", err
	}
	if token == "" {
		return "", fmt.Errorf("not logged in, run: notes-cli login --email you@example.com --password ...")
	}
	return token, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
