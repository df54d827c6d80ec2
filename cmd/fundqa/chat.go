package main

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"fundqa/internal/tui"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive Q&A session",
	Long: `Start an interactive terminal chat over the indexed funds.

Commands inside the chat:
  /product <name>  restrict answers to one fund (empty clears)
  /products        list indexed funds
  /clear           clear the transcript
  Ctrl+C           quit`,
	Args: cobra.NoArgs,
	RunE: runChat,
}

func init() {
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, _ []string) error {
	p, err := buildPipeline(appCfg, quietLogger())
	if err != nil {
		return err
	}
	defer p.Close()

	_, err = tea.NewProgram(tui.New(p, appCfg.Retrieval.TopK), tea.WithAltScreen()).Run()
	return err
}
