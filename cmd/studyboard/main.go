package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"studyboard/internal/app"
	"studyboard/internal/tui"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

const version = "1.0.0"

func buildApplication(dataDir, configPath, apiKeyB64 string, debug bool) (*app.Application, error) {
	if configPath == "" {
		configPath = app.DefaultConfigPath()
	}
	cfg, err := app.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}
	if dataDir == "" {
		dataDir = app.DefaultDataRoot()
	}

	log := app.NewLogger(dataDir, debug)
	application := app.NewApplication(cfg, configPath, dataDir, log)

	// One-time credential bootstrap: the base64 value is decoded,
	// persisted, and not read again.
	if apiKeyB64 == "" {
		apiKeyB64 = os.Getenv("STUDYBOARD_API_KEY_B64")
	}
	if apiKeyB64 != "" {
		if err := application.BootstrapAPIKeyB64(apiKeyB64); err != nil {
			return nil, err
		}
	}
	if !application.HasAPIKey() {
		if key := strings.TrimSpace(os.Getenv("STUDYBOARD_API_KEY")); key != "" {
			application.SetAPIKey(key)
		}
	}
	return application, nil
}

func main() {
	var (
		dataDir    string
		configPath string
		apiKeyB64  string
		debug      bool
		noTUI      bool
	)

	root := &cobra.Command{
		Use:     "studyboard",
		Short:   "Local-first study tracker with an AI study assistant",
		Version: version,
		RunE: func(cmd *cobra.Command, args []string) error {
			application, err := buildApplication(dataDir, configPath, apiKeyB64, debug)
			if err != nil {
				return err
			}
			if noTUI {
				return printStatus(application)
			}
			p := tea.NewProgram(tui.New(application), tea.WithAltScreen())
			_, err = p.Run()
			return err
		},
	}

	root.PersistentFlags().StringVar(&dataDir, "data-dir", "", "data directory (default: XDG data dir)")
	root.PersistentFlags().StringVar(&configPath, "config", "", "config file path")
	root.PersistentFlags().StringVar(&apiKeyB64, "api-key-b64", "", "bootstrap a base64-encoded API credential")
	root.PersistentFlags().BoolVar(&debug, "debug", false, "debug logging")
	root.Flags().BoolVar(&noTUI, "no-tui", false, "print a JSON status summary and exit")

	var exportOut string
	exportCmd := &cobra.Command{
		Use:       "export [json|markdown|chat]",
		Short:     "Export the board to a file",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"json", "markdown", "chat"},
		RunE: func(cmd *cobra.Command, args []string) error {
			application, err := buildApplication(dataDir, configPath, "", debug)
			if err != nil {
				return err
			}
			var data []byte
			name := exportOut
			switch args[0] {
			case "json":
				data, err = application.ExportJSON()
				if name == "" {
					name = "learning-board.json"
				}
			case "markdown":
				data = []byte(application.ExportMarkdown())
				if name == "" {
					name = "learning-board.md"
				}
			case "chat":
				data, err = application.ExportChat()
				if name == "" {
					name = "learning-board-chat.json"
				}
			default:
				return fmt.Errorf("unknown export format: %s", args[0])
			}
			if err != nil {
				return err
			}
			if err := os.WriteFile(name, data, 0o644); err != nil {
				return err
			}
			fmt.Printf("wrote %s\n", name)
			return nil
		},
	}
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "output file")

	var importYes bool
	importCmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Replace board state from an exported JSON file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			application, err := buildApplication(dataDir, configPath, "", debug)
			if err != nil {
				return err
			}
			payload, err := application.ReadImport(args[0])
			if err != nil {
				return err
			}
			if !importYes {
				steps := 0
				if payload.AppState != nil {
					steps = len(payload.AppState.Steps)
				}
				fmt.Printf("import replaces current state (%d steps, %d chat turns); re-run with --yes to confirm\n",
					steps, len(payload.ChatHistory))
				return errors.New("import not confirmed")
			}
			application.ApplyImport(payload)
			fmt.Println("import applied")
			return nil
		},
	}
	importCmd.Flags().BoolVar(&importYes, "yes", false, "confirm the import")

	root.AddCommand(exportCmd, importCmd)

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func printStatus(application *app.Application) error {
	state := application.Ctrl.State()
	status := struct {
		Steps          int  `json:"steps"`
		TotalSeconds   int  `json:"totalSeconds"`
		Sessions       int  `json:"sessions"`
		QuestionsAsked int  `json:"questionsAsked"`
		HasCredential  bool `json:"hasCredential"`
	}{
		Steps:          len(state.Steps),
		TotalSeconds:   state.TotalTimeSeconds,
		Sessions:       app.SessionCount(state),
		QuestionsAsked: state.QuestionsAsked,
		HasCredential:  application.HasAPIKey(),
	}
	out, err := json.MarshalIndent(status, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
