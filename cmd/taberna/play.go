package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Hector-302/projecto-taberna/internal/orchestrator"
	"github.com/Hector-302/projecto-taberna/internal/session"
	"github.com/Hector-302/projecto-taberna/internal/term"
)

func playCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "play",
		Short: "Play in the terminal",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			logger := newLogger(cfg.Log.Level)

			storyMode, _ := cmd.Flags().GetBool("story")

			g, err := buildGame(cfg, logger, nil)
			if err != nil {
				return err
			}
			defer g.close()

			character := g.catalog.ActiveCharacter(cfg.Player.Character)
			renderer := term.NewRenderer(os.Stdout, character.DisplayName)
			g.orch.SetRenderer(renderer)
			g.story.SetRenderer(renderer)

			if storyMode {
				return runStoryLoop(g)
			}
			return runChatLoop(g, character.DisplayName)
		},
	}
	cmd.Flags().StringP("config", "c", "", "Path to configuration file")
	cmd.Flags().Bool("story", false, "Interactive story mode instead of tavern chat")
	return cmd
}

// runChatLoop reads lines from stdin and plays them as turns. Slash commands
// switch persona and manage the save.
func runChatLoop(g *game, playerName string) error {
	fmt.Println(g.catalog.Intro(playerName))
	fmt.Println()
	fmt.Println("Comandos: /hablar <maela|sable>  /guardar  /reset  /salir")
	fmt.Println()

	persona := "maela"
	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Printf("[%s] > ", persona)
		if !scanner.Scan() {
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "/") {
			done, err := runCommand(g, &persona, line)
			if err != nil {
				fmt.Println("Error:", err)
			}
			if done {
				return nil
			}
			continue
		}

		res, err := g.orch.Submit(context.Background(), orchestrator.TurnRequest{
			PersonaID: persona,
			Text:      line,
		})
		if err != nil {
			fmt.Println("Error:", err)
			continue
		}
		// Events print through the renderer as they land.
		<-res
	}
}

func runCommand(g *game, persona *string, line string) (done bool, err error) {
	fields := strings.Fields(line)
	switch fields[0] {
	case "/salir":
		return true, nil
	case "/guardar":
		if err := session.SaveFile(g.store, g.cfg.Session.SavePath); err != nil {
			return false, err
		}
		fmt.Println("Partida guardada en", g.cfg.Session.SavePath)
	case "/reset":
		if err := g.orch.Reset(); err != nil {
			return false, err
		}
		fmt.Println("Historia borrada. Empezamos de nuevo.")
	case "/hablar":
		if len(fields) < 2 {
			return false, fmt.Errorf("uso: /hablar <personaje>")
		}
		id := strings.ToLower(fields[1])
		if _, ok := g.catalog.Persona(id); !ok {
			return false, fmt.Errorf("no conozco a %q", fields[1])
		}
		*persona = id
	default:
		fmt.Println("Comando desconocido:", fields[0])
	}
	return false, nil
}

// runStoryLoop plays the choice-driven story flow.
func runStoryLoop(g *game) error {
	fmt.Println("Modo historia. Escribe tu accion; /salir para terminar.")
	fmt.Println()

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "/salir" {
			return nil
		}

		// Events print through the renderer; the error is already rendered.
		_, _ = g.story.Step(context.Background(), line)
	}
}
