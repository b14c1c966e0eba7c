// Command convo is an interactive REPL over the conversational core: pick a
// backend from the environment credentials (or flags), keep one conversation
// going across turns, and stream replies as they arrive.
//
// Credentials come from the environment (or a .env file): ANTHROPIC_API_KEY
// selects the native SDK backend, OPENAI_API_KEY the OpenAI-compatible REST
// backend. See providers/ai/auto for the precedence.
package main

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/urfave/cli/v3"

	_ "github.com/joho/godotenv/autoload"

	"github.com/zhwei/convo/core/prompt"
	"github.com/zhwei/convo/providers/ai"
	"github.com/zhwei/convo/providers/ai/auto"
	"github.com/zhwei/convo/providers/ai/openai"
	"github.com/zhwei/convo/providers/observability"
	"github.com/zhwei/convo/providers/observability/slogobs"
)

const version = "0.1.0"

func main() {
	cmd := &cli.Command{
		Name:    "convo",
		Usage:   "chat with an LLM backend from the terminal",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "provider", Usage: "backend name (anthropic, openai); default: pick from environment credentials"},
			&cli.StringFlag{Name: "base-url", Usage: "override the REST base URL (implies the openai adapter)"},
			&cli.StringFlag{Name: "model", Usage: "model to use"},
			&cli.StringFlag{Name: "system-prompt", Usage: "system prompt text"},
			&cli.StringFlag{Name: "system-template", Usage: "path to a system prompt template file"},
			&cli.StringSliceFlag{Name: "var", Usage: "template variable as key=value (repeatable)"},
			&cli.BoolFlag{Name: "stream", Value: true, Usage: "stream the reply token by token"},
			&cli.BoolFlag{Name: "list-models", Usage: "list available models and exit"},
			&cli.BoolFlag{Name: "verbose", Usage: "enable debug logging"},
		},
		Action: run,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cmd *cli.Command) error {
	level := slog.LevelWarn
	if cmd.Bool("verbose") {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	ctx = observability.With(ctx, slogobs.New(logger))

	provider, err := selectProvider(cmd)
	if err != nil {
		return err
	}

	vars, err := parseVars(cmd.StringSlice("var"))
	if err != nil {
		return err
	}

	service, err := prompt.New(prompt.Config{
		Provider:           provider,
		Model:              cmd.String("model"),
		SystemTemplatePath: cmd.String("system-template"),
		SystemVars:         vars,
	})
	if err != nil {
		return err
	}

	if systemPrompt := cmd.String("system-prompt"); systemPrompt != "" {
		if err := service.Client().SetSystemPrompt(ctx, systemPrompt); err != nil {
			return err
		}
	}

	if cmd.Bool("list-models") {
		printModels(service.Client().Models(ctx))
		return nil
	}

	return repl(ctx, service, provider, cmd.Bool("stream"))
}

// selectProvider resolves the backend: an explicit --provider name wins, a
// --base-url implies the REST adapter, otherwise the environment credential
// precedence decides.
func selectProvider(cmd *cli.Command) (ai.Provider, error) {
	if baseURL := cmd.String("base-url"); baseURL != "" {
		return openai.New().WithBaseURL(baseURL), nil
	}
	if name := cmd.String("provider"); name != "" {
		return auto.New(name)
	}
	provider, err := auto.FromEnv()
	if err != nil {
		return nil, fmt.Errorf("%w (set ANTHROPIC_API_KEY or OPENAI_API_KEY)", err)
	}
	return provider, nil
}

func parseVars(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	vars := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid --var %q, want key=value", pair)
		}
		vars[key] = value
	}
	return vars, nil
}

func printModels(models []ai.ModelInfo) {
	if len(models) == 0 {
		fmt.Println("Unable to get model list")
		return
	}
	fmt.Println("\nAvailable models:")
	fmt.Println(strings.Repeat("-", 50))
	for i, model := range models {
		fmt.Printf("%2d. %-30s (Owner: %s)\n", i+1, model.ID, model.OwnedBy)
	}
	fmt.Println(strings.Repeat("-", 50))
}

func repl(ctx context.Context, service *prompt.Service, provider ai.Provider, stream bool) error {
	fmt.Printf("convo %s (provider: %s)\n", version, provider.Name())
	fmt.Println("Type 'quit' to exit, 'clear' to clear history, 'models' to list models")
	fmt.Println("Type 'system <prompt>' to set the system prompt, 'show_system' to show it")
	fmt.Println(strings.Repeat("-", 50))

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("\nYou: ")
		if !scanner.Scan() {
			fmt.Println("\nGoodbye!")
			return scanner.Err()
		}
		input := strings.TrimSpace(scanner.Text())

		switch {
		case input == "":
			continue

		case input == "quit" || input == "exit":
			fmt.Println("Goodbye!")
			return nil

		case input == "clear":
			if err := service.Client().ClearHistory(ctx, true); err != nil {
				return err
			}
			fmt.Println("Conversation history cleared")
			continue

		case input == "models":
			printModels(service.Client().Models(ctx))
			continue

		case strings.HasPrefix(input, "system "):
			systemPrompt := strings.TrimSpace(strings.TrimPrefix(input, "system "))
			if systemPrompt == "" {
				fmt.Println("Please provide a system prompt after 'system'")
				continue
			}
			if err := service.Client().SetSystemPrompt(ctx, systemPrompt); err != nil {
				return err
			}
			fmt.Println("System prompt set:", systemPrompt)
			continue

		case input == "show_system":
			systemPrompt, ok, err := service.SystemPrompt(ctx)
			if err != nil {
				return err
			}
			if ok {
				fmt.Println("Current system prompt:", systemPrompt)
			} else {
				fmt.Println("No system prompt set")
			}
			continue
		}

		if err := sendTurn(ctx, service, input, stream); err != nil {
			// The turn failed but the session is still usable; the
			// user message stays in history per the commit rules.
			fmt.Fprintln(os.Stderr, "\nError:", err)
		}
	}
}

func sendTurn(ctx context.Context, service *prompt.Service, input string, stream bool) error {
	fmt.Println("\nAssistant:")
	fmt.Println(strings.Repeat("-", 30))

	if stream {
		_, err := service.Stream(ctx, input, func(chunk ai.StreamChunk) error {
			fmt.Print(chunk.ContentDelta)
			return nil
		})
		fmt.Println()
		fmt.Println(strings.Repeat("-", 30))
		return err
	}

	response, err := service.Send(ctx, input)
	if err != nil {
		return err
	}
	fmt.Println(response.Content)
	fmt.Println(strings.Repeat("-", 30))
	return nil
}
