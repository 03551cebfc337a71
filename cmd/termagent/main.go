// Package main wires configuration, the OpenAI provider, tool registration,
// and the interactive chat loop.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/mizukiho/termagent/pkg/chat"
	"github.com/mizukiho/termagent/pkg/config"
	"github.com/mizukiho/termagent/pkg/llm/openai"
	"github.com/mizukiho/termagent/pkg/logger"
	"github.com/mizukiho/termagent/pkg/prompt"
	"github.com/mizukiho/termagent/pkg/tools"
)

// main is the program entry point.
func main() {
	var (
		configPath  = flag.String("config", "", "Path to a YAML settings file")
		verbose     = flag.Bool("verbose", false, "Verbose structured logging to stderr")
		maxTokens   = flag.Int("max-tokens", 0, "Override the completion token cap")
		temperature = flag.Float64("temperature", -1, "Override the sampling temperature (0 is honored; negative keeps the configured value)")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fatal(err)
	}
	cfg.Verbose = *verbose
	if *maxTokens > 0 {
		cfg.MaxTokens = *maxTokens
	}
	if *temperature >= 0 {
		cfg.Temperature = *temperature
	}
	if err := cfg.Validate(); err != nil {
		fatal(err)
	}

	initial := strings.TrimSpace(strings.Join(flag.Args(), " "))

	// The create-file form skips the chat loop and the confirmation gate
	// entirely: it writes an empty file and exits.
	if name, ok := parseCreateCommand(initial); ok {
		if err := runCreate(name); err != nil {
			fatal(fmt.Errorf("create %s: %w", name, err))
		}
		fmt.Printf("Created %s\n", name)
		return
	}

	var appLogger logger.Logger = logger.NopLogger{}
	if cfg.Verbose {
		appLogger = logger.NewWriterLogger(os.Stderr)
	}

	stdin := bufio.NewReader(os.Stdin)
	registry := tools.NewRegistry(tools.Options{
		Confirmer: tools.NewTerminalConfirmer(stdin, os.Stdout),
		Logger:    appLogger,
		Verbose:   cfg.Verbose,
	})

	provider := openai.New(cfg.APIKey, cfg.BaseURL, cfg.Model)
	session := chat.NewSession(provider, registry, chat.Options{
		Out:          os.Stdout,
		SystemPrompt: prompt.System(registry.Definitions()),
		MaxTokens:    cfg.MaxTokens,
		Temperature:  cfg.Temperature,
		Logger:       appLogger,
		Verbose:      cfg.Verbose,
	})

	printWelcome()
	if err := session.Run(context.Background(), stdin, initial); err != nil {
		fatal(err)
	}
}

// printWelcome prints the welcome banner.
func printWelcome() {
	fmt.Println("=== termagent ===")
	fmt.Println("Type your message and press Enter. Type 'exit' to quit.")
	fmt.Println()
}

func fatal(err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}
