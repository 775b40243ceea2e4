package main

import (
	"context"
	"errors"
	"flag"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"

	"github.com/chzyer/readline"
	"github.com/gabriel-adutra/deploy-of-an-API-for-text-generation-from-images-using-an-LLM-and-Docker/internal/client"
	"github.com/gabriel-adutra/deploy-of-an-API-for-text-generation-from-images-using-an-LLM-and-Docker/internal/config"
	"github.com/joho/godotenv"
)

func main() {
	imagePath := flag.String("image", "", "Image file to ask about")
	question := flag.String("question", "", "Question about the image; prompts interactively when empty")
	endpoint := flag.String("endpoint", "", "VQA endpoint URL (overrides VQA_ENDPOINT and the profile)")
	profile := flag.String("config", "", "Optional YAML profile")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("failed to load .env: %v\n", err)
	}

	cfg, err := config.LoadClient(*profile)
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	if *endpoint != "" {
		cfg.Endpoint = *endpoint
	}

	logger, closeLog := newLogger(cfg.LogFile)
	defer closeLog()

	image, err := client.OpenFile(*imagePath)
	if err != nil {
		log.Fatalf("open image: %v", err)
	}

	submitter := client.NewSubmitter(
		cfg.Endpoint,
		client.NewTerminalView(os.Stdout, os.Stderr),
		client.WithHTTPClient(&http.Client{Timeout: cfg.Timeout}),
		client.WithLogger(logger),
	)

	if *question != "" {
		if err := submitter.Submit(ctx, client.Form{Image: image, Question: *question}); err != nil {
			os.Exit(1)
		}
		return
	}

	if err := interactive(ctx, submitter, image); err != nil {
		log.Fatalf("prompt error: %v", err)
	}
}

// interactive submits one form per question line until EOF or interrupt.
func interactive(ctx context.Context, submitter *client.Submitter, image *client.File) error {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "question> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return err
	}
	defer rl.Close()

	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) || errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		_ = submitter.Submit(ctx, client.Form{Image: image, Question: line})
		if ctx.Err() != nil {
			return nil
		}
	}
}

// newLogger writes request failures to path, or to stderr when path is empty.
func newLogger(path string) (*log.Logger, func()) {
	if path == "" {
		return log.New(os.Stderr, "", log.LstdFlags), func() {}
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		log.Printf("log file unavailable, logging to console: %v\n", err)
		return log.New(os.Stderr, "", log.LstdFlags), func() {}
	}
	return log.New(f, "", log.LstdFlags), func() { f.Close() }
}
