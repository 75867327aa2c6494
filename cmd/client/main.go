package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"chat-direct/client"
	"chat-direct/domain"

	"github.com/kelseyhightower/envconfig"
	"github.com/mama165/sdk-go/logs"
)

// Exit codes for the client application.
const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

// Config defines the client-side environment variables.
type Config struct {
	ServerURL string `envconfig:"CHAT_SERVER_URL" default:"http://localhost:8080"`
	Email     string `envconfig:"CHAT_EMAIL" required:"true"`
	Password  string `envconfig:"CHAT_PASSWORD" required:"true"`
	PeerID    string `envconfig:"CHAT_PEER_ID" required:"true"`
	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
}

func main() {
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Client error: %v\n", err)
	}
	os.Exit(code)
}

// run handles the client lifecycle: configuration, login, the real-time
// subscription to one conversation, and an input loop for sending.
func run() (int, error) {
	// 1. Load configuration from environment variables.
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}

	log := logs.GetLoggerFromString(config.LogLevel)

	// 2. Setup context to handle termination signals (Ctrl+C).
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Authenticate and open the real-time channel.
	c := client.New(config.ServerURL, log)
	if _, err := c.Login(ctx, config.Email, config.Password); err != nil {
		return exitRuntime, fmt.Errorf("login failed: %w", err)
	}
	if err := c.Connect(ctx); err != nil {
		return exitRuntime, err
	}

	// 4. Show the existing transcript, then subscribe to the conversation.
	history, err := c.Messages(ctx, config.PeerID)
	if err != nil {
		return exitRuntime, err
	}
	for _, message := range history {
		printMessage(message)
	}

	sub := c.Subscribe(config.PeerID, printMessage)
	defer c.Unsubscribe(sub)

	log.Info(fmt.Sprintf(">>> Connected to %s! Chatting with %s (Ctrl+C to quit)...",
		config.ServerURL, config.PeerID))

	// 5. Input loop: every stdin line becomes a message.
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			log.Info("Stopping client...")
			return exitOK, nil
		case line, ok := <-lines:
			if !ok {
				return exitOK, nil
			}
			if line == "" {
				continue
			}
			if _, err := c.Send(ctx, config.PeerID, line, ""); err != nil {
				log.Error("Send failed", "error", err)
			}
		}
	}
}

func printMessage(message domain.Message) {
	body := message.Text
	if body == "" {
		body = message.ImageURL
	}
	fmt.Printf("[%s] %s: %s\n",
		message.CreatedAt.Format(time.TimeOnly),
		message.SenderID,
		body,
	)
}
