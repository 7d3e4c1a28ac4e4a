package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/akolanti/ChatPDF/internal/client"
	"github.com/akolanti/ChatPDF/internal/tui"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	addr := flag.String("addr", "http://localhost:3000", "ChatPDF server address")
	token := flag.String("token", os.Getenv("AUTH_TOKEN"), "bearer token, defaults to AUTH_TOKEN")
	timeout := flag.Duration("timeout", 30*time.Second, "timeout of a single HTTP request")
	flag.Parse()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	c := client.New(*addr, *token, *timeout)
	if _, err := tea.NewProgram(tui.New(ctx, c), tea.WithAltScreen()).Run(); err != nil {
		fmt.Fprintln(os.Stderr, "tui error:", err)
		os.Exit(1)
	}
}
