package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/abrezinsky/armyroster/internal/app"
	"github.com/abrezinsky/armyroster/internal/config"
	"github.com/abrezinsky/armyroster/internal/logger"
)

// ANSI escape codes
const (
	reset  = "\033[0m"
	yellow = "\033[33m"
	red    = "\033[31m"
	green  = "\033[32m"
	cyan   = "\033[36m"
	bold   = "\033[1m"
)

var (
	version = "dev"
)

const usageText = `ArmyRoster - army list builder and points calculator

Usage:
  armyroster [options]

Options:
  -config str    Config file (default "armyroster.yaml", optional)
  -port int      HTTP server port (default 8081)
  -db string     SQLite database path (default "roster.db")
  -data string   Catalog and stat table directory (default "data")
  -loglevel str  Log level: debug, info, warn, error (default "info")
  -baseurl str   Public base URL for share links (default: detected LAN address)
  -nowatch       Do not reload the catalog when files change
  -nokeyboard    Disable keyboard shortcuts
  -version       Show version and exit
  -help          Show this help message

Keyboard Shortcuts (when enabled):
  h              Toggle HTTP request logging
  l              Cycle log level (debug → info → warn → error)
  r              Reload the catalog
  q              Quit server
  ?              Show keyboard help

Examples:
  armyroster                          # Run on port 8081 with roster.db
  armyroster -data ./armies           # Use a custom catalog directory
  armyroster -config club.yaml        # Load settings from a file
  armyroster -port 80 -db prod.db     # Production
`

// showLogo prints the startup banner
func showLogo() {
	width := 62
	border := strings.Repeat("═", width)

	logo := []string{
		"     _                         ____            _             ",
		"    / \\   _ __ _ __ ___  _   _|  _ \\ ___  ___| |_ ___ _ __   ",
		"   / _ \\ | '__| '_ ` _ \\| | | | |_) / _ \\/ __| __/ _ \\ '__|  ",
		"  / ___ \\| |  | | | | | | |_| |  _ < (_) \\__ \\ ||  __/ |     ",
		" /_/   \\_\\_|  |_| |_| |_|\\__, |_| \\_\\___/|___/\\__\\___|_|     ",
		"                         |___/                               ",
	}

	fmt.Printf("\n  %s╔%s╗%s\n", cyan, border, reset)
	for _, line := range logo {
		for len(line) < width {
			line += " "
		}
		fmt.Printf("  %s║%s%s%s║%s\n", cyan, yellow, line, cyan, reset)
	}
	fmt.Printf("  %s╚%s╝%s\n\n", cyan, border, reset)
}

// printKeyboardHelp displays all available keyboard shortcuts
func printKeyboardHelp() {
	fmt.Printf("\r\n%s%s  Keyboard Shortcuts:%s\r\n", bold, green, reset)
	fmt.Printf("    %sh%s      - Toggle HTTP request logging\r\n", cyan, reset)
	fmt.Printf("    %sl%s      - Cycle log level (debug → info → warn → error)\r\n", cyan, reset)
	fmt.Printf("    %sr%s      - Reload the catalog\r\n", cyan, reset)
	fmt.Printf("    %sq%s      - Quit server\r\n", cyan, reset)
	fmt.Printf("    %s?%s      - Show this help\r\n\r\n", cyan, reset)
}

func main() {
	cfg, err := config.Load(os.Args[1:], io.Discard)
	if errors.Is(err, flag.ErrHelp) {
		fmt.Fprint(os.Stderr, usageText)
		os.Exit(0)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s%v%s\n\n%s", red, err, reset, usageText)
		os.Exit(2)
	}

	if cfg.ShowVersion {
		fmt.Printf("armyroster %s\n", version)
		os.Exit(0)
	}

	showLogo()

	appLog := logger.NewWithLevel(logger.ParseLevel(cfg.LogLevel))

	a, err := app.New(appLog, cfg)
	if err != nil {
		log.Fatal("Failed to initialize application: ", err)
	}
	defer a.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if !cfg.NoKeyboard {
		printKeyboardHelp()
		go listenForKeyboard(ctx, stop, a, appLog)
	} else {
		fmt.Printf("%sKeyboard shortcuts disabled%s\n\n", yellow, reset)
	}

	if err := a.Run(ctx); err != nil {
		appLog.Error("Server failed", "error", err)
		a.Close()
		os.Exit(1)
	}
}
