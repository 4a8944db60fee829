package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/abrezinsky/armyroster/internal/logger"
)

// controller is the part of the app the keyboard shortcuts drive
type controller interface {
	ReloadCatalog(ctx context.Context) error
	Armies() int
}

// handleKey performs the action bound to key and reports whether the server
// should shut down
func handleKey(ctx context.Context, key byte, a controller, appLog logger.Logger, out io.Writer) bool {
	switch strings.ToLower(string(key)) {
	case "h":
		if appLog.IsHTTPLoggingEnabled() {
			appLog.DisableHTTPLogging()
			fmt.Fprintf(out, "%sHTTP logging disabled%s\r\n", yellow, reset)
		} else {
			appLog.EnableHTTPLogging()
			fmt.Fprintf(out, "%sHTTP logging enabled%s\r\n", green, reset)
		}
	case "l":
		next := logger.NextLevel(appLog.GetLevel())
		appLog.SetLevel(next)
		fmt.Fprintf(out, "%sLog level: %s%s%s\r\n", green, yellow, strings.ToLower(next.String()), reset)
	case "r":
		if err := a.ReloadCatalog(ctx); err != nil {
			fmt.Fprintf(out, "%sCatalog reload failed: %v%s\r\n", red, err, reset)
			return false
		}
		fmt.Fprintf(out, "%sCatalog reloaded: %d armies%s\r\n", green, a.Armies(), reset)
	case "?":
		printKeyboardHelp()
	case "q", "\x03": // Ctrl+C arrives as a byte while the terminal is in cbreak mode
		fmt.Fprintf(out, "%sShutting down server...%s\r\n", yellow, reset)
		return true
	}
	return false
}

// listenForKeyboard reads single key presses from stdin until a quit key is
// pressed or ctx is done. It does nothing when stdin is not a terminal.
func listenForKeyboard(ctx context.Context, quit context.CancelFunc, a controller, appLog logger.Logger) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return
	}

	state, err := term.GetState(fd)
	if err != nil {
		return
	}
	if err := enableCbreak(fd); err != nil {
		appLog.Debug("Keyboard shortcuts unavailable", "error", err)
		return
	}
	restore := func() { term.Restore(fd, state) }
	defer restore()
	go func() {
		<-ctx.Done()
		restore()
	}()

	buf := make([]byte, 1)
	for {
		n, err := os.Stdin.Read(buf)
		if err != nil {
			return
		}
		if n == 0 {
			continue
		}
		if handleKey(ctx, buf[0], a, appLog, os.Stdout) {
			quit()
			return
		}
	}
}
