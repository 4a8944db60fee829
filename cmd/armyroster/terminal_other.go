//go:build !linux

package main

import (
	"golang.org/x/term"
)

// enableCbreak falls back to full raw mode where termios ioctls differ
func enableCbreak(fd int) error {
	_, err := term.MakeRaw(fd)
	return err
}
