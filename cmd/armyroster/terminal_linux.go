//go:build linux

package main

import (
	"golang.org/x/sys/unix"
)

// enableCbreak switches the terminal to single-key input without echo.
// Output processing stays on so log lines keep their layout.
func enableCbreak(fd int) error {
	t, err := unix.IoctlGetTermios(fd, unix.TCGETS)
	if err != nil {
		return err
	}
	t.Lflag &^= unix.ICANON | unix.ECHO
	t.Cc[unix.VMIN] = 1
	t.Cc[unix.VTIME] = 0
	return unix.IoctlSetTermios(fd, unix.TCSETS, t)
}
