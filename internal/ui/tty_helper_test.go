package ui

import (
	"os"
	"testing"

	"github.com/creack/pty"
)

func openPTYOrSkip(t *testing.T) (*os.File, *os.File) {
	master, slave, err := pty.Open()
	if err != nil {
		t.Skipf("unable to open pseudo terminal: %v", err)
	}
	return master, slave
}
