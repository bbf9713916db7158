package ui

import (
	"errors"

	"github.com/atotto/clipboard"
)

// Clipboard receives the generated message.
type Clipboard interface {
	WriteAll(text string) error
}

// ErrClipboardUnsupported is returned when no clipboard utility is installed.
var ErrClipboardUnsupported = errors.New("no clipboard utility available (install xclip, xsel or wl-clipboard)")

// SystemClipboard writes to the operating system clipboard.
type SystemClipboard struct{}

// WriteAll copies text to the clipboard.
func (SystemClipboard) WriteAll(text string) error {
	if clipboard.Unsupported {
		return ErrClipboardUnsupported
	}
	return clipboard.WriteAll(text)
}
