// Package prompt implements the Prompter port on the process terminal.
package prompt

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/ericfisherdev/keyprov/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.Prompter = (*Terminal)(nil)

// Terminal reads interactive input and writes prompt labels to out.
// Prompts go to stderr in production so stdout stays clean for results.
// Reads share one buffered reader, so piped input survives across
// consecutive prompts.
type Terminal struct {
	in  *bufio.Reader
	out io.Writer

	// stdinFD is the file descriptor used for no-echo reads; -1 disables
	// terminal handling (Secret falls back to a plain line read, which is
	// what happens under tests or when input is piped).
	stdinFD int
}

// New returns a Terminal bound to os.Stdin and os.Stderr.
func New() *Terminal {
	return &Terminal{
		in:      bufio.NewReader(os.Stdin),
		out:     os.Stderr,
		stdinFD: int(os.Stdin.Fd()),
	}
}

// NewWithStreams returns a Terminal reading from in and prompting to out,
// with no-echo handling disabled. Intended for tests.
func NewWithStreams(in io.Reader, out io.Writer) *Terminal {
	return &Terminal{in: bufio.NewReader(in), out: out, stdinFD: -1}
}

// Line prints the label and reads one line of input, trimmed of surrounding
// whitespace.
func (t *Terminal) Line(label string) (string, error) {
	if _, err := fmt.Fprint(t.out, label); err != nil {
		return "", fmt.Errorf("write prompt: %w", err)
	}
	text, err := t.in.ReadString('\n')
	if err != nil && !(err == io.EOF && text != "") {
		return "", fmt.Errorf("read input: %w", err)
	}
	return strings.TrimSpace(text), nil
}

// Secret prints the label and reads a value without echoing it when stdin is
// a terminal. When it is not (piped input, tests), the value is read as a
// plain line instead.
func (t *Terminal) Secret(label string) (string, error) {
	if t.stdinFD < 0 || !term.IsTerminal(t.stdinFD) {
		return t.Line(label)
	}

	if _, err := fmt.Fprint(t.out, label); err != nil {
		return "", fmt.Errorf("write prompt: %w", err)
	}
	secret, err := term.ReadPassword(t.stdinFD)
	if err != nil {
		return "", fmt.Errorf("read secret: %w", err)
	}
	// ReadPassword swallows the user's newline; print one so the next line
	// of output does not continue the prompt line.
	fmt.Fprintln(t.out)
	return string(secret), nil
}
