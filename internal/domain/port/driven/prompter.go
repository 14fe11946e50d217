package driven

// Prompter defines the driven port for interactive console input.
type Prompter interface {
	// Line prints the label and reads one line of input, trimmed.
	Line(label string) (string, error)

	// Secret prints the label and reads a value without echoing it.
	Secret(label string) (string, error)
}
