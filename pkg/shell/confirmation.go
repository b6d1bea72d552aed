package shell

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"
)

// Prompter asks the user to confirm an action.
type Prompter interface {
	// Confirm shows message and returns true for "y" or "yes".
	Confirm(message string) (bool, error)
}

// InteractivePrompter reads answers from a plain reader.
type InteractivePrompter struct {
	reader *bufio.Reader
	writer io.Writer
}

// NewInteractivePrompterWithIO creates a prompter over reader and writer.
func NewInteractivePrompterWithIO(reader io.Reader, writer io.Writer) *InteractivePrompter {
	return &InteractivePrompter{reader: bufio.NewReader(reader), writer: writer}
}

// Confirm implements Prompter. Anything but an explicit yes, including
// EOF, declines.
func (p *InteractivePrompter) Confirm(message string) (bool, error) {
	fmt.Fprintf(p.writer, "%s [y/N]: ", message)

	line, err := p.reader.ReadString('\n')
	if err != nil && err != io.EOF {
		return false, fmt.Errorf("failed to read confirmation: %w", err)
	}
	return isYes(line), nil
}

// readlinePrompter asks through the shell's own line editor so the answer
// does not compete with it for stdin.
type readlinePrompter struct {
	rl     *readline.Instance
	prompt string
}

func (p *readlinePrompter) Confirm(message string) (bool, error) {
	p.rl.SetPrompt(message + " [y/N]: ")
	defer p.rl.SetPrompt(p.prompt)

	line, err := p.rl.Readline()
	if err == readline.ErrInterrupt || err == io.EOF {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read confirmation: %w", err)
	}
	return isYes(line), nil
}

func isYes(answer string) bool {
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes"
}

var (
	_ Prompter = (*InteractivePrompter)(nil)
	_ Prompter = (*readlinePrompter)(nil)
)
