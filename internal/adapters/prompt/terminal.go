// Package prompt provides the user-facing confirmation responders.
package prompt

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/bft-labs/pwmguard/internal/confirm"
)

// Terminal asks on a text stream. Anything but an explicit yes reverts.
type Terminal struct {
	in  *bufio.Reader
	out io.Writer
}

var _ confirm.Responder = (*Terminal)(nil)

// NewTerminal creates a responder reading answers from in.
func NewTerminal(in io.Reader, out io.Writer) *Terminal {
	return &Terminal{in: bufio.NewReader(in), out: out}
}

type line struct {
	text string
	err  error
}

// Ask prints the question and waits for one line. If ctx ends first the
// pending read is abandoned.
func (t *Terminal) Ask(ctx context.Context, s *confirm.Session) (confirm.Answer, error) {
	fmt.Fprintf(t.out, "Is the screen still readable? Keep the new frequency? [y/N] (reverting in %ds) ", s.TimeLeft())

	lines := make(chan line, 1)
	go func() {
		text, err := t.in.ReadString('\n')
		lines <- line{text, err}
	}()

	select {
	case <-ctx.Done():
		fmt.Fprintln(t.out)
		return confirm.AnswerNone, ctx.Err()
	case l := <-lines:
		if l.err != nil && strings.TrimSpace(l.text) == "" {
			return confirm.AnswerNone, l.err
		}
		return parseAnswer(l.text), nil
	}
}

// Remaining prints the countdown every five seconds and for the last three.
func (t *Terminal) Remaining(s *confirm.Session) {
	left := s.TimeLeft()
	if left%5 == 0 || left <= 3 {
		fmt.Fprintf(t.out, "(%ds) ", left)
	}
}

func parseAnswer(text string) confirm.Answer {
	switch strings.ToLower(strings.TrimSpace(text)) {
	case "y", "yes", "k", "keep":
		return confirm.AnswerKeep
	default:
		return confirm.AnswerRevert
	}
}
