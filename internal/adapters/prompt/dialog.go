package prompt

import (
	"context"
	"errors"
	"fmt"

	"github.com/ncruces/zenity"

	"github.com/bft-labs/pwmguard/internal/confirm"
)

// Dialog asks with a desktop question dialog. Closing the dialog or
// pressing Revert reverts.
type Dialog struct {
	title    string
	question func(text string, opts ...zenity.Option) error
}

var _ confirm.Responder = (*Dialog)(nil)

// NewDialog creates a dialog responder.
func NewDialog(title string) *Dialog {
	return &Dialog{title: title, question: zenity.Question}
}

// Ask shows the dialog until the user answers or ctx ends, which closes it.
func (d *Dialog) Ask(ctx context.Context, s *confirm.Session) (confirm.Answer, error) {
	text := fmt.Sprintf("The new frequency is active.\n\nKeep it? It will be reverted automatically in %d seconds.", s.TimeLeft())
	err := d.question(text,
		zenity.Title(d.title),
		zenity.OKLabel("Keep"),
		zenity.CancelLabel("Revert"),
		zenity.WarningIcon,
		zenity.Context(ctx),
	)
	switch {
	case err == nil:
		return confirm.AnswerKeep, nil
	case ctx.Err() != nil:
		return confirm.AnswerNone, ctx.Err()
	case errors.Is(err, zenity.ErrCanceled):
		return confirm.AnswerRevert, nil
	default:
		return confirm.AnswerNone, err
	}
}

// Remaining is a no-op: the dialog text cannot be updated once shown.
func (d *Dialog) Remaining(s *confirm.Session) {}
