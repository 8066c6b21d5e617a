// Package prompt provides interactive terminal prompts for CLI commands.
package prompt

import (
	"fmt"

	"github.com/manifoldco/promptui"
)

// ConfirmDanger guards an irreversible operation behind a typed confirmation.
// The user must type confirmWord (typically the bucket name) exactly; the
// prompt re-asks until it matches. Returns ErrAborted on Ctrl+C.
func ConfirmDanger(label, confirmWord string) error {
	p := promptui.Prompt{
		Label: fmt.Sprintf("%s (type %q to confirm)", label, confirmWord),
		Validate: func(input string) error {
			if input != confirmWord {
				return fmt.Errorf("type %q to confirm", confirmWord)
			}
			return nil
		},
	}

	_, err := p.Run()
	return wrapError(err)
}
