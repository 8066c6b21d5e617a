package prompt

import (
	"github.com/manifoldco/promptui"
)

// Password prompts for a secret with masked input. Secrets are never
// pre-filled as a default; callers decide what an empty answer means.
func Password(label string) (string, error) {
	p := promptui.Prompt{
		Label: label,
		Mask:  '*',
	}

	result, err := p.Run()
	return result, wrapError(err)
}
