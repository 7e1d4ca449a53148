// Package gate decides whether a message may be submitted.
package gate

import (
	"fmt"
	"message-board/domain"
	"message-board/errors"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

// Gate validates InputState: username and message must be non-blank after
// trimming. Email and profile URL never take part.
type Gate struct {
	validate *validator.Validate
}

func New() *Gate {
	v := validator.New()
	// Registration only fails on an empty tag or a nil func.
	_ = v.RegisterValidation("notblank", validators.NotBlank)
	return &Gate{validate: v}
}

// CanSubmit reports whether state may be submitted.
func (g *Gate) CanSubmit(state domain.InputState) bool {
	return g.Validate(state) == nil
}

// Validate returns ErrSubmissionRejected wrapping the failing fields.
func (g *Gate) Validate(state domain.InputState) error {
	if err := g.validate.Struct(state); err != nil {
		return fmt.Errorf("%w: %w", errors.ErrSubmissionRejected, err)
	}
	return nil
}
