package gate

import (
	"message-board/domain"
	"message-board/errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGate_CanSubmit(t *testing.T) {
	g := New()

	tests := []struct {
		name     string
		state    domain.InputState
		expected bool
	}{
		{
			name:     "Both present",
			state:    domain.InputState{Username: "Ada", Message: "hi"},
			expected: true,
		},
		{
			name:     "Empty username",
			state:    domain.InputState{Username: "", Message: "hi"},
			expected: false,
		},
		{
			name:     "Whitespace username",
			state:    domain.InputState{Username: " \t\n", Message: "hi"},
			expected: false,
		},
		{
			name:     "Empty message",
			state:    domain.InputState{Username: "Ada", Message: ""},
			expected: false,
		},
		{
			name:     "Whitespace message",
			state:    domain.InputState{Username: "Ada", Message: "   "},
			expected: false,
		},
		{
			name:     "Padded values are accepted",
			state:    domain.InputState{Username: "  Ada  ", Message: "  hi "},
			expected: true,
		},
		{
			name:     "Email and profile do not open the gate",
			state:    domain.InputState{Email: "ada@example.com", ProfileURL: "https://x/a.png"},
			expected: false,
		},
		{
			name:     "Email and profile do not close the gate",
			state:    domain.InputState{Username: "Ada", Message: "hi", Email: "not an email", ProfileURL: "::"},
			expected: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, g.CanSubmit(tt.state))
		})
	}
}

func TestGate_Validate_WrapsSentinel(t *testing.T) {
	req := require.New(t)
	g := New()

	err := g.Validate(domain.InputState{Username: "Ada"})
	req.ErrorIs(err, errors.ErrSubmissionRejected)
	req.Contains(err.Error(), "Message")

	req.NoError(g.Validate(domain.InputState{Username: "Ada", Message: "hi"}))
}
