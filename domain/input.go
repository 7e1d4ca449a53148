package domain

// InputState holds the uncommitted composition fields.
// Only username and message take part in submission gating.
type InputState struct {
	Username   string `validate:"notblank"`
	Message    string `validate:"notblank"`
	Email      string
	ProfileURL string
}
