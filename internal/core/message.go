package core

// Message is a submission taken from the message form.
type Message struct {
	Username string
	Text     string
}

// NewMessage builds a message from raw form values.
func NewMessage(username, text string) Message {
	return Message{Username: username, Text: text}
}

// Validate reports ErrEmptyField when either field is empty.
func (m Message) Validate() error {
	if m.Username == "" || m.Text == "" {
		return ErrEmptyField
	}
	return nil
}

