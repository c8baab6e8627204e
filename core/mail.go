package core

import "net/mail"

type (
	EmailMessage struct {
		To       []mail.Address
		Subject  string
		BodyText string
	}

	// EmailService sends messages; failures are logged, never fatal.
	EmailService interface {
		SendMessages(messages ...*EmailMessage) error
	}
)
