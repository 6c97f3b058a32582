package service

import (
	"fmt"
)

// Mailer delivers account emails. The core hands over a recipient and
// a finished link, nothing else.
type Mailer interface {
	SendVerificationMail(to, link string) error
	SendPasswordResetMail(to, link string) error
}

// ConsoleMailer prints mails to stdout. Good enough for local
// development until a real provider is wired in.
type ConsoleMailer struct{}

func (ConsoleMailer) SendVerificationMail(to, link string) error {
	printMail(to, "Verify your email", link)
	return nil
}

func (ConsoleMailer) SendPasswordResetMail(to, link string) error {
	printMail(to, "Reset your password", link)
	return nil
}

func printMail(to, subject, link string) {
	fmt.Printf("\n--- MyFuture: %s ---\nTo: %s\nLink: %s\n--- end ---\n\n", subject, to, link)
}
