// Package mailer forwards contact form messages to the hospital inbox
package mailer

import (
	"fmt"

	"github.com/go-gomail/gomail"
	"github.com/lizet96/hospital-appointments/models"
)

// Sender delivers a contact message
type Sender interface {
	SendContact(msg models.ContactMessage) error
}

// SMTPSender sends mail through an SMTP relay
type SMTPSender struct {
	dialer *gomail.Dialer
	from   string
	inbox  string
}

func NewSMTPSender(host string, port int, user, password, inbox string) *SMTPSender {
	return &SMTPSender{
		dialer: gomail.NewDialer(host, port, user, password),
		from:   user,
		inbox:  inbox,
	}
}

// SendContact forwards msg with Reply-To set to the visitor's address
func (s *SMTPSender) SendContact(msg models.ContactMessage) error {
	if err := s.dialer.DialAndSend(ContactMessage(s.from, s.inbox, msg)); err != nil {
		return fmt.Errorf("error sending email: %v", err)
	}
	return nil
}

// ContactMessage composes the forwarded e-mail
func ContactMessage(from, inbox string, msg models.ContactMessage) *gomail.Message {
	m := gomail.NewMessage()
	m.SetHeader("From", from)
	m.SetHeader("To", inbox)
	m.SetAddressHeader("Reply-To", msg.Email, msg.Name)
	m.SetHeader("Subject", "[Contact] "+msg.Subject)
	m.SetBody("text/plain", fmt.Sprintf("From: %s <%s>\n\n%s", msg.Name, msg.Email, msg.Message))
	return m
}
