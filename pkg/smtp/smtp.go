package smtp

import (
	"fmt"
	smtpPkg "net/smtp"
	"os"

	"CallWaitingAI/pkg/outbound"
)

type ItfSmtp interface {
	SendBookingConfirmation(userEmail string, bookingDate string, bookingTime string) error
}

type smtp struct {
	auth smtpPkg.Auth
	mail string
	host string
	addr string
}

func New() (ItfSmtp, error) {
	mail := os.Getenv("SMTP_MAIL")
	password := os.Getenv("SMTP_PASSWORD")
	if mail == "" || password == "" {
		return nil, outbound.ErrNotConfigured
	}

	host := os.Getenv("SMTP_HOST")
	if host == "" {
		host = "smtp.gmail.com"
	}

	auth := smtpPkg.PlainAuth("", mail, password, host)

	return &smtp{
		auth: auth,
		mail: mail,
		host: host,
		addr: host + ":587",
	}, nil
}

func (s *smtp) SendBookingConfirmation(userEmail string, bookingDate string, bookingTime string) error {
	to := []string{userEmail}

	when := bookingDate
	if bookingTime != "" {
		when = fmt.Sprintf("%s at %s", bookingDate, bookingTime)
	}

	message := []byte(fmt.Sprintf(
		"To: %s\r\nSubject: Your booking is confirmed\r\n\r\nHello, your booking with CallWaitingAI for %s is confirmed. We look forward to speaking with you.",
		userEmail, when))

	if err := smtpPkg.SendMail(s.addr, s.auth, s.mail, to, message); err != nil {
		return err
	}

	return nil
}
