package services

import (
	"fmt"
	"net/smtp"
	"os"

	"github.com/chaiadda/backend/utils"
)

// Mailer delivers signup OTPs. Transport details stay behind this interface
// so the auth flow never knows whether mail actually goes out.
type Mailer interface {
	SendOTP(to, otp string) error
}

// SMTPMailer sends OTP mail through a plain-auth SMTP relay.
type SMTPMailer struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
}

func (m *SMTPMailer) SendOTP(to, otp string) error {
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: Your ChaiAdda verification code\r\n\r\n"+
		"Your one-time verification code is %s. It expires in 10 minutes.\r\n", m.From, to, otp)

	addr := m.Host + ":" + m.Port
	auth := smtp.PlainAuth("", m.Username, m.Password, m.Host)
	return smtp.SendMail(addr, auth, m.From, []string{to}, []byte(msg))
}

// LogMailer writes the OTP to the log instead of sending mail. Used in
// development and tests when no SMTP relay is configured.
type LogMailer struct{}

func (LogMailer) SendOTP(to, otp string) error {
	utils.InfoLogger.Printf("[mail] OTP for %s: %s", to, otp)
	return nil
}

// NewMailerFromEnv picks the SMTP mailer when SMTP_HOST is set, otherwise
// the log mailer.
func NewMailerFromEnv() Mailer {
	host := os.Getenv("SMTP_HOST")
	if host == "" {
		return LogMailer{}
	}

	port := os.Getenv("SMTP_PORT")
	if port == "" {
		port = "587"
	}
	from := os.Getenv("SMTP_FROM")
	if from == "" {
		from = os.Getenv("SMTP_USER")
	}

	return &SMTPMailer{
		Host:     host,
		Port:     port,
		Username: os.Getenv("SMTP_USER"),
		Password: os.Getenv("SMTP_PASS"),
		From:     from,
	}
}
