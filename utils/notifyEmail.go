package utils

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"gopkg.in/gomail.v2"
)

// SendCancellationEmail notifies a registered patient that their token was
// cancelled after repeated missed check-ins. Best effort: callers log the
// error and move on.
func SendCancellationEmail(email, patientName string, tokenNumber int) error {
	fromEmail := os.Getenv("SMTP_USER")

	m := gomail.NewMessage()
	m.SetHeader("From", fromEmail)
	m.SetHeader("To", email)
	m.SetHeader("Subject", fmt.Sprintf("Appointment token #%d cancelled", tokenNumber))

	body := fmt.Sprintf(
		"Dear %s,\n\nYour appointment token #%d has been cancelled because you did not check in within the allowed time.\n\nPlease book a new appointment if you still wish to be seen.",
		patientName, tokenNumber)
	m.SetBody("text/plain", body)

	smtpHost := os.Getenv("SMTP_HOST")
	smtpPortStr := os.Getenv("SMTP_PORT")
	smtpUser := os.Getenv("SMTP_USER")
	smtpPass := os.Getenv("SMTP_PASS")

	smtpPort, err := strconv.Atoi(smtpPortStr)
	if err != nil {
		log.Printf("Invalid SMTP_PORT value: %v", err)
		return fmt.Errorf("invalid SMTP_PORT value: %w", err)
	}

	d := gomail.NewDialer(smtpHost, smtpPort, smtpUser, smtpPass)
	return d.DialAndSend(m)
}
