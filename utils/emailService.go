package utils

import (
	"fmt"
	"log"

	"sadhaka/config"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
)

// sendEmail delivers one transactional mail through SendGrid. Failures are
// logged, never propagated - notifications must not fail the triggering
// request.
func sendEmail(toName, toEmail, subject, plainText, htmlContent string) {
	if config.AppConfig.SendGridKey == "" {
		log.Printf("[EMAIL] SendGrid disabled, skipping '%s' to %s", subject, toEmail)
		return
	}

	from := sgmail.NewEmail("Sadhaka", config.AppConfig.EmailSender)
	to := sgmail.NewEmail(toName, toEmail)
	message := sgmail.NewSingleEmail(from, subject, to, plainText, htmlContent)

	client := sendgrid.NewSendClient(config.AppConfig.SendGridKey)
	resp, err := client.Send(message)
	if err != nil {
		log.Printf("[EMAIL] Failed to send '%s' to %s: %v", subject, toEmail, err)
		return
	}
	if resp.StatusCode >= 400 {
		log.Printf("[EMAIL] SendGrid rejected '%s' to %s: %d %s", subject, toEmail, resp.StatusCode, resp.Body)
	}
}

// SendWorkshopCompletionEmail congratulates a student who reached 100%
func SendWorkshopCompletionEmail(toName, toEmail, workshopTitle string) {
	subject := "Workshop completed: " + workshopTitle
	plain := fmt.Sprintf("Namaste %s,\n\nYou have completed all sessions of %s. You can now request your certificate from the workshop page.\n\nSadhaka Team", toName, workshopTitle)
	html := fmt.Sprintf("<p>Namaste %s,</p><p>You have completed all sessions of <strong>%s</strong>. You can now request your certificate from the workshop page.</p><p>Sadhaka Team</p>", toName, workshopTitle)
	go sendEmail(toName, toEmail, subject, plain, html)
}

// SendCertificateIssuedEmail notifies a student that their certificate is ready
func SendCertificateIssuedEmail(toName, toEmail, workshopTitle, certificateNumber, certificateURL string) {
	subject := "Your certificate for " + workshopTitle
	plain := fmt.Sprintf("Namaste %s,\n\nYour certificate (%s) for %s has been issued.\nDownload: %s\n\nSadhaka Team", toName, certificateNumber, workshopTitle, certificateURL)
	html := fmt.Sprintf("<p>Namaste %s,</p><p>Your certificate (<strong>%s</strong>) for <strong>%s</strong> has been issued.</p><p><a href=\"%s\">Download certificate</a></p><p>Sadhaka Team</p>", toName, certificateNumber, workshopTitle, certificateURL)
	go sendEmail(toName, toEmail, subject, plain, html)
}
