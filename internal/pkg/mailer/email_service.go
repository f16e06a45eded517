package mailer

import (
	"bytes"
	"fmt"
	"html/template"

	"cybot-be/internal/pkg/logger"

	"gopkg.in/gomail.v2"
)

type IEmailService interface {
	SendComplaintConfirmation(toEmail string, c ComplaintConfirmation) error
}

// ComplaintConfirmation is the data rendered into the confirmation email.
type ComplaintConfirmation struct {
	Name        string
	ComplaintID string
	Details     string
}

// Sender is the subset of gomail.Dialer used to deliver messages.
type Sender interface {
	DialAndSend(m ...*gomail.Message) error
}

type emailService struct {
	sender      Sender
	senderEmail string
	senderName  string
	logger      logger.ILogger
}

func NewEmailService(host string, port int, username, password, senderName string, log logger.ILogger) IEmailService {
	return NewEmailServiceWithSender(gomail.NewDialer(host, port, username, password), username, senderName, log)
}

func NewEmailServiceWithSender(sender Sender, senderEmail, senderName string, log logger.ILogger) IEmailService {
	return &emailService{
		sender:      sender,
		senderEmail: senderEmail,
		senderName:  senderName,
		logger:      log,
	}
}

var confirmationTmpl = template.Must(template.New("confirmation").Parse(`
<div style="font-family: Arial, sans-serif; padding: 20px; color: #333;">
	<h2>Your complaint has been registered</h2>
	<p>Hello {{.Name}},</p>
	<p>Your complaint ID is:</p>
	<h1 style="color: #4CAF50; letter-spacing: 3px;">{{.ComplaintID}}</h1>
	<p><strong>Details:</strong> {{.Details}}</p>
	<p>Keep this ID to check the status of your complaint with the assistant.</p>
</div>
`))

func (s *emailService) SendComplaintConfirmation(toEmail string, c ComplaintConfirmation) error {
	var body bytes.Buffer
	if err := confirmationTmpl.Execute(&body, c); err != nil {
		return fmt.Errorf("render confirmation: %w", err)
	}

	m := gomail.NewMessage()
	m.SetAddressHeader("From", s.senderEmail, s.senderName)
	m.SetHeader("To", toEmail)
	m.SetHeader("Subject", fmt.Sprintf("Complaint %s registered", c.ComplaintID))
	m.SetBody("text/html", body.String())

	if err := s.sender.DialAndSend(m); err != nil {
		s.logger.Error("MAILER", "Failed to send complaint confirmation", map[string]interface{}{
			"complaint_id": c.ComplaintID,
			"error":        err.Error(),
		})
		return err
	}

	s.logger.Info("MAILER", "Complaint confirmation sent", map[string]interface{}{"complaint_id": c.ComplaintID})
	return nil
}
