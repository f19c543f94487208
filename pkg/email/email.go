package email

import (
	"bytes"
	"fmt"
	"html/template"
	"net/smtp"
)

// EmailConfig holds SMTP configuration
type EmailConfig struct {
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	FromName     string
	FromEmail    string
}

// ReceiptEmail is the data shown in an acknowledgement email.
type ReceiptEmail struct {
	InvestorName string
	ReceiptNo    string
	Date         string
	Category     string
	Issuer       string
	Scheme       string
	Amount       string
	EmployeeName string
	Branch       string
}

// EmailService handles email sending
type EmailService struct {
	config EmailConfig
	send   func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// NewEmailService creates a new email service
func NewEmailService(config EmailConfig) *EmailService {
	return &EmailService{config: config, send: smtp.SendMail}
}

// SendReceiptAcknowledgement mails the investor a copy of their receipt.
func (s *EmailService) SendReceiptAcknowledgement(toEmail string, data ReceiptEmail) error {
	htmlContent, err := RenderReceiptEmail(data)
	if err != nil {
		return fmt.Errorf("failed to render email template: %w", err)
	}

	subject := fmt.Sprintf("Receipt %s - %s", data.ReceiptNo, s.config.FromName)
	message := s.buildHTMLEmail(toEmail, subject, htmlContent)
	return s.sendEmail(toEmail, message)
}

// sendEmail sends an email using SMTP
func (s *EmailService) sendEmail(to string, message []byte) error {
	addr := fmt.Sprintf("%s:%d", s.config.SMTPHost, s.config.SMTPPort)

	var auth smtp.Auth
	if s.config.SMTPUsername != "" {
		auth = smtp.PlainAuth("", s.config.SMTPUsername, s.config.SMTPPassword, s.config.SMTPHost)
	}

	if err := s.send(addr, auth, s.config.FromEmail, []string{to}, message); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

// buildHTMLEmail builds an HTML email message
func (s *EmailService) buildHTMLEmail(to, subject, htmlBody string) []byte {
	headers := fmt.Sprintf(
		"From: %s <%s>\r\n"+
			"To: %s\r\n"+
			"Subject: %s\r\n"+
			"MIME-Version: 1.0\r\n"+
			"Content-Type: text/html; charset=\"UTF-8\"\r\n"+
			"\r\n",
		s.config.FromName,
		s.config.FromEmail,
		to,
		subject,
	)

	return []byte(headers + htmlBody)
}

var receiptTmpl = template.Must(template.New("receipt").Parse(receiptTemplate))

// RenderReceiptEmail renders the acknowledgement body.
func RenderReceiptEmail(data ReceiptEmail) (string, error) {
	var buf bytes.Buffer
	if err := receiptTmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

const receiptTemplate = `
<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <title>Receipt {{.ReceiptNo}}</title>
</head>
<body style="margin: 0; padding: 0; font-family: 'Segoe UI', Tahoma, Geneva, Verdana, sans-serif; background-color: #f4f7fa;">
    <table role="presentation" style="width: 100%; border-collapse: collapse;">
        <tr>
            <td style="padding: 40px 0;">
                <table role="presentation" style="max-width: 600px; margin: 0 auto; background-color: #ffffff; border-radius: 12px;">
                    <tr>
                        <td style="background-color: #1f3a68; padding: 30px; text-align: center;">
                            <h1 style="color: #ffffff; margin: 0; font-size: 24px;">ECS Financial</h1>
                        </td>
                    </tr>
                    <tr>
                        <td style="padding: 30px;">
                            <p style="color: #4a5568; font-size: 16px;">Dear {{.InvestorName}},</p>
                            <p style="color: #4a5568; font-size: 16px;">We acknowledge receipt of your application. Details are below.</p>
                            <table role="presentation" style="width: 100%; font-size: 14px; color: #1a1a2e;">
                                <tr><td>Receipt No</td><td><strong>{{.ReceiptNo}}</strong></td></tr>
                                <tr><td>Date</td><td>{{.Date}}</td></tr>
                                <tr><td>Product</td><td>{{.Category}}</td></tr>
                                <tr><td>Issuer</td><td>{{.Issuer}}</td></tr>
                                {{if .Scheme}}<tr><td>Scheme</td><td>{{.Scheme}}</td></tr>{{end}}
                                <tr><td>Amount</td><td><strong>{{.Amount}}</strong></td></tr>
                                <tr><td>Received by</td><td>{{.EmployeeName}}{{if .Branch}}, {{.Branch}}{{end}}</td></tr>
                            </table>
                        </td>
                    </tr>
                    <tr>
                        <td style="background-color: #f8fafc; padding: 20px; text-align: center; border-top: 1px solid #e2e8f0;">
                            <p style="color: #a0aec0; font-size: 12px; margin: 0;">This is a system generated acknowledgement.</p>
                        </td>
                    </tr>
                </table>
            </td>
        </tr>
    </table>
</body>
</html>
`
