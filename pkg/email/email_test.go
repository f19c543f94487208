package email

import (
	"net/smtp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendReceiptAcknowledgement(t *testing.T) {
	svc := NewEmailService(EmailConfig{SMTPHost: "mail.local", SMTPPort: 25, FromName: "ECS Financial", FromEmail: "noreply@ecs.local"})

	var gotAddr string
	var gotTo []string
	var gotMsg []byte
	svc.send = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotTo, gotMsg = addr, to, msg
		assert.Nil(t, a, "no auth without a username")
		return nil
	}

	err := svc.SendReceiptAcknowledgement("ravi@example.com", ReceiptEmail{
		InvestorName: "Ravi Kumar",
		ReceiptNo:    "ECS-20250314-1234",
		Amount:       "INR 50,000.00",
		Category:     "MF",
	})
	require.NoError(t, err)
	assert.Equal(t, "mail.local:25", gotAddr)
	assert.Equal(t, []string{"ravi@example.com"}, gotTo)
	assert.Contains(t, string(gotMsg), "Subject: Receipt ECS-20250314-1234 - ECS Financial")
	assert.Contains(t, string(gotMsg), "Dear Ravi Kumar")
	assert.NotContains(t, string(gotMsg), "Scheme</td>")
}
