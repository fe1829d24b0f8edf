package notify

import (
	"context"
	"fmt"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/erazemk/izposoja/internal/model"
)

const sendGridHost = "https://api.sendgrid.com"

// SendGrid sends plain-text notices through the SendGrid v3 mail API.
type SendGrid struct {
	client *sendgrid.Client
	from   *mail.Email
}

// NewSendGrid returns a SendGrid notifier sending from fromAddr.
func NewSendGrid(apiKey, fromAddr, fromName string) *SendGrid {
	return newSendGrid(apiKey, sendGridHost, fromAddr, fromName)
}

func newSendGrid(apiKey, host, fromAddr, fromName string) *SendGrid {
	req := sendgrid.GetRequest(apiKey, "/v3/mail/send", host)
	req.Method = rest.Post
	return &SendGrid{
		client: &sendgrid.Client{Request: req},
		from:   mail.NewEmail(fromName, fromAddr),
	}
}

func (s *SendGrid) NotifyOverdue(ctx context.Context, recipient, itemTitle string) error {
	return s.send(ctx, model.NotificationOverdue, recipient, itemTitle)
}

func (s *SendGrid) NotifyAvailable(ctx context.Context, recipient, itemTitle string) error {
	return s.send(ctx, model.NotificationAvailable, recipient, itemTitle)
}

func (s *SendGrid) send(ctx context.Context, kind, recipient, itemTitle string) error {
	subject, body := Compose(kind, itemTitle)

	msg := mail.NewV3Mail()
	msg.SetFrom(s.from)
	msg.Subject = subject
	p := mail.NewPersonalization()
	p.AddTos(mail.NewEmail("", recipient))
	msg.AddPersonalizations(p)
	msg.AddContent(mail.NewContent("text/plain", body))

	resp, err := s.client.SendWithContext(ctx, msg)
	if err != nil {
		return &TransportError{Kind: kind, Recipient: recipient, Err: err}
	}
	if resp.StatusCode >= 300 {
		return &TransportError{
			Kind:      kind,
			Recipient: recipient,
			Err:       fmt.Errorf("sendgrid responded %d: %s", resp.StatusCode, resp.Body),
		}
	}
	return nil
}
