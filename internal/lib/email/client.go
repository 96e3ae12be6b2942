// Package email sends transactional email through Resend.
//
// Bodies are embedded HTML templates rendered with html/template and the
// sprig function set. Without an API key the client only logs what it
// would have sent.
package email

import (
	"context"
	"fmt"

	"github.com/deppfellow/vistual/internal/config"
	"github.com/pkg/errors"
	"github.com/resend/resend-go/v2"
	"github.com/rs/zerolog"
)

type sender interface {
	SendWithContext(ctx context.Context, params *resend.SendEmailRequest) (*resend.SendEmailResponse, error)
}

type Client struct {
	emails sender
	from   string
	logger *zerolog.Logger
}

func NewClient(cfg *config.Config, logger *zerolog.Logger) *Client {
	c := &Client{
		from:   cfg.Integration.EmailFrom,
		logger: logger,
	}
	if cfg.Integration.ResendAPIKey != "" {
		c.emails = resend.NewClient(cfg.Integration.ResendAPIKey).Emails
	}
	return c
}

// SendEmail renders templateName with data and sends it to a single recipient.
func (c *Client) SendEmail(ctx context.Context, to, subject string, templateName Template, data map[string]string) error {
	body, err := RenderTemplate(templateName, data)
	if err != nil {
		return err
	}

	if c.emails == nil {
		c.logger.Warn().
			Str("to", to).
			Str("template", string(templateName)).
			Msg("resend api key not configured, email not sent")
		return nil
	}

	params := &resend.SendEmailRequest{
		From:    c.from,
		To:      []string{to},
		Subject: subject,
		Html:    body,
	}

	resp, err := c.emails.SendWithContext(ctx, params)
	if err != nil {
		return errors.Wrap(err, fmt.Sprintf("failed to send %s email", templateName))
	}

	c.logger.Debug().Str("email_id", resp.Id).Str("template", string(templateName)).Msg("email sent")
	return nil
}
