// Package email provides outbound email senders. Delivery is best-effort;
// callers treat failures as log-and-continue.
package email

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/Dykstra-Hamel/DH-portal-sub004/platform/config"
)

// Attachment represents a file attachment for an email.
type Attachment struct {
	Content  []byte
	FileName string
	MIMEType string
}

type Sender interface {
	SendQuotePresentedEmail(ctx context.Context, toEmail, customerName, companyName, quoteURL string) error
	SendQuoteAcceptedEmail(ctx context.Context, toEmail, customerName, companyName string, totalInitial, totalRecurring float64) error
	SendCadenceEmail(ctx context.Context, toEmail, customerName, companyName, bodyText string) error
	SendCustomEmail(ctx context.Context, toEmail, subject, htmlContent string) error
}

type NoopSender struct{}

func (NoopSender) SendQuotePresentedEmail(ctx context.Context, toEmail, customerName, companyName, quoteURL string) error {
	return nil
}

func (NoopSender) SendQuoteAcceptedEmail(ctx context.Context, toEmail, customerName, companyName string, totalInitial, totalRecurring float64) error {
	return nil
}

func (NoopSender) SendCadenceEmail(ctx context.Context, toEmail, customerName, companyName, bodyText string) error {
	return nil
}

func (NoopSender) SendCustomEmail(ctx context.Context, toEmail, subject, htmlContent string) error {
	return nil
}

// BrevoSender delivers through the Brevo transactional email API.
type BrevoSender struct {
	apiKey    string
	fromName  string
	fromEmail string
	client    *http.Client
}

type brevoAttachment struct {
	Content string `json:"content"` // base64-encoded file content
	Name    string `json:"name"`
}

type brevoEmailRequest struct {
	Sender struct {
		Name  string `json:"name"`
		Email string `json:"email"`
	} `json:"sender"`
	To []struct {
		Email string `json:"email"`
	} `json:"to"`
	Subject     string            `json:"subject"`
	HTMLContent string            `json:"htmlContent"`
	Attachment  []brevoAttachment `json:"attachment,omitempty"`
}

// NewSender picks the sender from config: disabled email yields a noop,
// an SMTP host selects the SMTP sender, otherwise Brevo.
func NewSender(cfg config.EmailConfig) (Sender, error) {
	if !cfg.GetEmailEnabled() {
		return NoopSender{}, nil
	}

	if cfg.GetSMTPHost() != "" {
		return NewSMTPSender(
			cfg.GetSMTPHost(), cfg.GetSMTPPort(),
			cfg.GetSMTPUsername(), cfg.GetSMTPPassword(),
			cfg.GetEmailFromAddress(), cfg.GetEmailFromName(),
		), nil
	}

	client := &http.Client{Timeout: 10 * time.Second}
	return &BrevoSender{
		apiKey:    cfg.GetBrevoAPIKey(),
		fromName:  cfg.GetEmailFromName(),
		fromEmail: cfg.GetEmailFromAddress(),
		client:    client,
	}, nil
}

func (b *BrevoSender) SendQuotePresentedEmail(ctx context.Context, toEmail, customerName, companyName, quoteURL string) error {
	subject := fmt.Sprintf(subjectQuotePresentedFmt, companyName)
	content, err := renderEmailTemplate("quote_presented.html", quotePresentedEmailData{
		baseEmailData: baseEmailData{
			Title:    "Your quote is ready",
			Heading:  "Your quote is ready",
			CTALabel: "View your quote",
			CTAURL:   quoteURL,
		},
		CustomerName: customerName,
		CompanyName:  companyName,
	})
	if err != nil {
		return err
	}
	return b.send(ctx, toEmail, subject, content)
}

func (b *BrevoSender) SendQuoteAcceptedEmail(ctx context.Context, toEmail, customerName, companyName string, totalInitial, totalRecurring float64) error {
	subject := fmt.Sprintf(subjectQuoteAcceptedFmt, companyName)
	content, err := renderEmailTemplate("quote_accepted.html", quoteAcceptedEmailData{
		baseEmailData: baseEmailData{
			Title:   "Thanks for choosing us",
			Heading: "Thanks for choosing us",
		},
		CustomerName:   customerName,
		CompanyName:    companyName,
		TotalInitial:   formatCurrencyUSD(totalInitial),
		TotalRecurring: formatCurrencyUSD(totalRecurring),
	})
	if err != nil {
		return err
	}
	return b.send(ctx, toEmail, subject, content)
}

func (b *BrevoSender) SendCadenceEmail(ctx context.Context, toEmail, customerName, companyName, bodyText string) error {
	subject := fmt.Sprintf(subjectCadenceFmt, companyName)
	content, err := renderEmailTemplate("cadence.html", cadenceEmailData{
		baseEmailData: baseEmailData{
			Title:   "Following up",
			Heading: "Following up",
		},
		CustomerName: customerName,
		CompanyName:  companyName,
		BodyText:     bodyText,
	})
	if err != nil {
		return err
	}
	return b.send(ctx, toEmail, subject, content)
}

func (b *BrevoSender) SendCustomEmail(ctx context.Context, toEmail, subject, htmlContent string) error {
	return b.send(ctx, toEmail, subject, htmlContent)
}

func (b *BrevoSender) send(ctx context.Context, toEmail, subject, htmlContent string, attachments ...Attachment) error {
	payload := brevoEmailRequest{
		Subject:     subject,
		HTMLContent: htmlContent,
	}
	payload.Sender.Name = b.fromName
	payload.Sender.Email = b.fromEmail
	payload.To = []struct {
		Email string `json:"email"`
	}{{Email: toEmail}}

	for _, att := range attachments {
		payload.Attachment = append(payload.Attachment, brevoAttachment{
			Content: base64.StdEncoding.EncodeToString(att.Content),
			Name:    att.FileName,
		})
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, "https://api.brevo.com/v3/smtp/email", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("api-key", b.apiKey)
	req.Header.Set("content-type", "application/json")
	req.Header.Set("accept", "application/json")

	resp, err := b.client.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("brevo send failed: status %d: %s", resp.StatusCode, string(data))
	}

	return nil
}
