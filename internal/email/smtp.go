package email

import (
	"bytes"
	"context"
	"fmt"
	"net"
	"time"

	gomail "github.com/wneessen/go-mail"
)

// SMTPSender implements the Sender interface over a direct SMTP connection
// via go-mail. It renders the same HTML templates as BrevoSender but
// delivers through the company's own SMTP server.
type SMTPSender struct {
	host      string
	port      int
	username  string
	password  string
	fromName  string
	fromEmail string
}

// NewSMTPSender creates a new SMTPSender with the given SMTP credentials.
func NewSMTPSender(host string, port int, username, password, fromEmail, fromName string) *SMTPSender {
	return &SMTPSender{
		host:      host,
		port:      port,
		username:  username,
		password:  password,
		fromName:  fromName,
		fromEmail: fromEmail,
	}
}

func (s *SMTPSender) send(ctx context.Context, toEmail, subject, htmlContent string, attachments ...Attachment) error {
	msg := gomail.NewMsg()
	if err := msg.FromFormat(s.fromName, s.fromEmail); err != nil {
		return fmt.Errorf("smtp from: %w", err)
	}
	if err := msg.To(toEmail); err != nil {
		return fmt.Errorf("smtp to: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(gomail.TypeTextHTML, htmlContent)

	for _, att := range attachments {
		msg.AttachReader(att.FileName, bytes.NewReader(att.Content))
	}

	client, err := gomail.NewClient(s.host,
		gomail.WithPort(s.port),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(s.username),
		gomail.WithPassword(s.password),
		gomail.WithTLSPortPolicy(gomail.TLSOpportunistic),
		gomail.WithTimeout(15*time.Second),
		gomail.WithDialContextFunc(func(dctx context.Context, _ string, addr string) (net.Conn, error) {
			return (&net.Dialer{}).DialContext(dctx, "tcp4", addr)
		}),
	)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}

	return nil
}

func (s *SMTPSender) SendQuotePresentedEmail(ctx context.Context, toEmail, customerName, companyName, quoteURL string) error {
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
	return s.send(ctx, toEmail, subject, content)
}

func (s *SMTPSender) SendQuoteAcceptedEmail(ctx context.Context, toEmail, customerName, companyName string, totalInitial, totalRecurring float64) error {
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
	return s.send(ctx, toEmail, subject, content)
}

func (s *SMTPSender) SendCadenceEmail(ctx context.Context, toEmail, customerName, companyName, bodyText string) error {
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
	return s.send(ctx, toEmail, subject, content)
}

func (s *SMTPSender) SendCustomEmail(ctx context.Context, toEmail, subject, htmlContent string) error {
	return s.send(ctx, toEmail, subject, htmlContent)
}
