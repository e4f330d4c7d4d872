package email

import (
	"context"
	"fmt"

	companiesrepo "github.com/Dykstra-Hamel/DH-portal-sub004/internal/companies/repository"
	leadsrepo "github.com/Dykstra-Hamel/DH-portal-sub004/internal/leads/repository"
	quotessvc "github.com/Dykstra-Hamel/DH-portal-sub004/internal/quotes/service"
	"github.com/Dykstra-Hamel/DH-portal-sub004/platform/events"
	"github.com/Dykstra-Hamel/DH-portal-sub004/platform/logger"

	"github.com/google/uuid"
)

// LeadReader looks up the customer a quote email addresses.
type LeadReader interface {
	Get(ctx context.Context, companyID, leadID uuid.UUID) (leadsrepo.Lead, error)
}

// CompanyReader supplies the company name shown in quote emails.
type CompanyReader interface {
	GetCompany(ctx context.Context, companyID uuid.UUID) (companiesrepo.Company, error)
}

// Notifier subscribes to quote lifecycle events and sends the matching
// transactional emails. Failures are logged, never propagated; email is
// best effort and must not fail the triggering operation.
type Notifier struct {
	sender    Sender
	leads     LeadReader
	companies CompanyReader
	baseURL   string
	log       *logger.Logger
}

// NewNotifier creates a quote email notifier. baseURL is the public app
// URL quote links are built on.
func NewNotifier(sender Sender, leads LeadReader, companies CompanyReader, baseURL string, log *logger.Logger) *Notifier {
	return &Notifier{
		sender:    sender,
		leads:     leads,
		companies: companies,
		baseURL:   baseURL,
		log:       log,
	}
}

// RegisterHandlers subscribes the notifier to the event bus.
func (n *Notifier) RegisterHandlers(bus events.Bus) {
	bus.Subscribe(quotessvc.QuoteSentEventName, events.HandlerFunc(n.handleQuoteSent))
	bus.Subscribe(quotessvc.QuoteAcceptedEventName, events.HandlerFunc(n.handleQuoteAccepted))
}

func (n *Notifier) handleQuoteSent(ctx context.Context, event events.Event) error {
	sent, ok := event.(quotessvc.QuoteSentEvent)
	if !ok {
		return fmt.Errorf("unexpected event type %T", event)
	}
	if sent.LeadID == nil || sent.PublicToken == nil {
		return nil
	}

	lead, company, ok := n.lookup(ctx, sent.CompanyID, *sent.LeadID, "quote sent")
	if !ok {
		return nil
	}

	quoteURL := fmt.Sprintf("%s/quotes/%s", n.baseURL, *sent.PublicToken)
	if err := n.sender.SendQuotePresentedEmail(ctx, lead.Email, lead.FirstName, company.Name, quoteURL); err != nil {
		n.log.Error("failed to send quote presented email", "quote_id", sent.QuoteID, "error", err)
	}
	return nil
}

func (n *Notifier) handleQuoteAccepted(ctx context.Context, event events.Event) error {
	accepted, ok := event.(quotessvc.QuoteAcceptedEvent)
	if !ok {
		return fmt.Errorf("unexpected event type %T", event)
	}
	if accepted.LeadID == nil {
		return nil
	}

	lead, company, ok := n.lookup(ctx, accepted.CompanyID, *accepted.LeadID, "quote accepted")
	if !ok {
		return nil
	}

	err := n.sender.SendQuoteAcceptedEmail(ctx, lead.Email, lead.FirstName, company.Name,
		accepted.TotalInitialPrice, accepted.TotalRecurringPrice)
	if err != nil {
		n.log.Error("failed to send quote accepted email", "quote_id", accepted.QuoteID, "error", err)
	}
	return nil
}

func (n *Notifier) lookup(ctx context.Context, companyID, leadID uuid.UUID, kind string) (leadsrepo.Lead, companiesrepo.Company, bool) {
	lead, err := n.leads.Get(ctx, companyID, leadID)
	if err != nil {
		n.log.Warn("skipping "+kind+" email, lead lookup failed", "lead_id", leadID, "error", err)
		return leadsrepo.Lead{}, companiesrepo.Company{}, false
	}
	if lead.Email == "" {
		return leadsrepo.Lead{}, companiesrepo.Company{}, false
	}
	company, err := n.companies.GetCompany(ctx, companyID)
	if err != nil {
		n.log.Warn("skipping "+kind+" email, company lookup failed", "company_id", companyID, "error", err)
		return leadsrepo.Lead{}, companiesrepo.Company{}, false
	}
	return lead, company, true
}
