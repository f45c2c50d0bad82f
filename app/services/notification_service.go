package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"strings"
	"sync"
	"time"

	"github.com/amirphl/cleaning-orders/models"
	"github.com/amirphl/cleaning-orders/pricing"
	"github.com/amirphl/cleaning-orders/utils"
)

// BusinessProfile is the sender identity printed on customer emails and documents
type BusinessProfile struct {
	Name          string
	Phone         string
	Email         string
	PublicBaseURL string
	// Inbox receives contact form messages
	Inbox string
}

// ContactMessage is a sanitized contact form submission
type ContactMessage struct {
	Name    string
	Email   string
	Phone   string
	Subject string
	Message string
}

// Notifier delivers customer and business facing messages
type Notifier interface {
	SendOrderReceived(ctx context.Context, order *models.Order) error
	SendQuoteDocument(ctx context.Context, order *models.Order) error
	SendContactMessage(ctx context.Context, msg ContactMessage) error
}

// Attachment is a file sent along with an email
type Attachment struct {
	Filename    string
	ContentType string
	Data        []byte
}

// EmailMessage is a provider independent email
type EmailMessage struct {
	To          []string
	ReplyTo     string
	Subject     string
	HTMLBody    string
	Attachments []Attachment
}

// EmailProvider interface for email sending
type EmailProvider interface {
	SendEmail(ctx context.Context, msg EmailMessage) error
}

var errNoRecipient = errors.New("email has no recipient")

// NotifierImpl renders emails with html/template and hands them to an EmailProvider
type NotifierImpl struct {
	email    EmailProvider
	renderer QuoteDocumentRenderer
	profile  BusinessProfile
}

// NewNotifier creates a notifier
func NewNotifier(email EmailProvider, renderer QuoteDocumentRenderer, profile BusinessProfile) Notifier {
	return &NotifierImpl{
		email:    email,
		renderer: renderer,
		profile:  profile,
	}
}

type orderEmailData struct {
	Profile      BusinessProfile
	Order        *models.Order
	TypeLabel    string
	StatusLabel  string
	Date         string
	Price        string
	TrackingURL  string
	AddOns       []pricing.AddOnSelection
	CurrencyUnit string
}

func (n *NotifierImpl) orderData(order *models.Order) orderEmailData {
	data := orderEmailData{
		Profile:      n.profile,
		Order:        order,
		TypeLabel:    order.CleaningType.Label(),
		StatusLabel:  order.Status.Label(),
		Date:         FormatPolishDate(order.PreferredDate),
		Price:        QuotedPrice(order),
		TrackingURL:  strings.TrimRight(n.profile.PublicBaseURL, "/") + "/track/" + order.TrackingCode,
		AddOns:       order.AdditionalServices,
		CurrencyUnit: utils.CurrencySymbol,
	}
	if q := order.Quote(); q != nil && q.ServiceName != "" {
		data.TypeLabel = q.ServiceName
	}
	return data
}

// SendOrderReceived confirms a new order to the customer
func (n *NotifierImpl) SendOrderReceived(ctx context.Context, order *models.Order) error {
	body, err := render(orderReceivedTemplate, n.orderData(order))
	if err != nil {
		return err
	}
	return n.send(ctx, EmailMessage{
		To:       []string{order.Email},
		ReplyTo:  n.profile.Email,
		Subject:  "Potwierdzenie zgłoszenia - " + n.profile.Name,
		HTMLBody: body,
	})
}

// SendQuoteDocument emails the price offer with the rendered document attached
func (n *NotifierImpl) SendQuoteDocument(ctx context.Context, order *models.Order) error {
	body, err := render(quoteTemplate, n.orderData(order))
	if err != nil {
		return err
	}

	msg := EmailMessage{
		To:       []string{order.Email},
		ReplyTo:  n.profile.Email,
		Subject:  "Oferta cenowa - " + n.profile.Name,
		HTMLBody: body,
	}

	if n.renderer != nil {
		doc, err := n.renderer.Render(order)
		if err != nil {
			return fmt.Errorf("failed to render quote document: %w", err)
		}
		msg.Attachments = append(msg.Attachments, Attachment{
			Filename:    doc.Filename,
			ContentType: doc.ContentType,
			Data:        doc.Data,
		})
	}

	return n.send(ctx, msg)
}

// SendContactMessage routes a contact form submission to the business inbox
func (n *NotifierImpl) SendContactMessage(ctx context.Context, msg ContactMessage) error {
	body, err := render(contactTemplate, msg)
	if err != nil {
		return err
	}

	subject := msg.Subject
	if subject == "" {
		subject = "Brak tematu"
	}

	return n.send(ctx, EmailMessage{
		To:       []string{n.profile.Inbox},
		ReplyTo:  msg.Email,
		Subject:  "Nowa wiadomość z formularza kontaktowego - " + subject,
		HTMLBody: body,
	})
}

func (n *NotifierImpl) send(ctx context.Context, msg EmailMessage) error {
	if n.email == nil {
		return fmt.Errorf("email provider not configured")
	}
	if len(msg.To) == 0 || msg.To[0] == "" {
		return errNoRecipient
	}
	return n.email.SendEmail(ctx, msg)
}

func render(t *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render %s: %w", t.Name(), err)
	}
	return buf.String(), nil
}

// QuotedPrice is the price shown to the customer: the admin's final price,
// else the estimate, else the individual quote label
func QuotedPrice(order *models.Order) string {
	if order.FinalPrice != nil {
		return fmt.Sprintf("%d %s", *order.FinalPrice, utils.CurrencySymbol)
	}
	p := order.EstimatedPriceValue()
	if p.IsIndividual() {
		return p.String()
	}
	return p.String() + " " + utils.CurrencySymbol
}

// FormatPolishDate renders YYYY-MM-DD as DD.MM.YYYY
func FormatPolishDate(s string) string {
	t, err := time.Parse(utils.DateLayout, s)
	if err != nil {
		return s
	}
	return t.Format("02.01.2006")
}

var (
	orderReceivedTemplate = template.Must(template.New("order_received").Parse(`
<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <div style="background-color: #0ea5e9; color: white; padding: 20px; text-align: center;">
    <h1>{{.Profile.Name}}</h1>
    <p>Dziękujemy za zgłoszenie!</p>
  </div>
  <div style="padding: 20px;">
    <h2>Szczegóły Twojego zlecenia</h2>
    <p><strong>Imię i nazwisko:</strong> {{.Order.FirstName}} {{.Order.LastName}}</p>
    <p><strong>Typ sprzątania:</strong> {{.TypeLabel}}</p>
    <p><strong>Metraż:</strong> {{.Order.SquareMeters}} m²</p>
    <p><strong>Adres:</strong> {{.Order.Address}}</p>
    <p><strong>Preferowany termin:</strong> {{.Date}}</p>
    <p><strong>Szacowana cena:</strong> {{.Price}}</p>
    <p><strong>Status:</strong> {{.StatusLabel}}</p>
    <h3>Numer śledzenia</h3>
    <p style="font-size: 18px; font-weight: bold;">{{.Order.TrackingCode}}</p>
    <p>Możesz śledzić status swojego zlecenia pod adresem: <a href="{{.TrackingURL}}">{{.TrackingURL}}</a></p>
    <p>Skontaktujemy się z Tobą w ciągu 24 godzin z ofertą cenową i potwierdzeniem terminu.</p>
    <p><strong>Kontakt:</strong> Telefon: {{.Profile.Phone}}, E-mail: {{.Profile.Email}}</p>
  </div>
</div>`))

	quoteTemplate = template.Must(template.New("quote").Parse(`
<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <div style="background-color: #0ea5e9; color: white; padding: 20px; text-align: center;">
    <h1>{{.Profile.Name}}</h1>
    <p>Oferta cenowa</p>
  </div>
  <div style="padding: 20px;">
    <h2>Szanowny/a {{.Order.FirstName}} {{.Order.LastName}},</h2>
    <p>W załączeniu przesyłamy ofertę cenową dla Twojego zlecenia sprzątania.</p>
    <h3>Podsumowanie:</h3>
    <p><strong>Typ sprzątania:</strong> {{.TypeLabel}}</p>
    <p><strong>Metraż:</strong> {{.Order.SquareMeters}} m²</p>
    {{- if .AddOns}}
    <ul>
      {{- range .AddOns}}
      <li>{{.Name}} × {{.Quantity}}: {{.Contribution}} {{$.CurrencyUnit}}</li>
      {{- end}}
    </ul>
    {{- end}}
    <p><strong>Cena:</strong> {{.Price}}</p>
    <p>Oferta ważna przez 30 dni. Cena może ulec zmianie w zależności od stanu obiektu.</p>
    <p>Aby potwierdzić zlecenie, prosimy o kontakt telefoniczny lub e-mailowy.</p>
    <p><strong>Kontakt:</strong> Telefon: {{.Profile.Phone}}, E-mail: {{.Profile.Email}}</p>
  </div>
</div>`))

	contactTemplate = template.Must(template.New("contact").Parse(`
<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h2>Nowa wiadomość z formularza kontaktowego</h2>
  <p><strong>Imię i nazwisko:</strong> {{.Name}}</p>
  <p><strong>E-mail:</strong> {{.Email}}</p>
  {{- if .Phone}}
  <p><strong>Telefon:</strong> {{.Phone}}</p>
  {{- end}}
  {{- if .Subject}}
  <p><strong>Temat:</strong> {{.Subject}}</p>
  {{- end}}
  <h3>Wiadomość:</h3>
  <p style="white-space: pre-line;">{{.Message}}</p>
</div>`))
)

// MockEmailProvider logs emails instead of sending them and keeps a copy
type MockEmailProvider struct {
	mu   sync.Mutex
	sent []EmailMessage
	// Err, when set, is returned by every send
	Err error
}

func NewMockEmailProvider() *MockEmailProvider {
	return &MockEmailProvider{}
}

func (p *MockEmailProvider) SendEmail(_ context.Context, msg EmailMessage) error {
	if p.Err != nil {
		return p.Err
	}

	p.mu.Lock()
	p.sent = append(p.sent, msg)
	p.mu.Unlock()

	attachments := make([]string, 0, len(msg.Attachments))
	for _, a := range msg.Attachments {
		attachments = append(attachments, a.Filename)
	}
	utils.LogKV("info", "email sent (mock)", map[string]any{
		"to":          msg.To,
		"subject":     msg.Subject,
		"attachments": attachments,
	})
	return nil
}

// Sent returns a copy of every delivered message
func (p *MockEmailProvider) Sent() []EmailMessage {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]EmailMessage(nil), p.sent...)
}
