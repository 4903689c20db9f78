package services

import (
	"fmt"
	"ns2po_server/structs"
	"strings"
	"sync"

	"github.com/MonkyMars/gecho"
	"github.com/resend/resend-go/v3"
)

var (
	client     *resend.Client
	clientOnce = sync.Once{}
)

type EmailService struct {
	logger *gecho.Logger
	cfg    *structs.Config
	client *resend.Client
}

func NewEmailService(logger *gecho.Logger, cfg *structs.Config) *EmailService {
	return &EmailService{
		logger: logger,
		cfg:    cfg,
		client: getEmailClient(cfg.Email.ApiKey),
	}
}

func getEmailClient(apiKey string) *resend.Client {
	clientOnce.Do(func() {
		client = resend.NewClient(apiKey)
	})
	return client
}

func (es *EmailService) SendEmail(to []string, subject string, body string) error {
	params := &resend.SendEmailRequest{
		From:    es.cfg.Email.From,
		To:      to,
		Html:    body,
		Subject: subject,
	}

	_, err := client.Emails.Send(params)
	if err != nil {
		es.logger.Error("Failed to send email", gecho.Field("error", err), gecho.Field("to", to))
		return err
	}

	return nil
}

// contactTypeLabels maps the contact form types onto the subject wording.
var contactTypeLabels = map[string]string{
	structs.ContactTypeQuote:   "Demande de devis",
	structs.ContactTypeMeeting: "Demande de rendez-vous",
	structs.ContactTypeCustom:  "Demande personnalisée",
}

// SendContactNotification forwards a submitted contact request to the sales
// inbox.
func (es *EmailService) SendContactNotification(req *structs.ContactRequest) error {
	label, ok := contactTypeLabels[req.Type]
	if !ok {
		label = "Demande de contact"
	}

	var details strings.Builder
	fmt.Fprintf(&details, "<li><strong>Nom :</strong> %s</li>", req.Name)
	fmt.Fprintf(&details, "<li><strong>Email :</strong> %s</li>", req.Email)
	if req.Phone != "" {
		fmt.Fprintf(&details, "<li><strong>Téléphone :</strong> %s</li>", req.Phone)
	}
	if req.Company != "" {
		fmt.Fprintf(&details, "<li><strong>Organisation :</strong> %s</li>", req.Company)
	}
	if req.BundleID != "" {
		fmt.Fprintf(&details, "<li><strong>Pack concerné :</strong> %s</li>", req.BundleID)
	}
	if req.Budget != "" {
		fmt.Fprintf(&details, "<li><strong>Budget :</strong> %s</li>", req.Budget)
	}
	if req.PreferredDate != "" {
		fmt.Fprintf(&details, "<li><strong>Date souhaitée :</strong> %s</li>", req.PreferredDate)
	}

	emailBody := fmt.Sprintf(`
		<!DOCTYPE html>
		<html>
		<head>
			<meta charset="UTF-8">
			<style>
				body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
				.container { max-width: 600px; margin: 0 auto; padding: 20px; }
				.header { background-color: #F7931E; color: white; padding: 20px; text-align: center; }
				.content { padding: 20px; background-color: #f9f9f9; }
				.details { background-color: white; padding: 15px; margin: 15px 0; border-radius: 5px; }
				.footer { text-align: center; padding: 20px; color: #666; font-size: 12px; }
				ul { list-style-type: none; padding: 0; }
				li { padding: 5px 0; border-bottom: 1px solid #eee; }
			</style>
		</head>
		<body>
			<div class="container">
				<div class="header">
					<h1>%s</h1>
				</div>
				<div class="content">
					<div class="details">
						<ul>%s</ul>
					</div>
					<h4>Message :</h4>
					<p>%s</p>
				</div>
				<div class="footer">
					<p>NS2PO | Gadgets et supports de campagne</p>
				</div>
			</div>
		</body>
		</html>
	`, label, details.String(), req.Message)

	subject := fmt.Sprintf("%s - %s", label, req.Name)

	return es.SendEmail([]string{es.cfg.Email.SupportEmail}, subject, emailBody)
}

// SendContactAcknowledgement confirms receipt to the requester.
func (es *EmailService) SendContactAcknowledgement(req *structs.ContactRequest) error {
	emailBody := fmt.Sprintf(`
		<!DOCTYPE html>
		<html>
		<head>
			<meta charset="UTF-8">
			<style>
				body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
				.container { max-width: 600px; margin: 0 auto; padding: 20px; }
				.header { background-color: #F7931E; color: white; padding: 20px; text-align: center; }
				.content { padding: 20px; background-color: #f9f9f9; }
				.footer { text-align: center; padding: 20px; color: #666; font-size: 12px; }
			</style>
		</head>
		<body>
			<div class="container">
				<div class="header">
					<h1>Nous avons bien reçu votre demande</h1>
				</div>
				<div class="content">
					<p>Bonjour %s,</p>
					<p>Merci pour votre message. Notre équipe commerciale vous recontacte sous 24 heures ouvrées.</p>
					<p>Une question urgente ? Écrivez-nous à %s</p>
				</div>
				<div class="footer">
					<p>NS2PO | Gadgets et supports de campagne</p>
				</div>
			</div>
		</body>
		</html>
	`, req.Name, es.cfg.Email.SupportEmail)

	return es.SendEmail([]string{req.Email}, "Votre demande a bien été reçue - NS2PO", emailBody)
}
