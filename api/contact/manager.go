package contact

import (
	"ns2po_server/services"

	"github.com/MonkyMars/gecho"
	"github.com/go-chi/chi/v5"
)

type ContactRoutesManager struct {
	logger         *gecho.Logger
	contactService *services.ContactService
}

func NewContactRoutesManager(
	logger *gecho.Logger,
	contactService *services.ContactService,
) *ContactRoutesManager {
	return &ContactRoutesManager{
		logger:         logger,
		contactService: contactService,
	}
}

func (crm *ContactRoutesManager) RegisterRoutes(r chi.Router) {
	r.Route("/contact", func(r chi.Router) {
		r.Post("/quote", crm.SubmitQuoteRequest)
		r.Post("/meeting", crm.SubmitMeetingRequest)
		r.Post("/custom", crm.SubmitCustomRequest)
	})
}
