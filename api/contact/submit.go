package contact

import (
	"errors"
	"net/http"
	"ns2po_server/lib"
	"ns2po_server/structs"

	"github.com/MonkyMars/gecho"
)

// SubmitQuoteRequest handles POST /contact/quote
func (crm *ContactRoutesManager) SubmitQuoteRequest(w http.ResponseWriter, r *http.Request) {
	crm.submit(w, r, structs.ContactTypeQuote)
}

// SubmitMeetingRequest handles POST /contact/meeting
func (crm *ContactRoutesManager) SubmitMeetingRequest(w http.ResponseWriter, r *http.Request) {
	crm.submit(w, r, structs.ContactTypeMeeting)
}

// SubmitCustomRequest handles POST /contact/custom
func (crm *ContactRoutesManager) SubmitCustomRequest(w http.ResponseWriter, r *http.Request) {
	crm.submit(w, r, structs.ContactTypeCustom)
}

// submit is the shared body of the three contact forms. The contact type comes
// from the route, never from the payload.
func (crm *ContactRoutesManager) submit(w http.ResponseWriter, r *http.Request, contactType string) {
	body, err := lib.ExtractAndValidateBody[structs.ContactRequest](r)
	if err != nil {
		var ve *lib.ValidationError
		if errors.As(err, &ve) {
			crm.logger.Debug("Contact form validation failed", gecho.Field("type", contactType))
			gecho.BadRequest(w,
				gecho.WithMessage("Please check the form and try again"),
				gecho.WithData(ve.Errors),
				gecho.Send(),
			)
			return
		}

		crm.logger.Debug("Failed to extract contact form body", err)
		gecho.BadRequest(w, gecho.WithMessage("Invalid request body"), gecho.Send())
		return
	}

	body.Type = contactType

	contact, err := crm.contactService.SubmitContact(r.Context(), body)
	if err != nil {
		crm.logger.Error("Failed to submit contact request",
			gecho.Field("type", contactType),
			gecho.Field("error", err),
		)
		gecho.InternalServerError(w,
			gecho.WithMessage("Unable to submit your request. Please try again"),
			gecho.Send(),
		)
		return
	}

	gecho.Success(w,
		gecho.WithMessage("Votre demande a bien été reçue"),
		gecho.WithData(map[string]any{
			"id":     contact.ID,
			"type":   contact.Type,
			"status": contact.Status,
		}),
		gecho.Send(),
	)
}
