package services

import (
	"context"
	"encoding/json"
	"fmt"
	"ns2po_server/database"
	"ns2po_server/lib"
	"ns2po_server/structs"
	"ns2po_server/structs/tables"
	"time"

	"github.com/MonkyMars/gecho"
	"github.com/google/uuid"
)

// ContactService persists the public contact submissions and triggers the
// notification emails. Email failures never fail the submission: the record
// is stored first, the notification is best-effort.
type ContactService struct {
	logger       *gecho.Logger
	db           *database.DB
	emailService *EmailService
}

func NewContactService(logger *gecho.Logger, db *database.DB, emailService *EmailService) *ContactService {
	return &ContactService{
		logger:       logger,
		db:           db,
		emailService: emailService,
	}
}

// SubmitContact stores a contact request and notifies both sides by email.
func (cs *ContactService) SubmitContact(ctx context.Context, req *structs.ContactRequest) (*tables.Contact, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to encode contact payload: %w", err)
	}

	contact := &tables.Contact{
		ID:        uuid.New().String(),
		Type:      req.Type,
		Name:      req.Name,
		Email:     req.Email,
		Phone:     req.Phone,
		Company:   req.Company,
		Message:   req.Message,
		Payload:   string(payload),
		Status:    "new",
		CreatedAt: time.Now(),
	}

	if _, err := database.Create(cs.db, ctx, contact); err != nil {
		cs.logger.Error("Failed to store contact request",
			gecho.Field("error", err),
			gecho.Field("type", req.Type),
		)
		return nil, lib.MapDBError(err)
	}

	go func() {
		if err := cs.emailService.SendContactNotification(req); err != nil {
			cs.logger.Warn("Failed to send contact notification", gecho.Field("error", err), gecho.Field("contact_id", contact.ID))
		}
		if err := cs.emailService.SendContactAcknowledgement(req); err != nil {
			cs.logger.Warn("Failed to send contact acknowledgement", gecho.Field("error", err), gecho.Field("contact_id", contact.ID))
		}
	}()

	cs.logger.Info("Contact request stored",
		gecho.Field("id", contact.ID),
		gecho.Field("type", contact.Type),
	)
	return contact, nil
}

// ListContacts returns submissions for the admin back office, newest first.
func (cs *ContactService) ListContacts(ctx context.Context, contactType string, page, pageSize int) (*database.PaginationResult[tables.Contact], error) {
	query := database.Query[tables.Contact](cs.db).
		OrderBy("created_at", database.DESC)

	if contactType != "" {
		query = query.Where("type", contactType)
	}

	result, err := database.Paginate(query, ctx, page, pageSize)
	if err != nil {
		return nil, lib.MapDBError(err)
	}
	return result, nil
}

// UpdateContactStatus moves a submission through the follow-up workflow.
func (cs *ContactService) UpdateContactStatus(ctx context.Context, id, status string) error {
	valid := map[string]bool{"new": true, "in_progress": true, "closed": true}
	if !valid[status] {
		return fmt.Errorf("invalid contact status: %s", status)
	}

	affected, err := database.UpdateByID[tables.Contact](cs.db, ctx, id, map[string]any{
		"status": status,
	})
	if err != nil {
		return lib.MapDBError(err)
	}
	if affected == 0 {
		return lib.ErrNotFound
	}
	return nil
}
