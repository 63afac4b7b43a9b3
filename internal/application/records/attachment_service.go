// Package records implements contacts, documents and the attachments shared
// by them and the ledgers.
package records

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ceramica/backend/internal/application/uow"
	"github.com/ceramica/backend/internal/domain/records"
	"github.com/ceramica/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Presigner issues direct-upload URLs for an object store
type Presigner interface {
	// PresignUpload returns a URL the client can PUT the object to
	PresignUpload(ctx context.Context, key, contentType string) (string, time.Time, error)
	// PublicURL returns where the object is served from once uploaded
	PublicURL(key string) string
}

// UploadTarget tells the client where to upload a file and how to register it
type UploadTarget struct {
	UploadURL  string    `json:"upload_url"`
	FileURL    string    `json:"file_url"`
	StorageKey string    `json:"storage_key"`
	ExpiresAt  time.Time `json:"expires_at"`
}

// AttachmentService registers uploaded files against contacts, documents
// and ledger entries. Binary content never passes through it.
type AttachmentService struct {
	repo      records.AttachmentRepository
	scope     uow.TransactionScope
	presigner Presigner
	now       func() time.Time
}

// NewAttachmentService creates a new AttachmentService
func NewAttachmentService(repo records.AttachmentRepository, scope uow.TransactionScope) *AttachmentService {
	return &AttachmentService{repo: repo, scope: scope, now: time.Now}
}

// SetPresigner enables presigned uploads
func (s *AttachmentService) SetPresigner(p Presigner) {
	s.presigner = p
}

// List returns the attachments of an owner row
func (s *AttachmentService) List(ctx context.Context, ownerType records.OwnerType, ownerID uuid.UUID) ([]records.Attachment, error) {
	var out []records.Attachment
	err := s.scope.Execute(ctx, func(repos uow.Repositories) error {
		if err := ownerExists(ctx, repos, ownerType, ownerID); err != nil {
			return err
		}
		var err error
		out, err = repos.AttachmentRepo().FindByOwner(ctx, ownerType, ownerID)
		return err
	})
	if out == nil && err == nil {
		out = []records.Attachment{}
	}
	return out, err
}

// Add registers an uploaded file for an owner row
func (s *AttachmentService) Add(ctx context.Context, ownerType records.OwnerType, ownerID uuid.UUID, in records.AttachmentInput, by *uuid.UUID) (*records.Attachment, error) {
	a, err := records.NewAttachment(ownerType, ownerID, in, by)
	if err != nil {
		return nil, err
	}
	err = s.scope.Execute(ctx, func(repos uow.Repositories) error {
		if err := ownerExists(ctx, repos, ownerType, ownerID); err != nil {
			return err
		}
		return repos.AttachmentRepo().Create(ctx, a)
	})
	if err != nil {
		return nil, err
	}
	return a, nil
}

// Remove deletes an attachment when it belongs to the owner row
func (s *AttachmentService) Remove(ctx context.Context, ownerType records.OwnerType, ownerID, id uuid.UUID) error {
	return s.scope.Execute(ctx, func(repos uow.Repositories) error {
		if _, err := repos.AttachmentRepo().FindForOwner(ctx, ownerType, ownerID, id); err != nil {
			return err
		}
		return repos.AttachmentRepo().Delete(ctx, id)
	})
}

// Presign returns a direct-upload URL and the storage key to register the
// attachment with afterwards.
func (s *AttachmentService) Presign(ctx context.Context, ownerType records.OwnerType, fileName, contentType string) (*UploadTarget, error) {
	if s.presigner == nil {
		return nil, shared.InvalidState("uploads are not configured")
	}
	if !ownerType.IsValid() {
		return nil, shared.InvalidInput("invalid owner type %q", ownerType)
	}
	if strings.TrimSpace(fileName) == "" {
		return nil, shared.InvalidInput("file_name is required")
	}
	now := s.now().UTC()
	key := fmt.Sprintf("%s/%04d/%02d/%s-%s", ownerType, now.Year(), now.Month(), uuid.NewString(), shared.SafeFileName(fileName))
	upload, expires, err := s.presigner.PresignUpload(ctx, key, contentType)
	if err != nil {
		return nil, err
	}
	return &UploadTarget{
		UploadURL:  upload,
		FileURL:    s.presigner.PublicURL(key),
		StorageKey: key,
		ExpiresAt:  expires,
	}, nil
}

func ownerExists(ctx context.Context, repos uow.Repositories, ownerType records.OwnerType, id uuid.UUID) error {
	var err error
	switch ownerType {
	case records.OwnerContact:
		_, err = repos.ContactRepo().FindByID(ctx, id)
	case records.OwnerDocument:
		_, err = repos.DocumentRepo().FindByID(ctx, id)
	case records.OwnerLedgerUSD:
		_, err = repos.LedgerRepo().FindByID(ctx, shared.CurrencyUSD, id)
	case records.OwnerLedgerMXN:
		_, err = repos.LedgerRepo().FindByID(ctx, shared.CurrencyMXN, id)
	default:
		return shared.InvalidInput("invalid owner type %q", ownerType)
	}
	if errors.Is(err, shared.ErrNotFound) {
		return shared.NotFound(string(ownerType))
	}
	return err
}
