package records

import (
	"errors"
	"testing"

	"github.com/ceramica/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewContact(t *testing.T) {
	c, err := NewContact(ContactInput{Name: " Lucía ", Email: "lucia@barro.mx", Company: "Barro SA"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "Lucía", c.Name)

	_, err = NewContact(ContactInput{Name: "X", Email: "not-an-email"}, nil)
	assert.True(t, errors.Is(err, shared.ErrInvalidInput))

	_, err = NewContact(ContactInput{}, nil)
	assert.True(t, errors.Is(err, shared.ErrInvalidInput))
}

func TestNewDocument(t *testing.T) {
	d, err := NewDocument("Contrato renta", "", "legal", "Admin", "", nil)
	require.NoError(t, err)
	assert.Equal(t, "legal", d.Category)

	_, err = NewDocument("", "", "", "", "", nil)
	assert.True(t, errors.Is(err, shared.ErrInvalidInput))
}

func TestNewAttachment(t *testing.T) {
	owner := uuid.New()
	tests := []struct {
		name      string
		ownerType OwnerType
		in        AttachmentInput
		wantErr   bool
	}{
		{"valid", OwnerContact, AttachmentInput{FileName: "ine.pdf", URL: "https://files.example.com/a/ine.pdf", SizeBytes: 1024}, false},
		{"bad owner", "invoice", AttachmentInput{FileName: "a", URL: "https://x.io/a"}, true},
		{"no name", OwnerDocument, AttachmentInput{URL: "https://x.io/a"}, true},
		{"relative url", OwnerDocument, AttachmentInput{FileName: "a", URL: "/a"}, true},
		{"ftp url", OwnerDocument, AttachmentInput{FileName: "a", URL: "ftp://x.io/a"}, true},
		{"negative size", OwnerLedgerMXN, AttachmentInput{FileName: "a", URL: "https://x.io/a", SizeBytes: -1}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := NewAttachment(tt.ownerType, owner, tt.in, nil)
			if tt.wantErr {
				assert.True(t, errors.Is(err, shared.ErrInvalidInput))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, owner, a.OwnerID)
		})
	}
}

func TestLedgerOwner(t *testing.T) {
	assert.Equal(t, OwnerLedgerUSD, LedgerOwner(shared.CurrencyUSD))
	assert.Equal(t, OwnerLedgerMXN, LedgerOwner(shared.CurrencyMXN))
}
