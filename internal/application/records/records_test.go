package records_test

import (
	"context"
	"errors"
	"testing"
	"time"

	apprecords "github.com/ceramica/backend/internal/application/records"
	"github.com/ceramica/backend/internal/application/uow"
	"github.com/ceramica/backend/internal/domain/records"
	"github.com/ceramica/backend/internal/domain/shared"
	"github.com/ceramica/backend/internal/infrastructure/persistence"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockPresigner struct {
	mock.Mock
}

func (m *mockPresigner) PresignUpload(ctx context.Context, key, contentType string) (string, time.Time, error) {
	args := m.Called(ctx, key, contentType)
	return args.String(0), args.Get(1).(time.Time), args.Error(2)
}

func (m *mockPresigner) PublicURL(key string) string {
	return "https://files.example.test/" + key
}

type recordsEnv struct {
	repos       uow.Repositories
	contacts    *apprecords.ContactService
	documents   *apprecords.DocumentService
	attachments *apprecords.AttachmentService
}

func newRecordsEnv(t *testing.T) *recordsEnv {
	t.Helper()
	database, err := persistence.OpenSQLite("")
	require.NoError(t, err)
	require.NoError(t, persistence.AutoMigrate(database.DB))
	t.Cleanup(func() { _ = database.Close() })

	repos := persistence.NewRepositories(database.DB)
	scope := persistence.NewGormTransactionScope(database.DB)
	return &recordsEnv{
		repos:       repos,
		contacts:    apprecords.NewContactService(repos.ContactRepo(), scope),
		documents:   apprecords.NewDocumentService(repos.DocumentRepo(), scope),
		attachments: apprecords.NewAttachmentService(repos.AttachmentRepo(), scope),
	}
}

func pdf(name string) records.AttachmentInput {
	return records.AttachmentInput{FileName: name, URL: "https://files.example.test/" + name, ContentType: "application/pdf", SizeBytes: 2048}
}

func TestAttachmentService_ContactLifecycle(t *testing.T) {
	ctx := context.Background()
	env := newRecordsEnv(t)

	c, err := env.contacts.Create(ctx, records.ContactInput{Name: "Marta Ibarra", Company: "Talavera Uriarte", Email: "marta@example.test"}, nil)
	require.NoError(t, err)

	first, err := env.attachments.Add(ctx, records.OwnerContact, c.ID, pdf("contrato.pdf"), nil)
	require.NoError(t, err)
	_, err = env.attachments.Add(ctx, records.OwnerContact, c.ID, pdf("lista.pdf"), nil)
	require.NoError(t, err)

	list, err := env.attachments.List(ctx, records.OwnerContact, c.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "contrato.pdf", list[0].FileName)

	t.Run("wrong owner type", func(t *testing.T) {
		err := env.attachments.Remove(ctx, records.OwnerDocument, c.ID, first.ID)
		assert.True(t, errors.Is(err, shared.ErrNotFound))
	})

	t.Run("missing owner", func(t *testing.T) {
		_, err := env.attachments.Add(ctx, records.OwnerDocument, uuid.New(), pdf("x.pdf"), nil)
		assert.True(t, errors.Is(err, shared.ErrNotFound))
	})

	t.Run("ledger of the other currency", func(t *testing.T) {
		_, err := env.attachments.List(ctx, records.OwnerLedgerUSD, c.ID)
		assert.True(t, errors.Is(err, shared.ErrNotFound))
	})

	require.NoError(t, env.attachments.Remove(ctx, records.OwnerContact, c.ID, first.ID))

	require.NoError(t, env.contacts.Delete(ctx, c.ID))
	left, err := env.repos.AttachmentRepo().FindByOwner(ctx, records.OwnerContact, c.ID)
	require.NoError(t, err)
	assert.Empty(t, left, "deleting the owner deletes its attachments")
}

func TestDocumentService_CRUD(t *testing.T) {
	ctx := context.Background()
	env := newRecordsEnv(t)

	d, err := env.documents.Create(ctx, apprecords.DocumentInput{Title: "Permiso de uso de suelo", Category: "legal", Area: "Administración"}, nil)
	require.NoError(t, err)
	_, err = env.documents.Create(ctx, apprecords.DocumentInput{Title: "Manual de horno", Category: "técnico"}, nil)
	require.NoError(t, err)

	page, err := env.documents.List(ctx, shared.DefaultFilter().With("category", "legal"))
	require.NoError(t, err)
	require.Equal(t, int64(1), page.Total)
	assert.Equal(t, d.ID, page.Items[0].ID)

	page, err = env.documents.List(ctx, shared.Filter{Page: 1, PageSize: 20, Search: "HORNO"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), page.Total)

	_, err = env.documents.Update(ctx, d.ID, apprecords.DocumentInput{Title: " "})
	assert.True(t, errors.Is(err, shared.ErrInvalidInput))

	_, err = env.attachments.Add(ctx, records.OwnerDocument, d.ID, pdf("permiso.pdf"), nil)
	require.NoError(t, err)
	require.NoError(t, env.documents.Delete(ctx, d.ID))
	assert.True(t, errors.Is(env.documents.Delete(ctx, d.ID), shared.ErrNotFound))
}

func TestAttachmentService_Presign(t *testing.T) {
	ctx := context.Background()
	env := newRecordsEnv(t)

	_, err := env.attachments.Presign(ctx, records.OwnerContact, "a.pdf", "application/pdf")
	assert.True(t, errors.Is(err, shared.ErrInvalidState), "no presigner configured")

	expires := time.Now().Add(15 * time.Minute)
	p := new(mockPresigner)
	p.On("PresignUpload", mock.Anything, mock.MatchedBy(func(key string) bool {
		return len(key) > len("ledger_mxn/") && key[:len("ledger_mxn/")] == "ledger_mxn/"
	}), "application/pdf").Return("https://s3.example.test/upload?sig=1", expires, nil).Once()
	env.attachments.SetPresigner(p)

	target, err := env.attachments.Presign(ctx, records.OwnerLedgerMXN, "Factura Señor.pdf", "application/pdf")
	require.NoError(t, err)
	assert.Equal(t, "https://s3.example.test/upload?sig=1", target.UploadURL)
	assert.Regexp(t, `^ledger_mxn/\d{4}/\d{2}/[0-9a-f-]{36}-Factura-Senor\.pdf$`, target.StorageKey)
	assert.Equal(t, "https://files.example.test/"+target.StorageKey, target.FileURL)
	assert.Equal(t, expires, target.ExpiresAt)
	p.AssertExpectations(t)

	_, err = env.attachments.Presign(ctx, "invoice", "a.pdf", "application/pdf")
	assert.True(t, errors.Is(err, shared.ErrInvalidInput))
}
