package notification_test

import (
	"context"
	"errors"
	"testing"
	"time"

	appnotification "github.com/ceramica/backend/internal/application/notification"
	"github.com/ceramica/backend/internal/domain/notification"
	"github.com/ceramica/backend/internal/domain/shared"
	"github.com/ceramica/backend/internal/infrastructure/persistence"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newService(t *testing.T) *appnotification.Service {
	t.Helper()
	database, err := persistence.OpenSQLite("")
	require.NoError(t, err)
	require.NoError(t, persistence.AutoMigrate(database.DB))
	t.Cleanup(func() { _ = database.Close() })
	return appnotification.NewService(persistence.NewRepositories(database.DB).NotificationRepo())
}

func TestService_ReadFlow(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)
	user, other := uuid.New(), uuid.New()

	var ids []uuid.UUID
	for _, title := range []string{"Inventario", "Pedido PED-2026-0001", "Mantenimiento"} {
		n, err := svc.Send(ctx, appnotification.SendInput{UserID: user, Title: title})
		require.NoError(t, err)
		assert.Equal(t, notification.TypeSystem, n.Type)
		ids = append(ids, n.ID)
	}
	_, err := svc.Send(ctx, appnotification.SendInput{UserID: other, Type: notification.TypeOrder, Title: "Ajeno"})
	require.NoError(t, err)

	_, err = svc.Send(ctx, appnotification.SendInput{UserID: user, Type: "sms", Title: "x"})
	assert.True(t, errors.Is(err, shared.ErrInvalidInput))

	count, err := svc.UnreadCount(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)

	_, err = svc.MarkRead(ctx, other, ids[0])
	assert.True(t, errors.Is(err, shared.ErrNotFound), "other users cannot touch it")

	n, err := svc.MarkRead(ctx, user, ids[0])
	require.NoError(t, err)
	require.NotNil(t, n.ReadAt)
	first := *n.ReadAt
	n, err = svc.MarkRead(ctx, user, ids[0])
	require.NoError(t, err)
	assert.WithinDuration(t, first, *n.ReadAt, time.Millisecond, "reading twice keeps the first time")

	unread, err := svc.List(ctx, user, shared.DefaultFilter().With("read", false))
	require.NoError(t, err)
	assert.Equal(t, int64(2), unread.Total)

	changed, err := svc.MarkAllRead(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, int64(2), changed)
	count, err = svc.UnreadCount(ctx, user)
	require.NoError(t, err)
	assert.Zero(t, count)

	assert.True(t, errors.Is(svc.Delete(ctx, other, ids[1]), shared.ErrNotFound))
	require.NoError(t, svc.Delete(ctx, user, ids[1]))
	all, err := svc.List(ctx, user, shared.DefaultFilter())
	require.NoError(t, err)
	assert.Equal(t, int64(2), all.Total)
}
