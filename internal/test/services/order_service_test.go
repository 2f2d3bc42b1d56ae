package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Delyplott/DelyPlot-Web/internal/feed"
	"github.com/Delyplott/DelyPlot-Web/internal/models"
	"github.com/Delyplott/DelyPlot-Web/internal/services"
)

func newOrderService(t *testing.T) (*services.OrderService, *feed.Hub) {
	hub := feed.NewHub()
	return services.NewOrderService(newStore(t, hub), hub, nopLogger()), hub
}

func TestOrderService_CreateUploaded(t *testing.T) {
	svc, _ := newOrderService(t)

	order, err := svc.Create(context.Background(), "u1", "O1", uploadedRequest("X1", "X2"))
	require.NoError(t, err)

	assert.Equal(t, "u1", order.UID)
	assert.Equal(t, models.StatusUploaded, order.Status)
	require.Len(t, order.Files, 2)
	assert.Equal(t, models.ProviderDrive, order.Files[0].Provider)
	assert.Equal(t, models.DefaultContentType, order.Files[0].ContentType)
	assert.Equal(t, "X1", *order.File.DriveFileID)
	assert.NoError(t, order.CheckPrimary())
}

func TestOrderService_CreateRejects(t *testing.T) {
	svc, _ := newOrderService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, "u1", "", uploadedRequest("X1"))
	assert.ErrorIs(t, err, services.ErrInvalidOrder)

	_, err = svc.Create(ctx, "u1", "a/b", uploadedRequest("X1"))
	assert.ErrorIs(t, err, services.ErrInvalidOrder)

	req := uploadedRequest("X1")
	req.Status = models.StatusQuoted
	_, err = svc.Create(ctx, "u1", "O1", req)
	assert.ErrorIs(t, err, services.ErrInvalidOrder)

	_, err = svc.Create(ctx, "u1", "O1", models.CreateOrderRequest{Status: models.StatusUploaded})
	assert.ErrorIs(t, err, services.ErrInvalidOrder)

	// uploaded orders must carry ids
	_, err = svc.Create(ctx, "u1", "O1", withStatus(placeholderRequest("a.pdf"), models.StatusUploaded))
	assert.ErrorIs(t, err, services.ErrInvalidOrder)

	_, err = svc.Create(ctx, "u1", "O1", uploadedRequest("X1"))
	require.NoError(t, err)
	_, err = svc.Create(ctx, "u1", "O1", uploadedRequest("X1"))
	assert.ErrorIs(t, err, models.ErrOrderExists)
}

func TestOrderService_GetHidesOtherUsers(t *testing.T) {
	svc, _ := newOrderService(t)
	ctx := context.Background()
	_, err := svc.Create(ctx, "u1", "O1", uploadedRequest("X1"))
	require.NoError(t, err)

	_, err = svc.Get(ctx, "u2", "O1")
	assert.ErrorIs(t, err, models.ErrOrderNotFound)

	order, err := svc.Get(ctx, "u1", "O1")
	require.NoError(t, err)
	assert.Equal(t, "O1", order.ID)
}

func TestOrderService_BridgeFlow(t *testing.T) {
	svc, _ := newOrderService(t)
	ctx := context.Background()

	order, err := svc.Create(ctx, "u1", "O1", placeholderRequest("a.pdf", "b.png"))
	require.NoError(t, err)
	assert.Equal(t, models.StatusAwaitingUpload, order.Status)
	assert.Nil(t, order.File.DriveFileID)

	_, err = svc.MarkUploaded(ctx, "u1", "O1")
	assert.ErrorIs(t, err, services.ErrInvalidOrder)

	order, err = svc.PatchFile(ctx, "u1", "O1", 0, "X1")
	require.NoError(t, err)
	assert.Equal(t, "X1", *order.File.DriveFileID)
	assert.NoError(t, order.CheckPrimary())

	_, err = svc.PatchFile(ctx, "u1", "O1", 2, "X3")
	assert.ErrorIs(t, err, services.ErrFileIndex)

	_, err = svc.PatchFile(ctx, "u2", "O1", 1, "X2")
	assert.ErrorIs(t, err, models.ErrOrderNotFound)

	_, err = svc.PatchFile(ctx, "u1", "O1", 1, "X2")
	require.NoError(t, err)

	order, err = svc.MarkUploaded(ctx, "u1", "O1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusUploaded, order.Status)

	// repeating is a no-op, patching is closed
	order, err = svc.MarkUploaded(ctx, "u1", "O1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusUploaded, order.Status)

	_, err = svc.PatchFile(ctx, "u1", "O1", 0, "X9")
	assert.ErrorIs(t, err, services.ErrInvalidTransition)
}

func TestOrderService_Subscribe(t *testing.T) {
	svc, hub := newOrderService(t)
	ctx := context.Background()
	_, err := svc.Create(ctx, "u1", "O1", uploadedRequest("X1"))
	require.NoError(t, err)

	_, _, err = svc.Subscribe(ctx, "u2", "O1")
	assert.ErrorIs(t, err, models.ErrOrderNotFound)
	assert.Equal(t, 0, hub.Subscribers("O1"))

	current, sub, err := svc.Subscribe(ctx, "u1", "O1")
	require.NoError(t, err)
	defer sub.Unsubscribe()
	assert.Equal(t, models.StatusUploaded, current.Status)

	hub.Publish(&models.Order{ID: "O1", Status: models.StatusInProgress})

	select {
	case o := <-sub.Updates():
		assert.Equal(t, models.StatusInProgress, o.Status)
	case <-time.After(time.Second):
		t.Fatal("no update")
	}
}
