package uploads

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smartentrance/internal/models"
)

func TestMemoryLedgerLifecycle(t *testing.T) {
	ctx := context.Background()
	ledger := NewMemoryLedger()

	rec := &models.UploadRecord{BuildingID: 7, FileName: "minutes.pdf"}
	require.NoError(t, ledger.Create(ctx, rec))
	assert.NotEmpty(t, rec.ID)
	assert.Equal(t, models.UploadStatusPending, rec.Status)

	rec.Status = models.UploadStatusUploaded
	rec.URL = "https://files.example/minutes.pdf"
	require.NoError(t, ledger.Save(ctx, rec))

	got, err := ledger.Get(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, models.UploadStatusUploaded, got.Status)
	assert.Equal(t, "https://files.example/minutes.pdf", got.URL)
}

func TestMemoryLedgerListByStatus(t *testing.T) {
	ctx := context.Background()
	ledger := NewMemoryLedger()

	for _, name := range []string{"a.pdf", "b.pdf", "c.pdf"} {
		require.NoError(t, ledger.Create(ctx, &models.UploadRecord{BuildingID: 1, FileName: name}))
	}
	orphan := &models.UploadRecord{BuildingID: 1, FileName: "d.pdf", Status: models.UploadStatusOrphaned}
	require.NoError(t, ledger.Create(ctx, orphan))

	pending, err := ledger.ListByStatus(ctx, models.UploadStatusPending)
	require.NoError(t, err)
	assert.Len(t, pending, 3)

	orphaned, err := ledger.ListByStatus(ctx, models.UploadStatusOrphaned)
	require.NoError(t, err)
	require.Len(t, orphaned, 1)
	assert.Equal(t, "d.pdf", orphaned[0].FileName)
}

func TestMemoryLedgerUnknownRecord(t *testing.T) {
	ctx := context.Background()
	ledger := NewMemoryLedger()

	_, err := ledger.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, ledger.Save(ctx, &models.UploadRecord{Base: models.Base{ID: "missing"}}), ErrNotFound)
}

func TestMemoryLedgerReturnsCopies(t *testing.T) {
	ctx := context.Background()
	ledger := NewMemoryLedger()

	rec := &models.UploadRecord{BuildingID: 1, FileName: "a.pdf"}
	require.NoError(t, ledger.Create(ctx, rec))

	got, err := ledger.Get(ctx, rec.ID)
	require.NoError(t, err)
	got.Status = models.UploadStatusDiscarded

	again, err := ledger.Get(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, models.UploadStatusPending, again.Status)
}
