package services

import (
	"encoding/base64"
	"encoding/json"
	"testing"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/data/aztables"
	"github.com/rocjay1/finpulse/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsLocal(t *testing.T) {
	assert.True(t, isLocal("http://127.0.0.1:10002/devstoreaccount1"))
	assert.False(t, isLocal("https://acct.table.core.windows.net"))
}

func TestValidateSnapshotName(t *testing.T) {
	assert.NoError(t, ValidateSnapshotName("txn-1a2b3c4d"))
	assert.Error(t, ValidateSnapshotName(""))
	assert.Error(t, ValidateSnapshotName("a/b"))
	assert.Error(t, ValidateSnapshotName("it's"))
}

func sampleSnapshot() Snapshot {
	return Snapshot{
		Name: "demo",
		Settings: models.Settings{
			CompanyName: "Acme",
			Language:    models.LanguageGerman,
			Industry:    models.IndustryServices,
		},
		Transactions: []models.Transaction{
			{ID: "b/1", Date: "2024-01-02", Description: "Consulting", Category: models.CategoryRevenue, Amount: decimal.RequireFromString("1200.10")},
			{ID: "a#2", Date: "2024-01-01", Description: "Laptop", Category: models.CategoryOperational, Amount: decimal.RequireFromString("-899.99")},
		},
		Revision: 7,
		SavedAt:  time.Date(2024, 1, 3, 10, 0, 0, 0, time.UTC),
	}
}

func TestSnapshotActions_RoundTrip(t *testing.T) {
	// Setup
	snap := sampleSnapshot()
	stale := transactionRowKey("removed")
	existing := map[string]bool{summaryRowKey: true, transactionRowKey("b/1"): true, stale: true}

	// Execute
	actions, err := snapshotActions(snap, existing)
	require.NoError(t, err)

	// Assert
	require.Len(t, actions, 4)
	var upserts [][]byte
	for _, a := range actions[:3] {
		assert.Equal(t, aztables.TransactionTypeInsertReplace, a.ActionType)
		upserts = append(upserts, a.Entity)
	}
	assert.Equal(t, aztables.TransactionTypeDelete, actions[3].ActionType)
	assert.Contains(t, string(actions[3].Entity), stale)

	// Reverse the entity order to check positions restore the original order.
	reversed := [][]byte{upserts[2], upserts[1], upserts[0]}
	got, err := decodeSnapshot("demo", reversed)
	require.NoError(t, err)

	assert.Equal(t, snap.Settings, got.Settings)
	assert.Equal(t, snap.Revision, got.Revision)
	assert.True(t, snap.SavedAt.Equal(got.SavedAt))
	require.Len(t, got.Transactions, 2)
	for i := range snap.Transactions {
		want, have := snap.Transactions[i], got.Transactions[i]
		assert.Equal(t, want.ID, have.ID)
		assert.Equal(t, want.Description, have.Description)
		assert.Equal(t, want.Category, have.Category)
		assert.True(t, want.Amount.Equal(have.Amount))
	}
}

func TestDecodeSnapshot_NotFound(t *testing.T) {
	_, err := decodeSnapshot("missing", nil)
	assert.ErrorIs(t, err, ErrSnapshotNotFound)
}

func TestTransactionRowKey(t *testing.T) {
	rk := transactionRowKey("id/with#chars?")
	assert.NotContains(t, rk, "/")
	assert.NotContains(t, rk, "#")
	assert.Equal(t, rk, transactionRowKey("id/with#chars?"))
	assert.NotEqual(t, rk, transactionRowKey("other"))
}

func TestChunkActions(t *testing.T) {
	actions := make([]aztables.TransactionAction, 250)
	chunks := chunkActions(actions, 100)
	require.Len(t, chunks, 3)
	assert.Len(t, chunks[0], 100)
	assert.Len(t, chunks[2], 50)
	assert.Empty(t, chunkActions(nil, 100))
}

func TestEncodeEvent(t *testing.T) {
	score := 64
	ev := SessionEvent{Type: EventReportGenerated, Session: "demo", Score: &score, At: time.Unix(0, 0).UTC()}

	msg, err := EncodeEvent(ev)
	require.NoError(t, err)

	raw, err := base64.StdEncoding.DecodeString(msg)
	require.NoError(t, err)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, "report_generated", decoded["type"])
	assert.Equal(t, "demo", decoded["session"])
	assert.Equal(t, float64(64), decoded["score"])
	assert.NotContains(t, decoded, "error")
}

func TestBlobNames(t *testing.T) {
	now := time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)
	assert.Equal(t, "demo/uploads/20240506T070809Z-ledger.xlsx", UploadBlobName("demo", "/tmp/ledger.xlsx", now))
	assert.Equal(t, "demo/exports/report_2024-05-06.csv", ExportBlobName("demo", "report_2024-05-06.csv"))
}

func TestUploadFilename(t *testing.T) {
	now := time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)
	name, ok := UploadFilename("demo", UploadBlobName("demo", "/tmp/q1-ledger.xlsx", now))
	assert.True(t, ok)
	assert.Equal(t, "q1-ledger.xlsx", name)

	for _, blob := range []string{
		"other/uploads/20240506T070809Z-ledger.xlsx",
		"demo/exports/report_2024-05-06.csv",
		"demo/uploads/ledger.xlsx",
		"demo/uploads/20240506T070809Z-",
		"demo/uploads/nested/20240506T070809Z-ledger.xlsx",
	} {
		_, ok := UploadFilename("demo", blob)
		assert.False(t, ok, blob)
	}
}
