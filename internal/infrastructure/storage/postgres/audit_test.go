package postgres

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"millstock/internal/domain/audit"
)

func newEntry(t *testing.T, remarks string) audit.Entry {
	t.Helper()
	e, err := audit.NewEntry(context.Background(), "silo_record", "rec-1", audit.ActionUpdate,
		map[string]any{"remarks": ""}, map[string]any{"remarks": remarks})
	require.NoError(t, err)
	return e
}

func TestAuditLog_PackLargePayloadRoundTrip(t *testing.T) {
	log, err := NewAuditLog(nil)
	require.NoError(t, err)

	entry := newEntry(t, strings.Repeat("kernel bunker cleaned; ", 1000))
	require.Greater(t, len(entry.Changes), DefaultCompressThreshold)

	row := log.pack(entry)
	assert.Equal(t, CompressionZstd, row.CompressionAlgo)
	assert.Nil(t, row.Changes)
	assert.Less(t, len(row.ChangesCompressed), len(entry.Changes))

	got, err := log.unpack(row)
	require.NoError(t, err)
	assert.JSONEq(t, string(entry.Changes), string(got.Changes))
	assert.Equal(t, entry.EntityID, got.EntityID)
	assert.Equal(t, entry.Action, got.Action)
}

func TestAuditLog_PackSmallPayloadStaysPlain(t *testing.T) {
	log, err := NewAuditLog(nil)
	require.NoError(t, err)

	entry := newEntry(t, "ok")
	row := log.pack(entry)
	assert.Equal(t, CompressionNone, row.CompressionAlgo)
	assert.Empty(t, row.ChangesCompressed)

	got, err := log.unpack(row)
	require.NoError(t, err)
	assert.Equal(t, json.RawMessage(entry.Changes), got.Changes)
}

func TestAuditLog_UnpackCorruptPayload(t *testing.T) {
	log, err := NewAuditLog(nil)
	require.NoError(t, err)

	_, err = log.unpack(auditRow{
		Entry:             audit.Entry{EntityID: "rec-1"},
		ChangesCompressed: []byte("not zstd"),
		CompressionAlgo:   CompressionZstd,
	})
	assert.ErrorContains(t, err, "decompress changes")
}
