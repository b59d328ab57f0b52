package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/klauspost/compress/zstd"

	"millstock/internal/domain/audit"
)

// CompressionAlgo specifies the compression algorithm used for a change payload.
type CompressionAlgo string

const (
	CompressionNone CompressionAlgo = "none"
	CompressionZstd CompressionAlgo = "zstd"
)

// DefaultCompressThreshold is the payload size above which changes are zstd-compressed.
const DefaultCompressThreshold = 10 * 1024

const auditTable = "sys_audit"

// auditRow is the stored shape of audit.Entry.
type auditRow struct {
	audit.Entry
	ChangesCompressed []byte          `db:"changes_compressed"`
	CompressionAlgo   CompressionAlgo `db:"compression_algo"`
}

// AuditLog implements audit.Recorder on the sys_audit table.
type AuditLog struct {
	txManager         *TxManager
	encoder           *zstd.Encoder
	decoder           *zstd.Decoder
	compressThreshold int
	builder           squirrel.StatementBuilderType
}

var _ audit.Recorder = (*AuditLog)(nil)

// NewAuditLog creates the audit log with a zstd codec.
func NewAuditLog(txManager *TxManager) (*AuditLog, error) {
	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("create zstd encoder: %w", err)
	}
	decoder, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("create zstd decoder: %w", err)
	}
	return &AuditLog{
		txManager:         txManager,
		encoder:           encoder,
		decoder:           decoder,
		compressThreshold: DefaultCompressThreshold,
		builder:           squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}, nil
}

// pack compresses large payloads. The plain column is left NULL when compressed.
func (s *AuditLog) pack(entry audit.Entry) auditRow {
	row := auditRow{Entry: entry, CompressionAlgo: CompressionNone}
	if len(entry.Changes) > s.compressThreshold {
		row.ChangesCompressed = s.encoder.EncodeAll(entry.Changes, nil)
		row.Changes = nil
		row.CompressionAlgo = CompressionZstd
	}
	return row
}

func (s *AuditLog) unpack(row auditRow) (audit.Entry, error) {
	if row.CompressionAlgo == CompressionZstd && len(row.ChangesCompressed) > 0 {
		plain, err := s.decoder.DecodeAll(row.ChangesCompressed, nil)
		if err != nil {
			return audit.Entry{}, fmt.Errorf("decompress changes: %w", err)
		}
		row.Changes = plain
	}
	return row.Entry, nil
}

// Record inserts an entry.
func (s *AuditLog) Record(ctx context.Context, entry audit.Entry) error {
	row := s.pack(entry)

	var changes any
	if row.Changes != nil {
		changes = []byte(row.Changes)
	}

	q := s.builder.Insert(auditTable).
		Columns("id", "entity_type", "entity_id", "action", "user_id",
			"changes", "changes_compressed", "compression_algo", "created_at").
		Values(row.ID, row.EntityType, row.EntityID, row.Action, row.UserID,
			changes, row.ChangesCompressed, row.CompressionAlgo, row.CreatedAt)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build audit insert: %w", err)
	}
	if _, err := s.txManager.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}
	return nil
}

// History returns the newest entries of an entity first.
func (s *AuditLog) History(ctx context.Context, entityType, entityID string, limit int) ([]audit.Entry, error) {
	if limit <= 0 {
		limit = 50
	}
	q := s.builder.
		Select("id", "entity_type", "entity_id", "action", "user_id",
			"changes", "changes_compressed", "compression_algo", "created_at").
		From(auditTable).
		Where(squirrel.Eq{"entity_type": entityType, "entity_id": entityID}).
		OrderBy("created_at DESC").
		Limit(uint64(limit))

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build history query: %w", err)
	}

	var rows []auditRow
	if err := pgxscan.Select(ctx, s.txManager.GetQuerier(ctx), &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}

	entries := make([]audit.Entry, 0, len(rows))
	for _, row := range rows {
		e, err := s.unpack(row)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// DeleteBefore removes entries older than cutoff (retention job).
func (s *AuditLog) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	sql, args, err := s.builder.Delete(auditTable).
		Where(squirrel.Lt{"created_at": cutoff}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build audit cleanup: %w", err)
	}
	tag, err := s.txManager.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return 0, fmt.Errorf("delete audit entries: %w", err)
	}
	return tag.RowsAffected(), nil
}
