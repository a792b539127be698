package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"mac-advisor/internal/domain/model"
)

// Store 封装投递台账的 SQLite 读写逻辑。
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// GetSchemaMetaValue 查询 schema_meta 表指定 key 的 value。
func (s *Store) GetSchemaMetaValue(ctx context.Context, key string) (string, error) {
	var v string
	err := s.db.QueryRowContext(ctx, `
		SELECT value
		FROM schema_meta
		WHERE key = ?
		LIMIT 1
	`, key).Scan(&v)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", nil
		}
		return "", fmt.Errorf("query schema_meta %s: %w", key, err)
	}
	return v, nil
}

// SaveDispatch 写入一条投递台账记录。CreatedAt 为 0 时落当前时间。
func (s *Store) SaveDispatch(ctx context.Context, d model.DispatchInfo) error {
	if d.DispatchID == "" {
		return fmt.Errorf("save dispatch: empty dispatch_id")
	}
	createdAt := d.CreatedAt
	if createdAt == 0 {
		createdAt = time.Now().Unix()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO dispatches(
			dispatch_id, customer_email, mac_model, priority_level, system_health,
			letter_grade, priority_score, critical_count, moderate_count, positive_count,
			flag_count, opportunity, customer_sent, sales_sent, pdf_path, pdf_sha256, created_at
		)
		VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		d.DispatchID,
		d.CustomerEmail,
		nullIfEmpty(d.MacModel),
		d.PriorityLevel,
		d.SystemHealth,
		d.LetterGrade,
		d.PriorityScore,
		d.CriticalCount,
		d.ModerateCount,
		d.PositiveCount,
		d.FlagCount,
		d.Opportunity,
		boolToInt(d.CustomerSent),
		boolToInt(d.SalesSent),
		nullIfEmpty(d.PDFPath),
		nullIfEmpty(d.PDFSHA256),
		createdAt,
	)
	if err != nil {
		return fmt.Errorf("insert dispatch %s: %w", d.DispatchID, err)
	}
	return nil
}

// GetDispatch 按 ID 查询单条台账记录，不存在时返回 nil。
func (s *Store) GetDispatch(ctx context.Context, dispatchID string) (*model.DispatchInfo, error) {
	row := s.db.QueryRowContext(ctx, selectDispatch+`
		WHERE dispatch_id = ?
		LIMIT 1
	`, dispatchID)

	d, err := scanDispatch(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("query dispatch %s: %w", dispatchID, err)
	}
	return d, nil
}

// ListDispatches 按创建时间倒序分页列出台账记录。
func (s *Store) ListDispatches(ctx context.Context, limit, offset int) ([]model.DispatchInfo, error) {
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	rows, err := s.db.QueryContext(ctx, selectDispatch+`
		ORDER BY created_at DESC, dispatch_id DESC
		LIMIT ? OFFSET ?
	`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list dispatches: %w", err)
	}
	defer rows.Close()

	var out []model.DispatchInfo
	for rows.Next() {
		d, err := scanDispatch(rows)
		if err != nil {
			return nil, fmt.Errorf("scan dispatch: %w", err)
		}
		out = append(out, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate dispatches: %w", err)
	}
	return out, nil
}

// CountDispatches 返回台账记录总数，供分页响应使用。
func (s *Store) CountDispatches(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM dispatches`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count dispatches: %w", err)
	}
	return n, nil
}

const selectDispatch = `
	SELECT dispatch_id, customer_email, mac_model, priority_level, system_health,
		letter_grade, priority_score, critical_count, moderate_count, positive_count,
		flag_count, opportunity, customer_sent, sales_sent, pdf_path, pdf_sha256, created_at
	FROM dispatches
`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDispatch(r rowScanner) (*model.DispatchInfo, error) {
	var d model.DispatchInfo
	var macModel, pdfPath, pdfSHA sql.NullString
	var customerSent, salesSent int

	err := r.Scan(
		&d.DispatchID,
		&d.CustomerEmail,
		&macModel,
		&d.PriorityLevel,
		&d.SystemHealth,
		&d.LetterGrade,
		&d.PriorityScore,
		&d.CriticalCount,
		&d.ModerateCount,
		&d.PositiveCount,
		&d.FlagCount,
		&d.Opportunity,
		&customerSent,
		&salesSent,
		&pdfPath,
		&pdfSHA,
		&d.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	d.MacModel = macModel.String
	d.PDFPath = pdfPath.String
	d.PDFSHA256 = pdfSHA.String
	d.CustomerSent = customerSent != 0
	d.SalesSent = salesSent != 0
	return &d, nil
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
