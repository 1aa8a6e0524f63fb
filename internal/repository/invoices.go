package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"

	"github.com/joseph-ayodele/invoice-extractor/constants"
	"github.com/joseph-ayodele/invoice-extractor/internal/common"
	"github.com/joseph-ayodele/invoice-extractor/internal/invoice"
)

const (
	tableResults     = "invoice_results"
	colID            = "id"
	colRunID         = "run_id"
	colSourcePath    = "source_path"
	colSourceFile    = "source_file"
	colInvoiceNumber = "invoice_number"
	colInvoiceDate   = "invoice_date"
	colInvoiceID     = "invoice_id"
	colTotalAmount   = "total_amount"
	colMethod        = "extraction_method"
	colScore         = "quality_score"
	colEscalated     = "ocr_escalated"
	colStatus        = "status"
	colError         = "error"
	colDurationMS    = "duration_ms"
	colCreatedAt     = "created_at"
)

var resultColumns = []string{
	colID, colRunID, colSourcePath, colSourceFile,
	colInvoiceNumber, colInvoiceDate, colInvoiceID, colTotalAmount,
	colMethod, colScore, colEscalated, colStatus, colError, colDurationMS, colCreatedAt,
}

// fixed width so text ordering matches time ordering
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Result is one processed document within a run.
type Result struct {
	ID         string
	RunID      string
	SourcePath string
	Record     invoice.Record
	Score      int
	Escalated  bool
	Status     constants.RunStatus
	Error      string
	Duration   time.Duration
	CreatedAt  time.Time
}

type InvoiceRepository interface {
	Save(ctx context.Context, r *Result) error
	ListByRun(ctx context.Context, runID string) ([]*Result, error)
	LatestBySource(ctx context.Context, sourcePath string) (*Result, error)
}

type invoiceRepository struct {
	db     *DB
	logger *slog.Logger
}

func NewInvoiceRepository(db *DB, logger *slog.Logger) InvoiceRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &invoiceRepository{
		db:     db,
		logger: logger,
	}
}

// Save inserts r, assigning an ID and creation time when unset.
func (r *invoiceRepository) Save(ctx context.Context, res *Result) error {
	if res.ID == "" {
		res.ID = uuid.NewString()
	}
	if res.CreatedAt.IsZero() {
		res.CreatedAt = time.Now()
	}
	res.CreatedAt = res.CreatedAt.UTC()

	escalated := 0
	if res.Escalated {
		escalated = 1
	}
	rec := res.Record
	q, args := entsql.Dialect(r.db.dialect).
		Insert(tableResults).
		Columns(resultColumns...).
		Values(
			res.ID, res.RunID, res.SourcePath, rec.SourceFile,
			nullString(rec.InvoiceNumber), nullString(rec.InvoiceDate), nullString(rec.InvoiceID), nullFloat(rec.TotalAmount),
			rec.ExtractionMethod, res.Score, escalated, string(res.Status), sql.NullString{String: res.Error, Valid: res.Error != ""},
			res.Duration.Milliseconds(), res.CreatedAt.Format(timeLayout),
		).
		Query()

	if err := r.db.drv.Exec(ctx, q, args, nil); err != nil {
		r.logger.Error("failed to save result", "source", res.SourcePath, "run_id", res.RunID, "error", err)
		return common.NewAppError(common.CodeDatabase, "save result", fmt.Errorf("%w: %w", common.ErrDatabase, err))
	}
	return nil
}

func (r *invoiceRepository) ListByRun(ctx context.Context, runID string) ([]*Result, error) {
	q, args := entsql.Dialect(r.db.dialect).
		Select(resultColumns...).
		From(entsql.Table(tableResults)).
		Where(entsql.EQ(colRunID, runID)).
		OrderBy(entsql.Asc(colCreatedAt), entsql.Asc(colSourcePath)).
		Query()

	results, err := r.query(ctx, q, args)
	if err != nil {
		r.logger.Error("failed to list results", "run_id", runID, "error", err)
		return nil, err
	}
	return results, nil
}

// LatestBySource returns the most recent result for a document, or common.ErrNotFound.
func (r *invoiceRepository) LatestBySource(ctx context.Context, sourcePath string) (*Result, error) {
	q, args := entsql.Dialect(r.db.dialect).
		Select(resultColumns...).
		From(entsql.Table(tableResults)).
		Where(entsql.EQ(colSourcePath, sourcePath)).
		OrderBy(entsql.Desc(colCreatedAt)).
		Limit(1).
		Query()

	results, err := r.query(ctx, q, args)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, common.ErrNotFound
	}
	return results[0], nil
}

func (r *invoiceRepository) query(ctx context.Context, q string, args []any) ([]*Result, error) {
	rows := &entsql.Rows{}
	if err := r.db.drv.Query(ctx, q, args, rows); err != nil {
		return nil, common.NewAppError(common.CodeDatabase, "query results", fmt.Errorf("%w: %w", common.ErrDatabase, err))
	}
	defer rows.Close()

	var out []*Result
	for rows.Next() {
		res, err := scanResult(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate results: %w", err)
	}
	return out, nil
}

func scanResult(rows *entsql.Rows) (*Result, error) {
	var (
		res                      Result
		number, date, id, errMsg sql.NullString
		total                    sql.NullFloat64
		escalated, durationMS    int64
		createdAt                string
	)
	if err := rows.Scan(
		&res.ID, &res.RunID, &res.SourcePath, &res.Record.SourceFile,
		&number, &date, &id, &total,
		&res.Record.ExtractionMethod, &res.Score, &escalated, &res.Status, &errMsg, &durationMS, &createdAt,
	); err != nil {
		return nil, fmt.Errorf("scan result: %w", err)
	}
	res.Record.InvoiceNumber = stringPtr(number)
	res.Record.InvoiceDate = stringPtr(date)
	res.Record.InvoiceID = stringPtr(id)
	if total.Valid {
		v := total.Float64
		res.Record.TotalAmount = &v
	}
	res.Escalated = escalated != 0
	res.Error = errMsg.String
	res.Duration = time.Duration(durationMS) * time.Millisecond

	t, err := time.Parse(timeLayout, createdAt)
	if err != nil {
		return nil, fmt.Errorf("parse created_at %q: %w", createdAt, err)
	}
	res.CreatedAt = t
	return &res, nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func nullFloat(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}

func stringPtr(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	v := s.String
	return &v
}
