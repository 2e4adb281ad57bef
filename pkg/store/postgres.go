package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/shopspring/decimal"

	"tableflip.dev/diary/pkg/entry"
	"tableflip.dev/diary/pkg/logging"
	"tableflip.dev/diary/pkg/store/migrations"
)

// DBTX is the subset of database/sql used by the Postgres strategy. Both
// *sql.DB and *sql.Tx satisfy it.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Postgres stores one row per entry, every query scoped to the owner.
type Postgres struct {
	db    DBTX
	close func() error
	log   logging.Logger
}

// gooseUp is a seam for tests.
var gooseUp = func(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}
	return goose.UpContext(ctx, db, ".")
}

// OpenPostgres connects to dsn, applies the embedded migrations and returns
// the strategy.
func OpenPostgres(ctx context.Context, dsn string, log logging.Logger) (*Postgres, error) {
	if dsn == "" {
		return nil, errors.New("store: database dsn required")
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, backendErr("open", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, backendErr("ping", err)
	}
	if err := gooseUp(ctx, db); err != nil {
		_ = db.Close()
		return nil, backendErr("migrate", err)
	}
	p := NewPostgres(db, log)
	p.close = db.Close
	return p, nil
}

// NewPostgres wraps an already migrated connection.
func NewPostgres(db DBTX, log logging.Logger) *Postgres {
	if log == nil {
		log = logging.Nop()
	}
	return &Postgres{db: db, log: log.With("store", "postgres")}
}

const entryColumns = `id, owner_id, date, kind, description, amount, vendor, category, line_items, reminder, receipt_key, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

type lineItemRow struct {
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
}

func scanEntry(row rowScanner) (*entry.Entry, error) {
	var (
		e        entry.Entry
		date     time.Time
		kind     string
		amount   decimal.NullDecimal
		vendor   sql.NullString
		category sql.NullString
		items    []byte
		reminder sql.NullTime
		receipt  sql.NullString
		created  time.Time
	)
	if err := row.Scan(&e.ID, &e.Owner, &date, &kind, &e.Description,
		&amount, &vendor, &category, &items, &reminder, &receipt, &created); err != nil {
		return nil, err
	}
	k, err := entry.ParseKind(kind)
	if err != nil {
		return nil, err
	}
	e.Kind = k
	e.Date = entry.DateOf(date)
	e.Created = entry.Timestamp{Time: created.UTC()}
	e.Receipt = receipt.String
	if reminder.Valid {
		e.Reminder = entry.NewTimestamp(reminder.Time)
	}
	if k == entry.Expense {
		e.Expense = &entry.ExpenseInfo{
			Amount:   amount,
			Vendor:   vendor.String,
			Category: category.String,
		}
		if len(items) > 0 {
			var rows []lineItemRow
			if err := json.Unmarshal(items, &rows); err != nil {
				return nil, fmt.Errorf("line items: %w", err)
			}
			for _, r := range rows {
				e.Expense.LineItems = append(e.Expense.LineItems, entry.LineItem{Name: r.Name, Price: r.Price})
			}
		}
	}
	e.Normalize()
	return &e, nil
}

// entryArgs returns the column values after id and owner_id, in
// entryColumns order.
func entryArgs(e *entry.Entry) ([]any, error) {
	var (
		amount   decimal.NullDecimal
		vendor   sql.NullString
		category sql.NullString
		items    []byte
		reminder sql.NullTime
		receipt  sql.NullString
	)
	if e.Expense != nil {
		amount = e.Expense.Amount
		vendor = sql.NullString{String: e.Expense.Vendor, Valid: e.Expense.Vendor != ""}
		category = sql.NullString{String: e.Expense.Category, Valid: e.Expense.Category != ""}
		if len(e.Expense.LineItems) > 0 {
			rows := make([]lineItemRow, 0, len(e.Expense.LineItems))
			for _, li := range e.Expense.LineItems {
				rows = append(rows, lineItemRow{Name: li.Name, Price: li.Price})
			}
			b, err := json.Marshal(rows)
			if err != nil {
				return nil, err
			}
			items = b
		}
	}
	if e.Reminder != nil {
		reminder = sql.NullTime{Time: e.Reminder.UTC(), Valid: true}
	}
	if e.Receipt != "" {
		receipt = sql.NullString{String: e.Receipt, Valid: true}
	}
	return []any{e.Date.Time, string(e.Kind), e.Description, amount, vendor, category, items, reminder, receipt}, nil
}

func (p *Postgres) LoadAll(ctx context.Context, owner string) ([]*entry.Entry, error) {
	if owner == "" {
		return nil, ErrUnauthorized
	}
	query := `SELECT ` + entryColumns + ` FROM entries WHERE owner_id = $1 ORDER BY date DESC, created_at ASC`
	rows, err := p.db.QueryContext(ctx, query, owner)
	if err != nil {
		return nil, backendErr("select entries", err)
	}
	defer rows.Close()

	var result []*entry.Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			p.log.Warn(ctx, "skipping malformed row", "err", err)
			continue
		}
		result = append(result, e)
	}
	if err := rows.Err(); err != nil {
		return nil, backendErr("select entries", err)
	}
	SortEntries(result)
	return result, nil
}

func (p *Postgres) Create(ctx context.Context, e *entry.Entry) (*entry.Entry, error) {
	if e == nil || e.ID == "" {
		return nil, errors.New("store: entry id required")
	}
	if e.Owner == "" {
		return nil, ErrUnauthorized
	}
	args, err := entryArgs(e)
	if err != nil {
		return nil, fmt.Errorf("store: encode %s: %w", e.ID, err)
	}
	query := `
		INSERT INTO entries (id, owner_id, date, kind, description, amount, vendor, category, line_items, reminder, receipt_key)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING ` + entryColumns
	saved, err := scanEntry(p.db.QueryRowContext(ctx, query, append([]any{e.ID, e.Owner}, args...)...))
	if err != nil {
		return nil, backendErr("insert entry", err)
	}
	return saved, nil
}

func (p *Postgres) Update(ctx context.Context, e *entry.Entry) (*entry.Entry, error) {
	if e == nil {
		return nil, ErrNotFound
	}
	if e.Owner == "" {
		return nil, ErrUnauthorized
	}
	args, err := entryArgs(e)
	if err != nil {
		return nil, fmt.Errorf("store: encode %s: %w", e.ID, err)
	}
	query := `
		UPDATE entries SET date = $3, kind = $4, description = $5, amount = $6, vendor = $7,
			category = $8, line_items = $9, reminder = $10, receipt_key = $11, updated_at = now()
		WHERE id = $1 AND owner_id = $2
		RETURNING ` + entryColumns
	saved, err := scanEntry(p.db.QueryRowContext(ctx, query, append([]any{e.ID, e.Owner}, args...)...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, backendErr("update entry", err)
	}
	return saved, nil
}

func (p *Postgres) Delete(ctx context.Context, id, owner string) error {
	if owner == "" {
		return ErrUnauthorized
	}
	if _, err := p.db.ExecContext(ctx, `DELETE FROM entries WHERE id = $1 AND owner_id = $2`, id, owner); err != nil {
		return backendErr("delete entry", err)
	}
	return nil
}

// Watch returns a channel that closes with ctx. Remote changes are picked
// up by reloading.
func (p *Postgres) Watch(ctx context.Context) (<-chan Event, error) {
	events := make(chan Event)
	go func() {
		<-ctx.Done()
		close(events)
	}()
	return events, nil
}

func (p *Postgres) Close() error {
	if p.close == nil {
		return nil
	}
	return p.close()
}
