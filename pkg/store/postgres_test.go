package store

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tableflip.dev/diary/pkg/entry"
)

var entryRowColumns = []string{
	"id", "owner_id", "date", "kind", "description", "amount", "vendor",
	"category", "line_items", "reminder", "receipt_key", "created_at",
}

func newPostgresWithMock(t *testing.T) (*Postgres, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewPostgres(db, nil), mock
}

func TestPostgresLoadAllScopesToOwner(t *testing.T) {
	p, mock := newPostgresWithMock(t)
	created := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)

	rows := sqlmock.NewRows(entryRowColumns).
		AddRow("e1", "u1", time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC), "event", "concert",
			nil, nil, nil, nil, time.Date(2024, 1, 5, 18, 0, 0, 0, time.UTC), nil, created).
		AddRow("e2", "u1", time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC), "expense", "lunch",
			"12.50", "Cafe", "food", []byte(`[{"name":"soup","price":"7.5"}]`), nil, "receipts/e2.jpg", created).
		AddRow("e3", "u1", time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), "bogus", "skip me",
			nil, nil, nil, nil, nil, nil, created)

	mock.ExpectQuery(`SELECT .* FROM entries WHERE owner_id = \$1 ORDER BY date DESC, created_at ASC`).
		WithArgs("u1").
		WillReturnRows(rows)

	got, err := p.LoadAll(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "e1", got[0].ID)
	assert.Equal(t, entry.Event, got[0].Kind)
	require.NotNil(t, got[0].Reminder)
	assert.Nil(t, got[0].Expense)

	assert.Equal(t, "e2", got[1].ID)
	amount, ok := got[1].Amount()
	require.True(t, ok)
	assert.True(t, amount.Equal(decimal.RequireFromString("12.5")))
	assert.Equal(t, "Cafe", got[1].Vendor())
	assert.Equal(t, "receipts/e2.jpg", got[1].Receipt)
	require.Len(t, got[1].Expense.LineItems, 1)
	assert.Equal(t, "soup", got[1].Expense.LineItems[0].Name)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresLoadAllKeepsCreationOrderWithinDay(t *testing.T) {
	p, mock := newPostgresWithMock(t)
	on := time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)

	rows := sqlmock.NewRows(entryRowColumns).
		AddRow("first", "u1", on, "note", "morning", nil, nil, nil, nil, nil, nil, on.Add(8*time.Hour)).
		AddRow("second", "u1", on, "note", "evening", nil, nil, nil, nil, nil, nil, on.Add(20*time.Hour))
	mock.ExpectQuery(`ORDER BY date DESC, created_at ASC`).
		WithArgs("u1").
		WillReturnRows(rows)

	got, err := p.LoadAll(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "first", got[0].ID)
	assert.Equal(t, "second", got[1].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRequiresOwner(t *testing.T) {
	p, mock := newPostgresWithMock(t)
	ctx := context.Background()

	_, err := p.LoadAll(ctx, "")
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = p.Create(ctx, testEntry("a", entry.Note, 1))
	assert.ErrorIs(t, err, ErrUnauthorized)

	assert.ErrorIs(t, p.Delete(ctx, "a", ""), ErrUnauthorized)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresCreateReturnsAuthoritativeRow(t *testing.T) {
	p, mock := newPostgresWithMock(t)
	e := testEntry("a", entry.Note, 3)
	e.Owner = "u1"
	created := time.Date(2024, 1, 3, 10, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`INSERT INTO entries .* RETURNING`).
		WithArgs("a", "u1", sqlmock.AnyArg(), "note", "entry a",
			sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows(entryRowColumns).
			AddRow("a", "u1", time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC), "note", "entry a",
				nil, nil, nil, nil, nil, nil, created))

	saved, err := p.Create(context.Background(), e)
	require.NoError(t, err)
	assert.True(t, saved.Created.Equal(created))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresUpdateNotFound(t *testing.T) {
	p, mock := newPostgresWithMock(t)
	e := testEntry("missing", entry.Note, 3)
	e.Owner = "u1"

	mock.ExpectQuery(`UPDATE entries SET .* WHERE id = \$1 AND owner_id = \$2`).
		WillReturnError(sql.ErrNoRows)

	_, err := p.Update(context.Background(), e)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresDeleteWrapsBackendErrors(t *testing.T) {
	p, mock := newPostgresWithMock(t)

	mock.ExpectExec(`DELETE FROM entries WHERE id = \$1 AND owner_id = \$2`).
		WithArgs("a", "u1").
		WillReturnError(errors.New("connection reset"))

	err := p.Delete(context.Background(), "a", "u1")
	assert.ErrorIs(t, err, ErrBackend)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresWatchClosesWithContext(t *testing.T) {
	p, _ := newPostgresWithMock(t)
	ctx, cancel := context.WithCancel(context.Background())
	events, err := p.Watch(ctx)
	require.NoError(t, err)
	cancel()
	select {
	case _, ok := <-events:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("watch channel not closed")
	}
}
