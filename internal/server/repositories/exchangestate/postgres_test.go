package exchangestate

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/ghosttips/internal/common"
	"github.com/dmitrijs2005/ghosttips/internal/ledger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewPostgresRepository(db), mock
}

const (
	selectQ = `(?s)^SELECT\s+rate,\s*reserve,\s*supply\s+FROM\s+exchange_state\s+WHERE\s+id\s*=\s*1\s*$`
	upsertQ = `(?s)^INSERT\s+INTO\s+exchange_state\s*\(id,\s*rate,\s*reserve,\s*supply\)\s*VALUES\s*\(1,\s*\$1,\s*\$2,\s*\$3\)\s*ON\s+CONFLICT.*$`
)

func TestGet_Found(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(selectQ).
		WillReturnRows(sqlmock.NewRows([]string{"rate", "reserve", "supply"}).AddRow(int64(1000), int64(3), int64(3000)))

	got, err := repo.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, ledger.Exchange{Rate: 1000, Reserve: 3, Supply: 3000}, got)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGet_NotFound(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(selectQ).WillReturnError(sql.ErrNoRows)

	_, err := repo.Get(context.Background())
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestGet_DBError(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(selectQ).WillReturnError(errors.New("db down"))

	_, err := repo.Get(context.Background())
	assert.ErrorContains(t, err, "db error: db down")
}

func TestUpsert(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectExec(upsertQ).
		WithArgs(uint64(1000), uint64(2), uint64(2000)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Upsert(context.Background(), ledger.Exchange{Rate: 1000, Reserve: 2, Supply: 2000})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsert_DBError(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectExec(upsertQ).WillReturnError(errors.New("deadlock"))

	err := repo.Upsert(context.Background(), ledger.Exchange{Rate: 1})
	assert.ErrorContains(t, err, "db error: deadlock")
}
