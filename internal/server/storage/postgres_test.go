package storage

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/ghosttips/internal/fhe"
	"github.com/dmitrijs2005/ghosttips/internal/ledger"
	"github.com/dmitrijs2005/ghosttips/internal/server/repositories/repomanager"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStoreWithMock(t *testing.T) (*PostgresStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewPostgresStore(db, repomanager.NewPostgresRepositoryManager()), mock
}

var at = time.Date(2025, 10, 1, 12, 0, 0, 0, time.UTC)

func TestLoad_FreshDatabase(t *testing.T) {
	s, mock := newStoreWithMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`FROM\s+exchange_state`).WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery(`FROM\s+balances`).WillReturnRows(sqlmock.NewRows([]string{"account", "ciphertext"}))
	mock.ExpectQuery(`FROM\s+allowances`).WillReturnRows(sqlmock.NewRows([]string{"owner", "amount"}))
	mock.ExpectQuery(`FROM\s+tip_jars`).WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectQuery(`FROM\s+tips`).WillReturnRows(sqlmock.NewRows([]string{"jar_id"}))
	mock.ExpectCommit()

	snap, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, ledger.Exchange{}, snap.Exchange)
	assert.Empty(t, snap.Balances)
	assert.Empty(t, snap.Jars)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLoad_ExistingState(t *testing.T) {
	s, mock := newStoreWithMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`FROM\s+exchange_state`).
		WillReturnRows(sqlmock.NewRows([]string{"rate", "reserve", "supply"}).AddRow(int64(1000), int64(1), int64(1000)))
	mock.ExpectQuery(`FROM\s+balances`).
		WillReturnRows(sqlmock.NewRows([]string{"account", "ciphertext"}).AddRow("0xb", []byte(`{"handle":"b","viewers":["0xb"]}`)))
	mock.ExpectQuery(`FROM\s+allowances`).
		WillReturnRows(sqlmock.NewRows([]string{"owner", "amount"}).AddRow("0xb", int64(40)))
	mock.ExpectQuery(`FROM\s+tip_jars`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "owner", "name", "description", "category", "active", "encrypted_total", "tip_count", "created_at"}).
			AddRow(int64(1), "0xa", "jar", "", "other", true, []byte(`{"handle":"t","viewers":["0xa"]}`), int64(1), at))
	mock.ExpectQuery(`FROM\s+tips`).
		WillReturnRows(sqlmock.NewRows([]string{"jar_id", "seq", "sender", "encrypted_amount", "message", "created_at"}).
			AddRow(int64(1), int64(1), "0xb", []byte(`{"handle":"x","viewers":["0xa"]}`), "", at))
	mock.ExpectCommit()

	snap, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, ledger.Exchange{Rate: 1000, Reserve: 1, Supply: 1000}, snap.Exchange)
	assert.Equal(t, uint64(40), snap.Allowances["0xb"])
	require.Len(t, snap.Jars, 1)
	assert.Equal(t, uint64(1), snap.Jars[0].TipCount)
	require.Len(t, snap.Tips[1], 1)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLoad_ErrorRollsBack(t *testing.T) {
	s, mock := newStoreWithMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`FROM\s+exchange_state`).WillReturnError(errors.New("db down"))
	mock.ExpectRollback()

	_, err := s.Load(context.Background())
	assert.ErrorContains(t, err, "exchange: db error: db down")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCommit_WritesEveryPartInOneTransaction(t *testing.T) {
	s, mock := newStoreWithMock(t)

	total := fhe.Value{Handle: "t2", Viewers: []string{"0xa"}}
	cs := &ledger.Changeset{
		Balances: map[string]fhe.Value{
			"0xc": {Handle: "c", Viewers: []string{"0xc"}},
			"0xb": {Handle: "b", Viewers: []string{"0xb"}},
		},
		Allowances: map[string]uint64{"0xb": 90},
		Jars: map[uint64]ledger.TipJar{
			1: {ID: 1, Owner: "0xa", Active: true, EncryptedTotal: total, TipCount: 2},
		},
		Tips: []ledger.Tip{{JarID: 1, Seq: 2, Sender: "0xb", EncryptedAmount: total, CreatedAt: at}},
	}

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT\s+INTO\s+balances`).WithArgs("0xb", cs.Balances["0xb"]).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT\s+INTO\s+balances`).WithArgs("0xc", cs.Balances["0xc"]).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT\s+INTO\s+allowances`).WithArgs("0xb", uint64(90)).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE\s+tip_jars`).WithArgs(uint64(1), true, total, uint64(2)).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT\s+INTO\s+tips`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, s.Commit(context.Background(), cs))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCommit_NewJarAndExchange(t *testing.T) {
	s, mock := newStoreWithMock(t)

	cs := &ledger.Changeset{
		Exchange: &ledger.Exchange{Rate: 1000},
		NewJar:   &ledger.TipJar{ID: 1, Owner: "0xa", Name: "jar", Category: ledger.CategoryOther, Active: true, CreatedAt: at},
	}

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT\s+INTO\s+exchange_state`).WithArgs(uint64(1000), uint64(0), uint64(0)).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT\s+INTO\s+tip_jars`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, s.Commit(context.Background(), cs))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCommit_FailureRollsBack(t *testing.T) {
	s, mock := newStoreWithMock(t)

	cs := &ledger.Changeset{
		Allowances: map[string]uint64{"0xb": 1},
		Tips:       []ledger.Tip{{JarID: 7, Seq: 1, CreatedAt: at}},
	}

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT\s+INTO\s+allowances`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT\s+INTO\s+tips`).WillReturnError(errors.New("fk violation"))
	mock.ExpectRollback()

	err := s.Commit(context.Background(), cs)
	assert.ErrorContains(t, err, "tip 7/1: db error: fk violation")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLedgerOverPostgresStore(t *testing.T) {
	s, mock := newStoreWithMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`FROM\s+exchange_state`).WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery(`FROM\s+balances`).WillReturnRows(sqlmock.NewRows([]string{"account", "ciphertext"}))
	mock.ExpectQuery(`FROM\s+allowances`).WillReturnRows(sqlmock.NewRows([]string{"owner", "amount"}))
	mock.ExpectQuery(`FROM\s+tip_jars`).WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectQuery(`FROM\s+tips`).WillReturnRows(sqlmock.NewRows([]string{"jar_id"}))
	mock.ExpectCommit()

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT\s+INTO\s+exchange_state`).WithArgs(uint64(1000), uint64(0), uint64(0)).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT\s+INTO\s+exchange_state`).WithArgs(uint64(1000), uint64(2), uint64(2000)).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT\s+INTO\s+balances`).WithArgs("0xa", sqlmock.AnyArg()).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	l, err := ledger.New(context.Background(), ledger.Config{Rate: 1000}, fhe.NewMemoryProvider(), s, nil, nil)
	require.NoError(t, err)

	minted, err := l.Deposit(context.Background(), "0xA", 2)
	require.NoError(t, err)
	assert.Equal(t, uint64(2000), minted)
	require.NoError(t, mock.ExpectationsWereMet())
}
