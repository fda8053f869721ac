package registry

import (
	"context"
	"database/sql"
	"errors"
	"math/big"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/gwauth/internal/common"
	"github.com/dmitrijs2005/gwauth/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return NewPostgresRepository(db), mock, db
}

const (
	qInsertGateway = `(?s)^INSERT\s+INTO\s+gateways\s*\(gateway_id,\s*declared_id,\s*challenge,\s*response\)\s*VALUES\s*\(\$1,\s*\$2,\s*\$3,\s*\$4\)\s*ON\s+CONFLICT\s*\(gateway_id\)\s*DO\s+NOTHING\s*$`
	qSelectGateway = `(?s)^SELECT\s+gateway_id,\s*declared_id,\s*challenge::text,\s*response::text,\s*created_at\s+FROM\s+gateways\s+WHERE\s+gateway_id\s*=\s*\$1\s*$`
	qInsertUser    = `(?s)^INSERT\s+INTO\s+users\s*\(user_id,\s*commitment\)\s*VALUES\s*\(\$1,\s*\$2\)\s*ON\s+CONFLICT\s*\(user_id\)\s*DO\s+NOTHING\s*$`
	qSelectUser    = `(?s)^SELECT\s+user_id,\s*commitment,\s*created_at\s+FROM\s+users\s+WHERE\s+user_id\s*=\s*\$1\s*$`
	qDeleteUser    = `(?s)^DELETE\s+FROM\s+users\s+WHERE\s+user_id\s*=\s*\$1\s+AND\s+commitment\s*=\s*\$2\s*$`
	qInsertPid     = `(?s)^INSERT\s+INTO\s+pseudonyms\s*\(pseudonym\)\s*VALUES\s*\(\$1\)\s*ON\s+CONFLICT\s*\(pseudonym\)\s*DO\s+NOTHING\s*$`
	qInsertParams  = `(?s)^INSERT\s+INTO\s+ra_parameters\s*\(id,\s*modulus,\s*generator\)\s*VALUES\s*\(1,\s*\$1,\s*\$2\)\s*ON\s+CONFLICT\s*\(id\)\s*DO\s+NOTHING\s*$`
	qSelectParams  = `(?s)^SELECT\s+modulus,\s*generator\s+FROM\s+ra_parameters\s+WHERE\s+id\s*=\s*1\s*$`
)

func TestCreateGateway_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(qInsertGateway).
		WithArgs("GW1", "GW1", "18446744073709551615", "7").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.CreateGateway(context.Background(), &models.GatewayRegistration{
		GatewayID: "GW1", DeclaredID: "GW1", Challenge: ^uint64(0), Response: 7,
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateGateway_Duplicate(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(qInsertGateway).
		WithArgs("GW1", "GW1", "1", "2").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.CreateGateway(context.Background(), &models.GatewayRegistration{
		GatewayID: "GW1", DeclaredID: "GW1", Challenge: 1, Response: 2,
	})
	assert.ErrorIs(t, err, common.ErrDuplicateGateway)
	assert.ErrorIs(t, err, common.ErrDuplicateRegistration)
}

func TestCreateGateway_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(qInsertGateway).
		WithArgs("GW1", "GW1", "1", "2").
		WillReturnError(errors.New("db down"))

	err := repo.CreateGateway(context.Background(), &models.GatewayRegistration{
		GatewayID: "GW1", DeclaredID: "GW1", Challenge: 1, Response: 2,
	})
	require.Error(t, err)
	assert.Regexp(t, regexp.MustCompile(`db error: .*db down`), err.Error())
}

func TestGetGateway_Found(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	created := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"gateway_id", "declared_id", "challenge", "response", "created_at"}).
		AddRow("GW1", "GW1-declared", "18446744073709551615", "12345", created)
	mock.ExpectQuery(qSelectGateway).WithArgs("GW1").WillReturnRows(rows)

	got, err := repo.GetGateway(context.Background(), "GW1")
	require.NoError(t, err)
	assert.Equal(t, &models.GatewayRegistration{
		GatewayID: "GW1", DeclaredID: "GW1-declared",
		Challenge: ^uint64(0), Response: 12345, CreatedAt: created,
	}, got)
}

func TestGetGateway_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(qSelectGateway).WithArgs("ghost").WillReturnError(sql.ErrNoRows)

	_, err := repo.GetGateway(context.Background(), "ghost")
	assert.ErrorIs(t, err, common.ErrUnknownGateway)
}

func TestGetGateway_CorruptNumeric(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	rows := sqlmock.NewRows([]string{"gateway_id", "declared_id", "challenge", "response", "created_at"}).
		AddRow("GW1", "GW1", "-1", "1", time.Now())
	mock.ExpectQuery(qSelectGateway).WithArgs("GW1").WillReturnRows(rows)

	_, err := repo.GetGateway(context.Background(), "GW1")
	assert.ErrorIs(t, err, common.ErrInternal)
}

func TestCreateUser_SuccessAndDuplicate(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	commitment := big.NewInt(0xBEEF)
	mock.ExpectExec(qInsertUser).
		WithArgs("user1", []byte{0xBE, 0xEF}).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(qInsertUser).
		WithArgs("user1", []byte{0x01}).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.CreateUser(context.Background(), &models.UserCredential{UserID: "user1", Commitment: commitment}))

	err := repo.CreateUser(context.Background(), &models.UserCredential{UserID: "user1", Commitment: big.NewInt(1)})
	assert.ErrorIs(t, err, common.ErrDuplicateUser)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetUser(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	created := time.Now().UTC()
	mock.ExpectQuery(qSelectUser).WithArgs("user1").
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "commitment", "created_at"}).
			AddRow("user1", []byte{0xBE, 0xEF}, created))
	mock.ExpectQuery(qSelectUser).WithArgs("ghost").WillReturnError(sql.ErrNoRows)

	got, err := repo.GetUser(context.Background(), "user1")
	require.NoError(t, err)
	assert.Equal(t, 0, got.Commitment.Cmp(big.NewInt(0xBEEF)))

	_, err = repo.GetUser(context.Background(), "ghost")
	assert.ErrorIs(t, err, common.ErrUnknownUser)
}

func TestDeleteUser(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(qDeleteUser).WithArgs("user1", []byte{0xBE, 0xEF}).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(qDeleteUser).WithArgs("user1", []byte{0x01}).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(qDeleteUser).WithArgs("user1", []byte{0x02}).WillReturnError(errors.New("boom"))

	require.NoError(t, repo.DeleteUser(context.Background(), "user1", big.NewInt(0xBEEF)))

	err := repo.DeleteUser(context.Background(), "user1", big.NewInt(1))
	assert.ErrorIs(t, err, common.ErrUnknownUser)

	err = repo.DeleteUser(context.Background(), "user1", big.NewInt(2))
	assert.ErrorContains(t, err, "db error")

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestReservePseudonym(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(qInsertPid).WithArgs("pid-1").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(qInsertPid).WithArgs("pid-1").WillReturnResult(sqlmock.NewResult(0, 0))

	ok, err := repo.ReservePseudonym(context.Background(), "pid-1")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.ReservePseudonym(context.Background(), "pid-1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestParameters_SaveAndLoad(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(qSelectParams).WillReturnError(sql.ErrNoRows)
	mock.ExpectExec(qInsertParams).WithArgs("23", "5").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(qInsertParams).WithArgs("23", "5").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(qSelectParams).
		WillReturnRows(sqlmock.NewRows([]string{"modulus", "generator"}).AddRow("23", "5"))

	_, _, err := repo.LoadParameters(context.Background())
	assert.ErrorIs(t, err, ErrNoParameters)

	require.NoError(t, repo.SaveParameters(context.Background(), big.NewInt(23), big.NewInt(5)))
	assert.ErrorIs(t, repo.SaveParameters(context.Background(), big.NewInt(23), big.NewInt(5)), ErrParametersStored)

	p, g, err := repo.LoadParameters(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "23", p.String())
	assert.Equal(t, "5", g.String())
}

func TestWithinTx_CommitsAndRollsBack(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec(qInsertPid).WithArgs("a").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	mock.ExpectBegin()
	mock.ExpectExec(qInsertPid).WithArgs("b").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectRollback()

	err := repo.WithinTx(context.Background(), func(ctx context.Context, r Repository) error {
		_, err := r.ReservePseudonym(ctx, "a")
		return err
	})
	require.NoError(t, err)

	boom := errors.New("boom")
	err = repo.WithinTx(context.Background(), func(ctx context.Context, r Repository) error {
		if _, err := r.ReservePseudonym(ctx, "b"); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)
	require.NoError(t, mock.ExpectationsWereMet())
}
