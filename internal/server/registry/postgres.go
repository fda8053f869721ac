package registry

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math/big"
	"strconv"

	"github.com/dmitrijs2005/gwauth/internal/common"
	"github.com/dmitrijs2005/gwauth/internal/dbx"
	"github.com/dmitrijs2005/gwauth/internal/models"
)

type PostgresRepository struct {
	db dbx.DBTX
	// conn is nil for repositories already bound to a transaction.
	conn *sql.DB
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	r := &PostgresRepository{db: db}
	if conn, ok := db.(*sql.DB); ok {
		r.conn = conn
	}
	return r
}

func (r *PostgresRepository) LoadParameters(ctx context.Context) (*big.Int, *big.Int, error) {
	query :=
		`SELECT modulus, generator FROM ra_parameters
		 WHERE id = 1
		 `

	var ms, gs string
	err := r.db.QueryRowContext(ctx, query).Scan(&ms, &gs)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, ErrNoParameters
		}
		return nil, nil, fmt.Errorf("db error: %w", err)
	}

	m, ok1 := new(big.Int).SetString(ms, 10)
	g, ok2 := new(big.Int).SetString(gs, 10)
	if !ok1 || !ok2 {
		return nil, nil, fmt.Errorf("%w: stored group parameters are not integers", common.ErrInternal)
	}
	return m, g, nil
}

func (r *PostgresRepository) SaveParameters(ctx context.Context, modulus, generator *big.Int) error {
	query :=
		`INSERT INTO ra_parameters (id, modulus, generator)
		 VALUES (1, $1, $2)
		 ON CONFLICT (id) DO NOTHING
		 `

	res, err := r.db.ExecContext(ctx, query, modulus.String(), generator.String())
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return insertedOrDuplicate(res, ErrParametersStored)
}

func (r *PostgresRepository) CreateGateway(ctx context.Context, g *models.GatewayRegistration) error {
	query :=
		`INSERT INTO gateways (gateway_id, declared_id, challenge, response)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (gateway_id) DO NOTHING
		 `

	res, err := r.db.ExecContext(ctx, query,
		g.GatewayID, g.DeclaredID, formatUint(g.Challenge), formatUint(g.Response))
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return insertedOrDuplicate(res, common.ErrDuplicateGateway)
}

func (r *PostgresRepository) GetGateway(ctx context.Context, gatewayID string) (*models.GatewayRegistration, error) {
	query :=
		`SELECT gateway_id, declared_id, challenge::text, response::text, created_at FROM gateways
		 WHERE gateway_id = $1
		 `

	g := &models.GatewayRegistration{}
	var challenge, response string
	err := r.db.QueryRowContext(ctx, query, gatewayID).
		Scan(&g.GatewayID, &g.DeclaredID, &challenge, &response, &g.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrUnknownGateway
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	if g.Challenge, err = strconv.ParseUint(challenge, 10, 64); err != nil {
		return nil, fmt.Errorf("%w: challenge column: %v", common.ErrInternal, err)
	}
	if g.Response, err = strconv.ParseUint(response, 10, 64); err != nil {
		return nil, fmt.Errorf("%w: response column: %v", common.ErrInternal, err)
	}
	return g, nil
}

func (r *PostgresRepository) CreateUser(ctx context.Context, u *models.UserCredential) error {
	query :=
		`INSERT INTO users (user_id, commitment)
		 VALUES ($1, $2)
		 ON CONFLICT (user_id) DO NOTHING
		 `

	res, err := r.db.ExecContext(ctx, query, u.UserID, u.Commitment.Bytes())
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return insertedOrDuplicate(res, common.ErrDuplicateUser)
}

func (r *PostgresRepository) GetUser(ctx context.Context, userID string) (*models.UserCredential, error) {
	query :=
		`SELECT user_id, commitment, created_at FROM users
		 WHERE user_id = $1
		 `

	u := &models.UserCredential{}
	var commitment []byte
	err := r.db.QueryRowContext(ctx, query, userID).Scan(&u.UserID, &commitment, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrUnknownUser
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	u.Commitment = new(big.Int).SetBytes(commitment)
	return u, nil
}

func (r *PostgresRepository) DeleteUser(ctx context.Context, userID string, commitment *big.Int) error {
	query :=
		`DELETE FROM users
		 WHERE user_id = $1 AND commitment = $2
		 `

	res, err := r.db.ExecContext(ctx, query, userID, commitment.Bytes())
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrUnknownUser
	}
	return nil
}

func (r *PostgresRepository) ReservePseudonym(ctx context.Context, pid string) (bool, error) {
	query :=
		`INSERT INTO pseudonyms (pseudonym)
		 VALUES ($1)
		 ON CONFLICT (pseudonym) DO NOTHING
		 `

	res, err := r.db.ExecContext(ctx, query, pid)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return n == 1, nil
}

func (r *PostgresRepository) WithinTx(ctx context.Context, fn func(ctx context.Context, r Repository) error) error {
	if r.conn == nil {
		return fn(ctx, r)
	}
	return dbx.WithTx(ctx, r.conn, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return fn(ctx, &PostgresRepository{db: tx})
	})
}

func insertedOrDuplicate(res sql.Result, dup error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return dup
	}
	return nil
}

func formatUint(v uint64) string {
	return strconv.FormatUint(v, 10)
}
