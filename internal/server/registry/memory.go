package registry

import (
	"context"
	"math/big"
	"sync"
	"time"

	"github.com/dmitrijs2005/gwauth/internal/common"
	"github.com/dmitrijs2005/gwauth/internal/keyedstore"
	"github.com/dmitrijs2005/gwauth/internal/models"
)

type groupRow struct {
	modulus   *big.Int
	generator *big.Int
}

type MemoryRepository struct {
	params     *keyedstore.Store[int, groupRow]
	gateways   *keyedstore.Store[string, models.GatewayRegistration]
	users      *keyedstore.Store[string, models.UserCredential]
	pseudonyms *keyedstore.Store[string, time.Time]

	txMu sync.Mutex
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		params:     keyedstore.New[int, groupRow](),
		gateways:   keyedstore.New[string, models.GatewayRegistration](),
		users:      keyedstore.New[string, models.UserCredential](),
		pseudonyms: keyedstore.New[string, time.Time](),
	}
}

func (r *MemoryRepository) LoadParameters(ctx context.Context) (*big.Int, *big.Int, error) {
	row, ok := r.params.Get(1)
	if !ok {
		return nil, nil, ErrNoParameters
	}
	return new(big.Int).Set(row.modulus), new(big.Int).Set(row.generator), nil
}

func (r *MemoryRepository) SaveParameters(ctx context.Context, modulus, generator *big.Int) error {
	row := groupRow{modulus: new(big.Int).Set(modulus), generator: new(big.Int).Set(generator)}
	if !r.params.InsertIfAbsent(1, row) {
		return ErrParametersStored
	}
	return nil
}

func (r *MemoryRepository) CreateGateway(ctx context.Context, g *models.GatewayRegistration) error {
	row := *g
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now()
	}
	if !r.gateways.InsertIfAbsent(g.GatewayID, row) {
		return common.ErrDuplicateGateway
	}
	return nil
}

func (r *MemoryRepository) GetGateway(ctx context.Context, gatewayID string) (*models.GatewayRegistration, error) {
	g, ok := r.gateways.Get(gatewayID)
	if !ok {
		return nil, common.ErrUnknownGateway
	}
	return &g, nil
}

func (r *MemoryRepository) CreateUser(ctx context.Context, u *models.UserCredential) error {
	row := models.UserCredential{
		UserID:     u.UserID,
		Commitment: new(big.Int).Set(u.Commitment),
		CreatedAt:  u.CreatedAt,
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now()
	}
	if !r.users.InsertIfAbsent(u.UserID, row) {
		return common.ErrDuplicateUser
	}
	return nil
}

func (r *MemoryRepository) GetUser(ctx context.Context, userID string) (*models.UserCredential, error) {
	u, ok := r.users.Get(userID)
	if !ok {
		return nil, common.ErrUnknownUser
	}
	u.Commitment = new(big.Int).Set(u.Commitment)
	return &u, nil
}

func (r *MemoryRepository) DeleteUser(ctx context.Context, userID string, commitment *big.Int) error {
	removed := r.users.DeleteIf(userID, func(u models.UserCredential) bool {
		return commitment != nil && u.Commitment.Cmp(commitment) == 0
	})
	if !removed {
		return common.ErrUnknownUser
	}
	return nil
}

func (r *MemoryRepository) ReservePseudonym(ctx context.Context, pid string) (bool, error) {
	return r.pseudonyms.InsertIfAbsent(pid, time.Now()), nil
}

// WithinTx serializes fn against other WithinTx callers. Individual
// operations stay atomic on their own; there is no rollback.
func (r *MemoryRepository) WithinTx(ctx context.Context, fn func(ctx context.Context, r Repository) error) error {
	r.txMu.Lock()
	defer r.txMu.Unlock()
	return fn(ctx, r)
}
