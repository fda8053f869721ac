package helperstore

import (
	"context"

	"github.com/dmitrijs2005/gwauth/internal/keyedstore"
)

type Memory struct {
	data *keyedstore.Store[string, []byte]
}

func NewMemory() *Memory {
	return &Memory{data: keyedstore.New[string, []byte]()}
}

func (m *Memory) Save(ctx context.Context, userID string, helper []byte) error {
	m.data.Put(userID, append([]byte(nil), helper...))
	return nil
}

func (m *Memory) Load(ctx context.Context, userID string) ([]byte, error) {
	v, ok := m.data.Get(userID)
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), v...), nil
}

func (m *Memory) Delete(ctx context.Context, userID string) error {
	m.data.Delete(userID)
	return nil
}

func (m *Memory) Close() error { return nil }
