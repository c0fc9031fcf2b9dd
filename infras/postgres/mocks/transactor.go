package mocks

import (
	"context"
	"sync"

	"github.com/jmoiron/sqlx"

	"wellness/infras/postgres"
)

type transactorImpl struct {
	mu sync.Mutex
}

// WithTransaction implements postgres.Transactor. It serializes callers and hands fn a nil
// transaction, so repositories under test must be mocks or in-memory stores.
func (t *transactorImpl) WithTransaction(_ context.Context, fn func(tx *sqlx.Tx) error) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	return fn(nil)
}

func NewTransactor() postgres.Transactor {
	return &transactorImpl{}
}
