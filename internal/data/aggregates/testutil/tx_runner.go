package testutil

import (
	"context"
	"errors"
	"sync"

	"github.com/yungbote/lms-backend/internal/data/aggregates"
	"github.com/yungbote/lms-backend/internal/pkg/dbctx"
	"gorm.io/gorm"
)

// InjectedTxRunner is a TxRunner with failure injection for aggregate tests.
// With DB set the body runs in a real transaction and every injected
// failure rolls it back; without DB the body gets a context with no Tx.
type InjectedTxRunner struct {
	mu sync.Mutex

	DB *gorm.DB

	FailBegin      error
	FailBeforeBody error
	FailCommit     error

	BeginCalls    int
	CommitCalls   int
	RollbackCalls int
}

var _ aggregates.TxRunner = (*InjectedTxRunner)(nil)

func (r *InjectedTxRunner) InTx(ctx context.Context, fn func(dbc dbctx.Context) error) error {
	r.mu.Lock()
	r.BeginCalls++
	failBegin := r.FailBegin
	failBeforeBody := r.FailBeforeBody
	failCommit := r.FailCommit
	db := r.DB
	r.mu.Unlock()

	if failBegin != nil {
		return failBegin
	}

	body := func(tx *gorm.DB) error {
		if failBeforeBody != nil {
			return failBeforeBody
		}
		if fn != nil {
			if err := fn(dbctx.Context{Ctx: ctx, Tx: tx}); err != nil {
				return err
			}
		}
		return failCommit
	}

	var err error
	if db != nil {
		err = db.WithContext(ctx).Transaction(body)
	} else {
		err = body(nil)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if err != nil {
		r.RollbackCalls++
		return err
	}
	r.CommitCalls++
	return nil
}

// ErrInjected is a convenience failure for tests.
var ErrInjected = errors.New("injected failure")
