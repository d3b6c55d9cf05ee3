package aggregates

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
	"github.com/yungbote/lms-backend/internal/data/ordering"
	domainagg "github.com/yungbote/lms-backend/internal/domain/aggregates"
	"gorm.io/gorm"
)

func TestMapError(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want domainagg.ErrorCode
	}{
		{"duplicate key", gorm.ErrDuplicatedKey, domainagg.CodeConflict},
		{"not found", gorm.ErrRecordNotFound, domainagg.CodeNotFound},
		{"wrapped not found", fmt.Errorf("load: %w", gorm.ErrRecordNotFound), domainagg.CodeNotFound},
		{"out of range", fmt.Errorf("plan: %w", ordering.ErrOutOfRange), domainagg.CodeOutOfRange},
		{"planner invariant", ordering.ErrInvariant, domainagg.CodeInvariantViolation},
		{"invariant", InvariantError("gap"), domainagg.CodeInvariantViolation},
		{"retryable", RetryableError("moved"), domainagg.CodeRetryable},
		{"deadline", context.DeadlineExceeded, domainagg.CodeUnavailable},
		{"canceled", context.Canceled, domainagg.CodeUnavailable},
		{"pg unique", &pgconn.PgError{Code: "23505"}, domainagg.CodeConflict},
		{"pg fk", &pgconn.PgError{Code: "23503"}, domainagg.CodePreconditionFailed},
		{"pg serialization", &pgconn.PgError{Code: "40001"}, domainagg.CodeRetryable},
		{"pg deadlock", &pgconn.PgError{Code: "40P01"}, domainagg.CodeRetryable},
		{"pg lock", &pgconn.PgError{Code: "55P03"}, domainagg.CodeRetryable},
		{"pg connection", &pgconn.PgError{Code: "08006"}, domainagg.CodeUnavailable},
		{"sqlite busy", sqlite3.Error{Code: sqlite3.ErrBusy}, domainagg.CodeRetryable},
		{"sqlite locked", sqlite3.Error{Code: sqlite3.ErrLocked}, domainagg.CodeRetryable},
		{"sqlite unique", sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintUnique}, domainagg.CodeConflict},
		{"message deadlock", errors.New("deadlock detected"), domainagg.CodeRetryable},
		{"message refused", errors.New("dial tcp: connection refused"), domainagg.CodeUnavailable},
		{"other", errors.New("boom"), domainagg.CodeInternal},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := MapError("op", tc.err)
			if !domainagg.IsCode(got, tc.want) {
				t.Fatalf("want %q, got %q (%v)", tc.want, domainagg.CodeOf(got), got)
			}
			if !errors.Is(got, tc.err) {
				t.Fatalf("cause lost: %v", got)
			}
		})
	}
}

func TestMapError_Nil(t *testing.T) {
	if MapError("op", nil) != nil {
		t.Fatalf("nil must map to nil")
	}
}

func TestMapError_PassthroughAggregateError(t *testing.T) {
	in := domainagg.NewError(domainagg.CodeRetryable, "op", "retry", errors.New("boom"))
	out := MapError("other", in)
	if out != in {
		t.Fatalf("expected passthrough aggregate error")
	}
}
