package requests

import (
	"context"
	"time"

	"hrflow/internal/domain/eligibility"
)

type StoreAPI interface {
	// InTx runs fn in one transaction, committing only when fn returns nil.
	InTx(ctx context.Context, fn func(TxStore) error) error
	History(ctx context.Context, employeeID string, t Type) (eligibility.History, error)
	Get(ctx context.Context, id string) (Request, error)
	ListByEmployee(ctx context.Context, employeeID string, t Type) ([]Request, error)
	List(ctx context.Context, filter ListFilter) ([]Request, error)
	ListExceptional(ctx context.Context, filter ExceptionalFilter) ([]Request, error)
	Resolve(ctx context.Context, id string, result Result, at time.Time) error
	Stats(ctx context.Context, t Type) (Stats, error)
}

type TxStore interface {
	// LockEmployee serializes creations for one employee until the transaction ends.
	LockEmployee(ctx context.Context, employeeID string) error
	History(ctx context.Context, employeeID string, t Type) (eligibility.History, error)
	InsertRequest(ctx context.Context, r Request) error
	InsertDetail(ctx context.Context, r Request) error
}
