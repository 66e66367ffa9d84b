package policy

import "context"

type StoreAPI interface {
	// Resolve returns the department policy when one exists, otherwise the
	// company-wide policy, otherwise ErrPolicyNotFound.
	Resolve(ctx context.Context, t Type, companyID string, departmentID *string) (Policy, error)
	Get(ctx context.Context, t Type, id string) (Policy, error)
	ListByCompany(ctx context.Context, t Type, companyID string) ([]Policy, error)
	LookupScope(ctx context.Context, companyID string, departmentID *string) (Scope, error)
	ScopeTaken(ctx context.Context, t Type, companyID string, departmentID *string) (bool, error)
	Insert(ctx context.Context, p Policy) error
	Update(ctx context.Context, p Policy) error
	Delete(ctx context.Context, t Type, id string) error
}
