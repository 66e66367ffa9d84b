package employee

import "context"

type StoreAPI interface {
	Profile(ctx context.Context, employeeID string) (Profile, error)
}
