package employee

import (
	"context"
	"strings"
)

type Service struct {
	store StoreAPI
}

func NewService(store StoreAPI) *Service {
	return &Service{store: store}
}

func (s *Service) Profile(ctx context.Context, employeeID string) (Profile, error) {
	if strings.TrimSpace(employeeID) == "" {
		return Profile{}, ErrEmployeeNotFound
	}
	return s.store.Profile(ctx, employeeID)
}
