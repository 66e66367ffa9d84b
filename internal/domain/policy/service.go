package policy

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

type Service struct {
	store StoreAPI
	now   func() time.Time
}

func NewService(store StoreAPI) *Service {
	return &Service{store: store, now: time.Now}
}

func (s *Service) Resolve(ctx context.Context, t Type, companyID string, departmentID *string) (Policy, error) {
	return s.store.Resolve(ctx, t, companyID, normalizeDepartment(departmentID))
}

func (s *Service) Get(ctx context.Context, t Type, id string) (Policy, error) {
	return s.store.Get(ctx, t, id)
}

func (s *Service) ListByCompany(ctx context.Context, t Type, companyID string) ([]Policy, error) {
	return s.store.ListByCompany(ctx, t, companyID)
}

func (s *Service) Create(ctx context.Context, p Policy) (Policy, error) {
	p.DepartmentID = normalizeDepartment(p.DepartmentID)
	if err := Validate(p); err != nil {
		return Policy{}, err
	}
	if err := s.checkScope(ctx, p); err != nil {
		return Policy{}, err
	}
	taken, err := s.store.ScopeTaken(ctx, p.Type, p.CompanyID, p.DepartmentID)
	if err != nil {
		return Policy{}, err
	}
	if taken {
		return Policy{}, ErrDuplicatePolicy
	}

	now := s.now().UTC()
	p.ID = uuid.NewString()
	p.CreatedAt = now
	p.UpdatedAt = now
	if err := s.store.Insert(ctx, p); err != nil {
		return Policy{}, err
	}
	return p, nil
}

// checkScope rejects scopes that reference unknown companies or departments,
// or a department owned by another company.
func (s *Service) checkScope(ctx context.Context, p Policy) error {
	scope, err := s.store.LookupScope(ctx, p.CompanyID, p.DepartmentID)
	if err != nil {
		return err
	}
	verr := &ValidationError{}
	if !scope.CompanyExists {
		verr.add("company_id", "does not exist")
	}
	if p.DepartmentScoped() {
		switch scope.DepartmentCompanyID {
		case "":
			verr.add("department_id", "does not exist")
		case p.CompanyID:
		default:
			verr.add("department_id", "belongs to another company")
		}
	}
	return verr.orNil()
}

// Update applies patch to the stored policy. Scope (company, department) is immutable.
func (s *Service) Update(ctx context.Context, t Type, id string, patch Patch) (Policy, Policy, error) {
	before, err := s.store.Get(ctx, t, id)
	if err != nil {
		return Policy{}, Policy{}, err
	}
	after := before
	if patch.IsActive != nil {
		after.IsActive = *patch.IsActive
	}
	if patch.MinMonthsSeniority != nil {
		after.MinMonthsSeniority = *patch.MinMonthsSeniority
	}
	switch t {
	case TypeAdvance:
		if patch.Advance != nil {
			after.Advance = patch.Advance
		}
	case TypeCredit:
		if patch.Credit != nil {
			after.Credit = patch.Credit
		}
	case TypeLeave:
		if patch.Leave != nil {
			after.Leave = patch.Leave
		}
	}
	if err := Validate(after); err != nil {
		return Policy{}, Policy{}, err
	}
	after.UpdatedAt = s.now().UTC()
	if err := s.store.Update(ctx, after); err != nil {
		return Policy{}, Policy{}, err
	}
	return before, after, nil
}

func (s *Service) Delete(ctx context.Context, t Type, id string) (Policy, error) {
	existing, err := s.store.Get(ctx, t, id)
	if err != nil {
		return Policy{}, err
	}
	if err := s.store.Delete(ctx, t, id); err != nil {
		return Policy{}, err
	}
	return existing, nil
}

// EnsureCreated creates p unless its scope is already covered. Used by fixture loading.
func (s *Service) EnsureCreated(ctx context.Context, p Policy) (bool, error) {
	if _, err := s.Create(ctx, p); err != nil {
		if errors.Is(err, ErrDuplicatePolicy) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func normalizeDepartment(departmentID *string) *string {
	if departmentID == nil || *departmentID == "" {
		return nil
	}
	return departmentID
}
