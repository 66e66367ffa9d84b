package requests

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"hrflow/internal/domain/eligibility"
	"hrflow/internal/domain/employee"
	"hrflow/internal/domain/policy"
)

type ProfileReader interface {
	Profile(ctx context.Context, employeeID string) (employee.Profile, error)
}

type PolicyResolver interface {
	Resolve(ctx context.Context, t policy.Type, companyID string, departmentID *string) (policy.Policy, error)
}

const defaultTxTimeout = 5 * time.Second

type Service struct {
	Store     StoreAPI
	Profiles  ProfileReader
	Policies  PolicyResolver
	TxTimeout time.Duration
	Now       func() time.Time
}

func NewService(store StoreAPI, profiles ProfileReader, policies PolicyResolver, txTimeout time.Duration) *Service {
	if txTimeout <= 0 {
		txTimeout = defaultTxTimeout
	}
	return &Service{Store: store, Profiles: profiles, Policies: policies, TxTimeout: txTimeout, Now: time.Now}
}

// Create validates in, checks eligibility and persists the request with its
// detail row in a single transaction. The employee row is locked for the
// duration so concurrent submissions for the same employee are serialized.
func (s *Service) Create(ctx context.Context, in CreateInput) (Request, error) {
	if err := Validate(in); err != nil {
		return Request{}, err
	}
	profile, pol, err := s.load(ctx, in)
	if err != nil {
		return Request{}, err
	}

	txCtx, cancel := context.WithTimeout(ctx, s.TxTimeout)
	defer cancel()

	var created Request
	err = s.Store.InTx(txCtx, func(tx TxStore) error {
		if err := tx.LockEmployee(txCtx, profile.ID); err != nil {
			return err
		}
		history, err := tx.History(txCtx, profile.ID, Type(in.Type))
		if err != nil {
			return fmt.Errorf("load history: %w", err)
		}
		decision := eligibility.Evaluate(s.input(in, pol, profile, history))
		if !decision.Eligible {
			return &RejectedError{Reasons: decision.Reasons}
		}

		created = s.build(in, pol, profile)
		if err := tx.InsertRequest(txCtx, created); err != nil {
			return err
		}
		if err := tx.InsertDetail(txCtx, created); err != nil {
			return fmt.Errorf("insert %s detail: %w", in.Type, err)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrActiveRequestExists) {
			return Request{}, &RejectedError{Reasons: []string{eligibility.ActiveRequestReason(in.Type)}}
		}
		return Request{}, err
	}
	return created, nil
}

// CheckEligibility evaluates in without writing anything.
func (s *Service) CheckEligibility(ctx context.Context, in CreateInput) (Evaluation, error) {
	if err := Validate(in); err != nil {
		return Evaluation{}, err
	}

	var (
		profile employee.Profile
		pol     *policy.Policy
		history eligibility.History
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		profile, pol, err = s.load(gctx, in)
		return err
	})
	g.Go(func() error {
		var err error
		history, err = s.Store.History(gctx, in.EmployeeID, Type(in.Type))
		return err
	})
	if err := g.Wait(); err != nil {
		return Evaluation{}, err
	}

	return Evaluation{
		Decision: eligibility.Evaluate(s.input(in, pol, profile, history)),
		Policy:   pol,
		Profile:  profile,
	}, nil
}

// LeaveBalance reports accrued and used leave for the current year.
func (s *Service) LeaveBalance(ctx context.Context, employeeID string) (eligibility.LeaveBalance, policy.Policy, error) {
	profile, err := s.Profiles.Profile(ctx, employeeID)
	if err != nil {
		return eligibility.LeaveBalance{}, policy.Policy{}, err
	}
	pol, err := s.Policies.Resolve(ctx, policy.TypeLeave, profile.CompanyID, profile.DepartmentID)
	if err != nil {
		return eligibility.LeaveBalance{}, policy.Policy{}, err
	}
	history, err := s.Store.History(ctx, employeeID, TypeLeave)
	if err != nil {
		return eligibility.LeaveBalance{}, policy.Policy{}, err
	}
	return eligibility.Balance(*pol.Leave, profile.SeniorityMonths, history.Leaves, s.Now().UTC().Year()), pol, nil
}

// Resolve moves a pending request to traite with the given result.
func (s *Service) Resolve(ctx context.Context, id string, result Result) (Request, error) {
	if result != ResultApproved && result != ResultRefused {
		verr := &ValidationError{}
		verr.add("result", "must be valide or refused")
		return Request{}, verr
	}
	if err := s.Store.Resolve(ctx, id, result, s.Now().UTC()); err != nil {
		return Request{}, err
	}
	return s.Store.Get(ctx, id)
}

func (s *Service) Get(ctx context.Context, id string) (Request, error) {
	return s.Store.Get(ctx, id)
}

func (s *Service) ListByEmployee(ctx context.Context, employeeID string, t Type) ([]Request, error) {
	return s.Store.ListByEmployee(ctx, employeeID, t)
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]Request, error) {
	return s.Store.List(ctx, filter)
}

func (s *Service) ListExceptional(ctx context.Context, filter ExceptionalFilter) ([]Request, error) {
	return s.Store.ListExceptional(ctx, filter)
}

func (s *Service) Stats(ctx context.Context, t Type) (Stats, error) {
	return s.Store.Stats(ctx, t)
}

func (s *Service) load(ctx context.Context, in CreateInput) (employee.Profile, *policy.Policy, error) {
	profile, err := s.Profiles.Profile(ctx, in.EmployeeID)
	if err != nil {
		return employee.Profile{}, nil, err
	}
	if in.CompanyID != "" && in.CompanyID != profile.CompanyID {
		verr := &ValidationError{}
		verr.add("company_id", "does not match the employee's company")
		return employee.Profile{}, nil, verr
	}
	pol, err := s.Policies.Resolve(ctx, in.Type, profile.CompanyID, profile.DepartmentID)
	if err != nil {
		if errors.Is(err, policy.ErrPolicyNotFound) && in.IsExceptional {
			return profile, nil, nil
		}
		return employee.Profile{}, nil, err
	}
	return profile, &pol, nil
}

func (s *Service) input(in CreateInput, pol *policy.Policy, profile employee.Profile, history eligibility.History) eligibility.Input {
	return eligibility.Input{
		Type:    in.Type,
		Policy:  pol,
		Profile: profile,
		Payload: eligibility.Payload{
			Amount:    in.Amount,
			StartDate: in.StartDate,
			EndDate:   in.EndDate,
			LeaveType: in.LeaveType,
		},
		History:     history,
		Exceptional: in.IsExceptional,
		Now:         s.Now().UTC(),
	}
}

func (s *Service) build(in CreateInput, pol *policy.Policy, profile employee.Profile) Request {
	r := Request{
		ID:             uuid.NewString(),
		EmployeeID:     profile.ID,
		CompanyID:      profile.CompanyID,
		Type:           Type(in.Type),
		Service:        optional(in.Service),
		Status:         StatusPending,
		Result:         ResultNone,
		SubmissionDate: s.Now().UTC(),
		IsExceptional:  in.IsExceptional,
	}
	if in.IsExceptional {
		r.ExceptionReason = optional(in.ExceptionReason)
	}
	if pol != nil {
		id := pol.ID
		r.PolicyID = &id
	}
	switch in.Type {
	case policy.TypeAdvance:
		r.Advance = &AdvanceDetail{Amount: in.Amount, Reason: in.Reason}
	case policy.TypeCredit:
		r.Credit = &CreditDetail{Amount: in.Amount, Months: in.Months, Description: in.Description}
	case policy.TypeLeave:
		r.Leave = &LeaveDetail{
			StartDate: eligibility.DateOf(in.StartDate),
			EndDate:   eligibility.DateOf(in.EndDate),
			LeaveType: in.LeaveType,
			Reason:    in.Reason,
		}
	}
	return r
}

func optional(value string) *string {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	return &value
}
