package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	apperr "ems/internal/errors"
	"ems/internal/model"
	"ems/internal/repository"
)

const employeeResource = "Employee"

// EmployeeInput is a validated create or update payload.
type EmployeeInput struct {
	Name     string
	Mobile   string
	Email    string
	Position string
	Salary   decimal.Decimal
}

// EmployeePage is one page of the employee list.
type EmployeePage struct {
	Employees  []model.Employee
	Total      int64
	Page       int
	Limit      int
	TotalPages int
}

// EmployeeService handles employee operations.
type EmployeeService interface {
	Create(ctx context.Context, in EmployeeInput) (*model.Employee, error)
	Get(ctx context.Context, id uuid.UUID) (*model.Employee, error)
	List(ctx context.Context, q repository.EmployeeQuery) (*EmployeePage, error)
	Update(ctx context.Context, id uuid.UUID, in EmployeeInput) (*model.Employee, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type employeeService struct {
	repo repository.EmployeeRepository
	log  logrus.FieldLogger
}

// NewEmployeeService creates a new employee service.
func NewEmployeeService(repo repository.EmployeeRepository, log logrus.FieldLogger) EmployeeService {
	return &employeeService{repo: repo, log: log}
}

func (in EmployeeInput) apply(e *model.Employee) {
	e.Name = strings.TrimSpace(in.Name)
	e.Mobile = strings.TrimSpace(in.Mobile)
	e.Email = strings.ToLower(strings.TrimSpace(in.Email))
	e.Position = strings.TrimSpace(in.Position)
	e.Salary = in.Salary
}

// Create persists a new employee.
func (s *employeeService) Create(ctx context.Context, in EmployeeInput) (*model.Employee, error) {
	employee := &model.Employee{}
	in.apply(employee)

	if err := s.repo.Create(ctx, employee); err != nil {
		return nil, fmt.Errorf("create employee: %w", err)
	}

	s.log.WithField("employee_id", employee.ID).Info("employee created")
	return employee, nil
}

// Get retrieves an employee by ID.
func (s *employeeService) Get(ctx context.Context, id uuid.UUID) (*model.Employee, error) {
	employee, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, employeeResource, "get employee")
	}
	return employee, nil
}

// List returns the requested page and the pagination totals.
func (s *employeeService) List(ctx context.Context, q repository.EmployeeQuery) (*EmployeePage, error) {
	q = q.Normalize()

	employees, total, err := s.repo.List(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list employees: %w", err)
	}
	if employees == nil {
		employees = []model.Employee{}
	}

	return &EmployeePage{
		Employees:  employees,
		Total:      total,
		Page:       q.Page,
		Limit:      q.Limit,
		TotalPages: q.TotalPages(total),
	}, nil
}

// Update replaces the editable fields of an existing employee.
func (s *employeeService) Update(ctx context.Context, id uuid.UUID, in EmployeeInput) (*model.Employee, error) {
	employee, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, employeeResource, "find employee")
	}

	in.apply(employee)
	if err := s.repo.Update(ctx, employee); err != nil {
		return nil, fmt.Errorf("update employee: %w", err)
	}

	s.log.WithField("employee_id", employee.ID).Info("employee updated")
	return employee, nil
}

// Delete removes an employee. Deleting an id that no longer exists is NotFound.
func (s *employeeService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return lookupError(err, employeeResource, "delete employee")
	}

	s.log.WithField("employee_id", id).Info("employee deleted")
	return nil
}

// lookupError turns a missing record into NotFound for resource and wraps
// anything else with op.
func lookupError(err error, resource, op string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound(resource)
	}
	return fmt.Errorf("%s: %w", op, err)
}
