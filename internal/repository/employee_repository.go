package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"ems/internal/model"
)

// EmployeeRepository defines employee persistence operations.
type EmployeeRepository interface {
	Create(ctx context.Context, employee *model.Employee) error
	Update(ctx context.Context, employee *model.Employee) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Employee, error)
	// Delete removes the employee, returning gorm.ErrRecordNotFound when no row matched.
	Delete(ctx context.Context, id uuid.UUID) error
	// List returns one page of matching employees and the total match count.
	List(ctx context.Context, q EmployeeQuery) ([]model.Employee, int64, error)
}

type employeeRepository struct {
	db *gorm.DB
}

// NewEmployeeRepository creates a new employee repository.
func NewEmployeeRepository(db *gorm.DB) EmployeeRepository {
	return &employeeRepository{db: db}
}

// Create creates a new employee record.
func (r *employeeRepository) Create(ctx context.Context, employee *model.Employee) error {
	return r.db.WithContext(ctx).Create(employee).Error
}

// Update saves all fields of an existing employee.
func (r *employeeRepository) Update(ctx context.Context, employee *model.Employee) error {
	return r.db.WithContext(ctx).Save(employee).Error
}

// FindByID finds an employee by ID.
func (r *employeeRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Employee, error) {
	var employee model.Employee
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&employee).Error; err != nil {
		return nil, err
	}
	return &employee, nil
}

// Delete removes an employee by ID.
func (r *employeeRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Employee{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// List runs the count and page queries for q.
func (r *employeeRepository) List(ctx context.Context, q EmployeeQuery) ([]model.Employee, int64, error) {
	q = q.Normalize()

	var total int64
	if err := r.db.WithContext(ctx).Model(&model.Employee{}).
		Scopes(searchScope(q.Search)).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	employees := make([]model.Employee, 0, q.Limit)
	if q.PastEnd(total) {
		return employees, total, nil
	}
	if err := listQuery(r.db.WithContext(ctx), q).Find(&employees).Error; err != nil {
		return nil, 0, err
	}
	return employees, total, nil
}

func listQuery(db *gorm.DB, q EmployeeQuery) *gorm.DB {
	return db.Model(&model.Employee{}).Scopes(searchScope(q.Search), sortScope(q.Sort), pageScope(q))
}
