package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	apperr "ems/internal/errors"
	"ems/internal/model"
	"ems/internal/repository"
)

// MockEmployeeRepository is a mock implementation of EmployeeRepository.
type MockEmployeeRepository struct {
	mock.Mock
}

func (m *MockEmployeeRepository) Create(ctx context.Context, employee *model.Employee) error {
	args := m.Called(ctx, employee)
	return args.Error(0)
}

func (m *MockEmployeeRepository) Update(ctx context.Context, employee *model.Employee) error {
	args := m.Called(ctx, employee)
	return args.Error(0)
}

func (m *MockEmployeeRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Employee, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Employee), args.Error(1)
}

func (m *MockEmployeeRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockEmployeeRepository) List(ctx context.Context, q repository.EmployeeQuery) ([]model.Employee, int64, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]model.Employee), args.Get(1).(int64), args.Error(2)
}

func sampleInput() EmployeeInput {
	return EmployeeInput{
		Name:     "  Jane Doe ",
		Mobile:   "5551234567",
		Email:    "Jane.Doe@Example.com",
		Position: "Engineer",
		Salary:   decimal.NewFromInt(55000),
	}
}

func TestEmployeeService_Create(t *testing.T) {
	mockRepo := new(MockEmployeeRepository)
	mockRepo.On("Create", mock.Anything, mock.MatchedBy(func(e *model.Employee) bool {
		return e.Name == "Jane Doe" && e.Email == "jane.doe@example.com" && e.Salary.Equal(decimal.NewFromInt(55000))
	})).Return(nil)

	svc := NewEmployeeService(mockRepo, testLogger())
	employee, err := svc.Create(context.Background(), sampleInput())

	require.NoError(t, err)
	assert.Equal(t, "jane.doe@example.com", employee.Email)
	mockRepo.AssertExpectations(t)
}

func TestEmployeeService_CreateKeepsStoreError(t *testing.T) {
	mockRepo := new(MockEmployeeRepository)
	mockRepo.On("Create", mock.Anything, mock.Anything).Return(gorm.ErrDuplicatedKey)

	svc := NewEmployeeService(mockRepo, testLogger())
	_, err := svc.Create(context.Background(), sampleInput())

	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)
	assert.Equal(t, apperr.KindValidation, apperr.Classify(err).Kind)
}

func TestEmployeeService_NotFound(t *testing.T) {
	id := uuid.New()

	tests := []struct {
		name string
		call func(EmployeeService) error
		mock func(*MockEmployeeRepository)
	}{
		{
			name: "get",
			call: func(s EmployeeService) error { _, err := s.Get(context.Background(), id); return err },
			mock: func(m *MockEmployeeRepository) {
				m.On("FindByID", mock.Anything, id).Return(nil, gorm.ErrRecordNotFound)
			},
		},
		{
			name: "update",
			call: func(s EmployeeService) error { _, err := s.Update(context.Background(), id, sampleInput()); return err },
			mock: func(m *MockEmployeeRepository) {
				m.On("FindByID", mock.Anything, id).Return(nil, gorm.ErrRecordNotFound)
			},
		},
		{
			name: "delete",
			call: func(s EmployeeService) error { return s.Delete(context.Background(), id) },
			mock: func(m *MockEmployeeRepository) { m.On("Delete", mock.Anything, id).Return(gorm.ErrRecordNotFound) },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockEmployeeRepository)
			tt.mock(mockRepo)

			err := tt.call(NewEmployeeService(mockRepo, testLogger()))

			assertAppError(t, err, apperr.KindNotFound, "Employee not found")
			mockRepo.AssertExpectations(t)
		})
	}
}

func TestEmployeeService_Update(t *testing.T) {
	id := uuid.New()
	existing := &model.Employee{ID: id, Name: "Old", Email: "old@example.com", Salary: decimal.NewFromInt(1)}

	mockRepo := new(MockEmployeeRepository)
	mockRepo.On("FindByID", mock.Anything, id).Return(existing, nil)
	mockRepo.On("Update", mock.Anything, existing).Return(nil)

	svc := NewEmployeeService(mockRepo, testLogger())
	updated, err := svc.Update(context.Background(), id, sampleInput())

	require.NoError(t, err)
	assert.Equal(t, id, updated.ID)
	assert.Equal(t, "Jane Doe", updated.Name)
	assert.Equal(t, "jane.doe@example.com", updated.Email)
	mockRepo.AssertExpectations(t)
}

func TestEmployeeService_List(t *testing.T) {
	tests := []struct {
		name           string
		query          repository.EmployeeQuery
		normalized     repository.EmployeeQuery
		rows           []model.Employee
		total          int64
		wantTotalPages int
	}{
		{
			name:           "defaults",
			query:          repository.EmployeeQuery{},
			normalized:     repository.EmployeeQuery{Page: 1, Limit: repository.DefaultPageSize},
			rows:           []model.Employee{{Name: "A"}, {Name: "B"}},
			total:          12,
			wantTotalPages: 3,
		},
		{
			name:           "page past the end",
			query:          repository.EmployeeQuery{Page: 9, Limit: 5},
			normalized:     repository.EmployeeQuery{Page: 9, Limit: 5},
			rows:           nil,
			total:          12,
			wantTotalPages: 3,
		},
		{
			name:           "empty collection",
			query:          repository.EmployeeQuery{Search: "nobody"},
			normalized:     repository.EmployeeQuery{Search: "nobody", Page: 1, Limit: repository.DefaultPageSize},
			rows:           nil,
			total:          0,
			wantTotalPages: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockEmployeeRepository)
			if tt.rows == nil {
				mockRepo.On("List", mock.Anything, tt.normalized).Return(nil, tt.total, nil)
			} else {
				mockRepo.On("List", mock.Anything, tt.normalized).Return(tt.rows, tt.total, nil)
			}

			page, err := NewEmployeeService(mockRepo, testLogger()).List(context.Background(), tt.query)

			require.NoError(t, err)
			assert.NotNil(t, page.Employees)
			assert.Len(t, page.Employees, len(tt.rows))
			assert.Equal(t, tt.total, page.Total)
			assert.Equal(t, tt.normalized.Page, page.Page)
			assert.Equal(t, tt.wantTotalPages, page.TotalPages)
			mockRepo.AssertExpectations(t)
		})
	}
}

func TestEmployeeService_ListDatabaseFailure(t *testing.T) {
	mockRepo := new(MockEmployeeRepository)
	dbErr := errors.New("connection reset")
	mockRepo.On("List", mock.Anything, mock.Anything).Return(nil, int64(0), dbErr)

	_, err := NewEmployeeService(mockRepo, testLogger()).List(context.Background(), repository.EmployeeQuery{})

	assert.ErrorIs(t, err, dbErr)
}

func TestUserService_GetUser(t *testing.T) {
	id := uuid.New()

	t.Run("found", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		mockRepo.On("FindByID", mock.Anything, id).Return(&model.User{ID: id, Username: "jane"}, nil)

		user, err := NewUserService(mockRepo).GetUser(context.Background(), id)
		require.NoError(t, err)
		assert.Equal(t, "jane", user.Username)
	})

	t.Run("missing", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		mockRepo.On("FindByID", mock.Anything, id).Return(nil, gorm.ErrRecordNotFound)

		_, err := NewUserService(mockRepo).GetUser(context.Background(), id)
		assertAppError(t, err, apperr.KindNotFound, "User not found")
	})
}
