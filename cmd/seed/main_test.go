package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperr "ems/internal/errors"
	"ems/internal/handler"
	"ems/internal/model"
	"ems/internal/router"
	"ems/internal/service"
)

type stubEmployeeService struct {
	service.EmployeeService
	errs map[string]error
	made []string
}

func (s *stubEmployeeService) Create(ctx context.Context, in service.EmployeeInput) (*model.Employee, error) {
	if err := s.errs[in.Email]; err != nil {
		return nil, err
	}
	s.made = append(s.made, in.Email)
	return &model.Employee{ID: uuid.New(), Email: in.Email}, nil
}

func TestLoadEmployees(t *testing.T) {
	builtin, err := loadEmployees("")
	require.NoError(t, err)
	assert.Equal(t, builtinEmployees, builtin)

	path := filepath.Join(t.TempDir(), "employees.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"name":"Jane","mobile":"5551234567","email":"jane@example.com","position":"Engineer","salary":"55000"}]`), 0o600))

	loaded, err := loadEmployees(path)
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, "jane@example.com", loaded[0].Email)

	_, err = loadEmployees(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func seedRecord(email string) SeedEmployee {
	return SeedEmployee{Name: "Jane Doe", Mobile: "5551234567", Email: email, Position: "Engineer", Salary: "55000"}
}

func TestSeedEmployees(t *testing.T) {
	log, hook := test.NewNullLogger()
	svc := &stubEmployeeService{errs: map[string]error{
		"dup@example.com": &mysql.MySQLError{Number: 1062, Message: "Duplicate entry 'dup@example.com' for key 'employees.idx_employees_email'"},
	}}

	shortMobile := seedRecord("short@example.com")
	shortMobile.Mobile = "123"
	negative := seedRecord("negative@example.com")
	negative.Salary = "-5"
	badEmail := seedRecord("bad")
	noName := seedRecord("noname@example.com")
	noName.Name = "  "
	notNumber := seedRecord("broke@example.com")
	notNumber.Salary = "lots"

	result, err := seedEmployees(context.Background(), log, router.NewValidator(), svc, []SeedEmployee{
		seedRecord(" Jane@Example.com "),
		seedRecord("dup@example.com"),
		shortMobile,
		negative,
		badEmail,
		noName,
		notNumber,
	})

	require.NoError(t, err)
	assert.Equal(t, seedResult{created: 1, skipped: 6}, result)
	assert.Equal(t, []string{"Jane@Example.com"}, svc.made)

	var mobileWarning bool
	for _, entry := range hook.AllEntries() {
		if entry.Data["email"] == "short@example.com" {
			mobileWarning = true
			assert.Equal(t, "Validation failed", entry.Message)
			details, ok := entry.Data["details"].([]apperr.FieldError)
			require.True(t, ok)
			require.Len(t, details, 1)
			assert.Equal(t, "mobile", details[0].Field)
		}
	}
	assert.True(t, mobileWarning)
}

func TestSeedEmployees_StopsOnStoreFailure(t *testing.T) {
	log, _ := test.NewNullLogger()
	down := &mysql.MySQLError{Number: 2006, Message: "MySQL server has gone away"}
	svc := &stubEmployeeService{errs: map[string]error{"jane@example.com": down}}

	_, err := seedEmployees(context.Background(), log, router.NewValidator(), svc, []SeedEmployee{seedRecord("jane@example.com")})

	assert.ErrorIs(t, err, down)
}

func TestLoadEmployees_NumericSalary(t *testing.T) {
	path := filepath.Join(t.TempDir(), "employees.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"name":"Jane","mobile":"5551234567","email":"jane@example.com","position":"Engineer","salary":55000.5}]`), 0o600))

	loaded, err := loadEmployees(path)
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, handler.Numeric("55000.5"), loaded[0].Salary)
}
