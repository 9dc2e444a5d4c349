package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm/logger"

	"ems/internal/app"
	"ems/internal/config"
	"ems/internal/db"
	apperr "ems/internal/errors"
	"ems/internal/handler"
	"ems/internal/repository"
	"ems/internal/router"
	"ems/internal/service"
	"ems/pkg/client"
)

// SeedEmployee is one record of the seed file. Salary may be a JSON number or
// a string.
type SeedEmployee struct {
	Name     string          `json:"name"`
	Mobile   string          `json:"mobile"`
	Email    string          `json:"email"`
	Position string          `json:"position"`
	Salary   handler.Numeric `json:"salary"`
}

func (e SeedEmployee) request() handler.EmployeeRequest {
	return handler.EmployeeRequest{
		Name:     e.Name,
		Mobile:   e.Mobile,
		Email:    e.Email,
		Position: e.Position,
		Salary:   e.Salary,
	}
}

var builtinEmployees = []SeedEmployee{
	{Name: "Alice Johnson", Mobile: "5551000001", Email: "alice.johnson@example.com", Position: "Engineering Manager", Salary: "98000"},
	{Name: "Bob Smith", Mobile: "5551000002", Email: "bob.smith@example.com", Position: "Backend Engineer", Salary: "82000"},
	{Name: "Carol White", Mobile: "5551000003", Email: "carol.white@example.com", Position: "Frontend Engineer", Salary: "79000"},
	{Name: "David Brown", Mobile: "5551000004", Email: "david.brown@example.com", Position: "QA Engineer", Salary: "61000"},
	{Name: "Eve Davis", Mobile: "5551000005", Email: "eve.davis@example.com", Position: "Product Manager", Salary: "91000"},
	{Name: "Frank Miller", Mobile: "5551000006", Email: "frank.miller@example.com", Position: "Designer", Salary: "67000"},
	{Name: "Grace Lee", Mobile: "5551000007", Email: "grace.lee@example.com", Position: "Data Analyst", Salary: "72000"},
}

type seedResult struct {
	created int
	skipped int
}

func main() {
	file := flag.String("file", "", "JSON file with an array of employees (built-in set when empty)")
	apiURL := flag.String("api", "", "seed through a running API at this base URL instead of the database")
	email := flag.String("email", "", "login email for -api mode")
	password := flag.String("password", "", "login password for -api mode")
	flag.Parse()

	cfg := config.Load()
	log := app.NewLogger(cfg.LogLevel)
	ctx := context.Background()

	employees, err := loadEmployees(*file)
	if err != nil {
		log.Fatalf("load employees: %v", err)
	}
	log.WithField("count", len(employees)).Info("seed data loaded")

	var result seedResult
	if *apiURL != "" {
		result, err = seedThroughAPI(ctx, log, client.New(*apiURL), *email, *password, employees)
	} else {
		result, err = seedThroughDatabase(ctx, log, cfg, employees)
	}
	if err != nil {
		log.Fatalf("seed: %v", err)
	}

	log.WithFields(logrus.Fields{
		"created": result.created,
		"skipped": result.skipped,
	}).Info("seed completed")
}

// loadEmployees reads the seed file, or returns the built-in set when path is empty.
func loadEmployees(path string) ([]SeedEmployee, error) {
	if path == "" {
		return builtinEmployees, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	var employees []SeedEmployee
	if err := json.Unmarshal(raw, &employees); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return employees, nil
}

func seedThroughDatabase(ctx context.Context, log *logrus.Logger, cfg *config.Config, employees []SeedEmployee) (seedResult, error) {
	gormDB, err := db.Open(cfg.DBDriver, cfg.DatabaseDSN, db.NewLogger(log, logger.Warn))
	if err != nil {
		return seedResult{}, err
	}
	defer func() {
		if err := db.Close(gormDB); err != nil {
			log.WithError(err).Warn("close database")
		}
	}()

	if err := app.Migrate(gormDB, false, log); err != nil {
		return seedResult{}, err
	}

	svc := service.NewEmployeeService(repository.NewEmployeeRepository(gormDB), log)
	return seedEmployees(ctx, log, router.NewValidator(), svc, employees)
}

// seedEmployees checks every record against the API's employee rules and
// creates the valid ones. Invalid records and ones the store rejects as
// invalid (typically an email that already exists) are skipped.
func seedEmployees(ctx context.Context, log logrus.FieldLogger, v echo.Validator, svc service.EmployeeService, employees []SeedEmployee) (seedResult, error) {
	var result seedResult
	for _, item := range employees {
		in, err := item.request().Prepare(v)
		if err == nil {
			_, err = svc.Create(ctx, in)
		}
		if err != nil {
			classified := apperr.Classify(err)
			if classified.Kind != apperr.KindValidation {
				return result, fmt.Errorf("create employee %s: %w", item.Email, err)
			}
			entry := log.WithField("email", item.Email)
			if len(classified.Details) > 0 {
				entry = entry.WithField("details", classified.Details)
			}
			entry.Warn(classified.Message)
			result.skipped++
			continue
		}
		result.created++
	}
	return result, nil
}

func seedThroughAPI(ctx context.Context, log logrus.FieldLogger, c *client.Client, email, password string, employees []SeedEmployee) (seedResult, error) {
	if _, err := c.Login(ctx, email, password); err != nil {
		display := client.Normalize(err)
		return seedResult{}, fmt.Errorf("login: %s (%s)", display.Message, display.Code)
	}

	var result seedResult
	for _, item := range employees {
		salary, err := decimal.NewFromString(string(item.Salary))
		if err != nil {
			log.WithField("email", item.Email).Warn("skipping employee with invalid salary")
			result.skipped++
			continue
		}

		_, err = c.CreateEmployee(ctx, client.EmployeeInput{
			Name:     item.Name,
			Mobile:   item.Mobile,
			Email:    item.Email,
			Position: item.Position,
			Salary:   salary,
		})
		if err != nil {
			display := client.Normalize(err)
			if display.Code == client.CodeNetwork {
				return result, fmt.Errorf("create employee %s: %s", item.Email, display.Message)
			}
			entry := log.WithFields(logrus.Fields{"email": item.Email, "code": display.Code})
			if details := client.FormatDetails(display.Details); details != "" {
				entry = entry.WithField("details", details)
			}
			entry.Warn(display.Message)
			result.skipped++
			continue
		}
		result.created++
	}
	return result, nil
}
