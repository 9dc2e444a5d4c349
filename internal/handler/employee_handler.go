package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	apperr "ems/internal/errors"
	"ems/internal/repository"
	"ems/internal/service"
)

// Success messages for the employee endpoints.
const (
	MsgEmployeeCreated = "Employee created successfully"
	MsgEmployeeUpdated = "Employee updated successfully"
	MsgEmployeeDeleted = "Employee deleted successfully"
)

// EmployeeHandler handles employee endpoints.
type EmployeeHandler struct {
	employeeService service.EmployeeService
}

// NewEmployeeHandler creates a new employee handler.
func NewEmployeeHandler(employeeService service.EmployeeService) *EmployeeHandler {
	return &EmployeeHandler{employeeService: employeeService}
}

// EmployeeRequest is the body of create and update requests.
type EmployeeRequest struct {
	Name     string  `json:"name" validate:"required,max=255" example:"Jane Doe"`
	Mobile   string  `json:"mobile" validate:"required,mobile" example:"5551234567"`
	Email    string  `json:"email" validate:"required,email,max=255" example:"jane@example.com"`
	Position string  `json:"position" validate:"required,max=255" example:"Engineer"`
	Salary   Numeric `json:"salary" validate:"required,numeric,nonnegative,salary" swaggertype:"number" example:"55000"`
}

func (r *EmployeeRequest) normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Mobile = strings.TrimSpace(r.Mobile)
	r.Email = strings.TrimSpace(r.Email)
	r.Position = strings.TrimSpace(r.Position)
	r.Salary = Numeric(strings.TrimSpace(string(r.Salary)))
}

func (r *EmployeeRequest) input() (service.EmployeeInput, error) {
	salary, err := decimal.NewFromString(string(r.Salary))
	if err != nil {
		return service.EmployeeInput{}, fmt.Errorf("parse salary: %w", err)
	}
	return service.EmployeeInput{
		Name:     r.Name,
		Mobile:   r.Mobile,
		Email:    r.Email,
		Position: r.Position,
		Salary:   salary,
	}, nil
}

// Prepare trims r, checks it with v and converts it into a service input.
// Callers outside HTTP use it so their records pass the same rules.
func (r EmployeeRequest) Prepare(v echo.Validator) (service.EmployeeInput, error) {
	r.normalize()
	if err := v.Validate(&r); err != nil {
		return service.EmployeeInput{}, err
	}
	return r.input()
}

// bindEmployee binds, trims and validates the request body.
func bindEmployee(c echo.Context) (service.EmployeeInput, error) {
	var req EmployeeRequest
	if err := c.Bind(&req); err != nil {
		return service.EmployeeInput{}, invalidBody(err)
	}
	if c.Echo().Validator == nil {
		return service.EmployeeInput{}, echo.ErrValidatorNotRegistered
	}
	return req.Prepare(c.Echo().Validator)
}

func parseID(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %v", apperr.ErrMalformedID, err)
	}
	return id, nil
}

// List godoc
// @Summary List employees
// @Tags employees
// @Produce json
// @Security BearerAuth
// @Param search query string false "Case-insensitive match on name, email or position"
// @Param sort query string false "Sort field (name, email, mobile, position, salary, createdAt, updatedAt)"
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Page size" default(5)
// @Success 200 {object} EmployeeListResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /employees [get]
func (h *EmployeeHandler) List(c echo.Context) error {
	q := repository.EmployeeQuery{
		Search: c.QueryParam("search"),
		Sort:   c.QueryParam("sort"),
		Page:   queryInt(c, "page"),
		Limit:  queryInt(c, "limit"),
	}

	page, err := h.employeeService.List(c.Request().Context(), q)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, EmployeeListResponse{
		Success:    true,
		Data:       page.Employees,
		Total:      page.Total,
		Page:       page.Page,
		TotalPages: page.TotalPages,
	})
}

// Create godoc
// @Summary Create an employee
// @Tags employees
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body EmployeeRequest true "Employee"
// @Success 201 {object} EmployeeResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /employees [post]
func (h *EmployeeHandler) Create(c echo.Context) error {
	in, err := bindEmployee(c)
	if err != nil {
		return err
	}

	employee, err := h.employeeService.Create(c.Request().Context(), in)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, EmployeeResponse{Success: true, Data: employee, Message: MsgEmployeeCreated})
}

// Get godoc
// @Summary Get an employee
// @Tags employees
// @Produce json
// @Security BearerAuth
// @Param id path string true "Employee ID"
// @Success 200 {object} EmployeeResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /employees/{id} [get]
func (h *EmployeeHandler) Get(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	employee, err := h.employeeService.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, EmployeeResponse{Success: true, Data: employee})
}

// Update godoc
// @Summary Update an employee
// @Tags employees
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Employee ID"
// @Param request body EmployeeRequest true "Employee"
// @Success 200 {object} EmployeeResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /employees/{id} [put]
func (h *EmployeeHandler) Update(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	in, err := bindEmployee(c)
	if err != nil {
		return err
	}

	employee, err := h.employeeService.Update(c.Request().Context(), id, in)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, EmployeeResponse{Success: true, Data: employee, Message: MsgEmployeeUpdated})
}

// Delete godoc
// @Summary Delete an employee
// @Tags employees
// @Produce json
// @Security BearerAuth
// @Param id path string true "Employee ID"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /employees/{id} [delete]
func (h *EmployeeHandler) Delete(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	if err := h.employeeService.Delete(c.Request().Context(), id); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, MessageResponse{Success: true, Message: MsgEmployeeDeleted})
}

// queryInt returns the integer value of a query parameter, or 0 when it is
// absent or not a number. EmployeeQuery.Normalize supplies the defaults.
func queryInt(c echo.Context, name string) int {
	n, err := strconv.Atoi(strings.TrimSpace(c.QueryParam(name)))
	if err != nil {
		return 0
	}
	return n
}
