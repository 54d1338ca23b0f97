package customers

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"

	"github.com/medstore/medstore-backend/pkg/db/models"
	pkgerrors "github.com/medstore/medstore-backend/pkg/errors"
	"github.com/medstore/medstore-backend/pkg/logger"
)

var validate = validator.New()

// CustomerRow is the customer projection served to clients.
type CustomerRow struct {
	CustomerID int64   `json:"customer_id"`
	Name       string  `json:"name"`
	Phone      string  `json:"phone"`
	Email      *string `json:"email"`
	Address    *string `json:"address"`
}

// CustomerInput carries the editable customer fields.
type CustomerInput struct {
	Name    string
	Phone   string
	Email   *string
	Address *string
}

// Service manages customer records.
type Service interface {
	List(ctx context.Context) ([]CustomerRow, error)
	Get(ctx context.Context, id int64) (*CustomerRow, error)
	Create(ctx context.Context, input CustomerInput) (*CustomerRow, error)
	Update(ctx context.Context, id int64, input CustomerInput) (*CustomerRow, error)
	Delete(ctx context.Context, id int64) error
}

type service struct {
	repo Repository
	logg *logger.Logger
}

// NewService builds the customers service.
func NewService(repo Repository, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("customers repository required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{repo: repo, logg: logg}, nil
}

func (s *service) List(ctx context.Context) ([]CustomerRow, error) {
	customers, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "db: list customers")
	}
	out := make([]CustomerRow, 0, len(customers))
	for _, c := range customers {
		out = append(out, fromModel(c))
	}
	return out, nil
}

func (s *service) Get(ctx context.Context, id int64) (*CustomerRow, error) {
	customer, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, customerNotFound(id)
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "db: load customer")
	}
	row := fromModel(*customer)
	return &row, nil
}

func (s *service) Create(ctx context.Context, input CustomerInput) (*CustomerRow, error) {
	input, err := normalizeInput(input)
	if err != nil {
		return nil, err
	}
	customer := models.Customer{Name: input.Name, Phone: input.Phone, Email: input.Email, Address: input.Address}
	if err := s.repo.Create(ctx, &customer); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "db: insert customer")
	}
	s.logg.Info(s.logg.WithField(ctx, "customer_id", customer.ID), "customer.created")
	row := fromModel(customer)
	return &row, nil
}

func (s *service) Update(ctx context.Context, id int64, input CustomerInput) (*CustomerRow, error) {
	input, err := normalizeInput(input)
	if err != nil {
		return nil, err
	}
	affected, err := s.repo.Update(ctx, id, map[string]any{
		"name":    input.Name,
		"phone":   input.Phone,
		"email":   input.Email,
		"address": input.Address,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "db: update customer")
	}
	if affected == 0 {
		return nil, customerNotFound(id)
	}
	return s.Get(ctx, id)
}

// Delete removes a customer. Their past sales keep existing without a
// customer link.
func (s *service) Delete(ctx context.Context, id int64) error {
	affected, err := s.repo.Delete(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodePersistence, err, "db: delete customer")
	}
	if affected == 0 {
		return customerNotFound(id)
	}
	return nil
}

func normalizeInput(input CustomerInput) (CustomerInput, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Phone = strings.TrimSpace(input.Phone)
	input.Email = blankToNil(input.Email)
	input.Address = blankToNil(input.Address)

	details := map[string]string{}
	if input.Name == "" {
		details["name"] = "is required"
	}
	if input.Phone == "" {
		details["phone"] = "is required"
	}
	if input.Email != nil {
		if err := validate.Var(*input.Email, "email"); err != nil {
			details["email"] = "must be a valid email"
		}
	}
	if len(details) > 0 {
		return input, pkgerrors.New(pkgerrors.CodeValidation, "invalid customer").WithDetails(details)
	}
	return input, nil
}

func blankToNil(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func fromModel(c models.Customer) CustomerRow {
	return CustomerRow{CustomerID: c.ID, Name: c.Name, Phone: c.Phone, Email: c.Email, Address: c.Address}
}

func customerNotFound(id int64) error {
	return pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("customer %d not found", id))
}
