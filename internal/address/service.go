package address

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/errors"
)

type addressStore interface {
	ListByUser(ctx context.Context, userID string) ([]models.Address, error)
	Create(ctx context.Context, address *models.Address) error
	FindForUser(ctx context.Context, id uuid.UUID, userID string) (*models.Address, error)
}

// CreateInput is a delivery address as submitted by the shopper.
type CreateInput struct {
	Name    string `json:"name" validate:"required"`
	Email   string `json:"email" validate:"required,email"`
	Street  string `json:"street" validate:"required"`
	City    string `json:"city" validate:"required"`
	State   string `json:"state" validate:"required"`
	Zip     string `json:"zip" validate:"required"`
	Country string `json:"country" validate:"required"`
	Phone   string `json:"phone" validate:"required"`
}

type Service interface {
	List(ctx context.Context, userID string) ([]models.Address, error)
	Create(ctx context.Context, userID string, input CreateInput) (*models.Address, error)
	Owned(ctx context.Context, userID string, id uuid.UUID) (*models.Address, error)
}

type service struct {
	repo addressStore
}

func NewService(repo addressStore) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("address repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) List(ctx context.Context, userID string) ([]models.Address, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, errors.New(errors.CodeUnauthorized, "authentication required")
	}
	rows, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "list addresses")
	}
	return rows, nil
}

func (s *service) Create(ctx context.Context, userID string, input CreateInput) (*models.Address, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, errors.New(errors.CodeUnauthorized, "authentication required")
	}
	input = input.trimmed()
	if missing := input.missing(); len(missing) > 0 {
		return nil, errors.New(errors.CodeValidation, "address is incomplete").
			WithDetails(map[string]any{"missing": missing})
	}

	row := &models.Address{
		UserID:  userID,
		Name:    input.Name,
		Email:   strings.ToLower(input.Email),
		Street:  input.Street,
		City:    input.City,
		State:   input.State,
		Zip:     input.Zip,
		Country: input.Country,
		Phone:   input.Phone,
	}
	if err := s.repo.Create(ctx, row); err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "create address")
	}
	return row, nil
}

// Owned resolves an address id for checkout; a foreign or unknown id is a validation error.
func (s *service) Owned(ctx context.Context, userID string, id uuid.UUID) (*models.Address, error) {
	if id == uuid.Nil {
		return nil, errors.New(errors.CodeValidation, "delivery address is required")
	}
	row, err := s.repo.FindForUser(ctx, id, userID)
	if err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "load address")
	}
	if row == nil {
		return nil, errors.New(errors.CodeValidation, "delivery address not found")
	}
	return row, nil
}

func (in CreateInput) trimmed() CreateInput {
	return CreateInput{
		Name:    strings.TrimSpace(in.Name),
		Email:   strings.TrimSpace(in.Email),
		Street:  strings.TrimSpace(in.Street),
		City:    strings.TrimSpace(in.City),
		State:   strings.TrimSpace(in.State),
		Zip:     strings.TrimSpace(in.Zip),
		Country: strings.TrimSpace(in.Country),
		Phone:   strings.TrimSpace(in.Phone),
	}
}

func (in CreateInput) missing() []string {
	fields := []struct {
		name  string
		value string
	}{
		{"name", in.Name},
		{"email", in.Email},
		{"street", in.Street},
		{"city", in.City},
		{"state", in.State},
		{"zip", in.Zip},
		{"country", in.Country},
		{"phone", in.Phone},
	}
	var out []string
	for _, f := range fields {
		if f.value == "" {
			out = append(out, f.name)
		}
	}
	return out
}
