// Package controller implements the core business logic (service layer)
// for managing companies, their zones, users and vehicles, orchestrating
// repository operations and sending relevant events.
package controller

import (
	"context"
	"errors"
	"fmt"

	"github.com/gartstein/fleet/internal/company/descriptor"
	e "github.com/gartstein/fleet/internal/company/errors"
	"github.com/gartstein/fleet/internal/company/events"
	"github.com/gartstein/fleet/internal/company/models"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

type EventProducer interface {
	Produce(eventType events.EventType, company *models.Company)
}

// Repository defines the storage interface for companies and related entities.
type Repository interface {
	CreateCompany(ctx context.Context, company *models.Company) error
	GetCompany(ctx context.Context, id int32) (*models.Company, error)
	UpdateCompany(ctx context.Context, update *models.CompanyUpdate) error
	DeleteCompany(ctx context.Context, id int32) error
	CompanyExistsByEmail(ctx context.Context, email string) (bool, error)

	ListCompanyUsers(ctx context.Context, id int32) ([]models.User, error)
	ListCompanyVehicles(ctx context.Context, id int32) ([]models.Vehicle, error)
	GetCompanyZone(ctx context.Context, id int32) (*models.Zone, error)
	GetCompanyCommunityArea(ctx context.Context, id int32) (*models.Zone, error)
	CreateUser(ctx context.Context, user *models.User) error
	CreateVehicle(ctx context.Context, vehicle *models.Vehicle) error

	CreateZone(ctx context.Context, zone *models.Zone) error
	ListZones(ctx context.Context, filter models.ZoneFilter) ([]models.Zone, error)
	DeleteZone(ctx context.Context, id int32) error

	Describe(table string) (*descriptor.Entity, error)
	Close() error
}

// CompanyService provides methods to manage companies via repository
// operations and event production.
type CompanyService struct {
	repo     Repository
	producer EventProducer
	validate *validator.Validate
	logger   *zap.Logger
}

// NewCompanyService constructs a CompanyService with a repository,
// an event producer, and a logger.
func NewCompanyService(repo Repository, producer EventProducer, logger *zap.Logger) *CompanyService {
	return &CompanyService{
		repo:     repo,
		producer: producer,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		logger:   logger.Named("company_service"),
	}
}

// CreateCompany adds a new Company after validating input data,
// ensures uniqueness by checking the id and then the email, and triggers an event.
func (s *CompanyService) CreateCompany(ctx context.Context, company *models.Company) (*models.Company, error) {
	if err := s.check(company); err != nil {
		return nil, err
	}

	// An explicit id that is taken wins over a duplicate email.
	if company.ID != 0 {
		_, err := s.repo.GetCompany(ctx, company.ID)
		if err == nil {
			return nil, fmt.Errorf("%w: company %d already exists", e.ErrPrimaryKeyViolation, company.ID)
		}
		if !errors.Is(err, e.ErrNotFound) {
			return nil, fmt.Errorf("failed to check company id: %w", err)
		}
	}

	exists, err := s.repo.CompanyExistsByEmail(ctx, company.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email existence: %w", err)
	}
	if exists {
		return nil, fmt.Errorf("%w: email %q already registered", e.ErrUniqueViolation, company.Email)
	}

	if err := s.repo.CreateCompany(ctx, company); err != nil {
		return nil, fmt.Errorf("failed to create company: %w", err)
	}
	go func() {
		s.producer.Produce(events.CompanyCreated, company)
	}()
	return company, nil
}

// GetCompany retrieves a Company by ID, returning an error if not found.
func (s *CompanyService) GetCompany(ctx context.Context, id int32) (*models.Company, error) {
	company, err := s.repo.GetCompany(ctx, id)
	if err != nil {
		if errors.Is(err, e.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get company: %w", err)
	}
	return company, nil
}

// UpdateCompany modifies the specified Company fields,
// then fetches the updated version for returning and event production.
func (s *CompanyService) UpdateCompany(ctx context.Context, update *models.CompanyUpdate) (*models.Company, error) {
	if err := s.check(update); err != nil {
		return nil, err
	}
	if update.Empty() {
		return nil, fmt.Errorf("%w: nothing to update", e.ErrInvalidInput)
	}

	err := s.repo.UpdateCompany(ctx, update)
	if err != nil {
		if errors.Is(err, e.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to update company: %w", err)
	}

	updated, err := s.repo.GetCompany(ctx, update.ID)
	if err != nil {
		s.logger.Error("Failed to get company for event",
			zap.Error(err),
			zap.Int32("company_id", update.ID),
		)
		return nil, err
	}
	go func() {
		s.producer.Produce(events.CompanyUpdated, updated)
	}()
	return updated, nil
}

// DeleteCompany removes a Company by ID and fires a deletion event.
func (s *CompanyService) DeleteCompany(ctx context.Context, id int32) error {
	company, err := s.repo.GetCompany(ctx, id)
	if err != nil {
		if errors.Is(err, e.ErrNotFound) {
			return err
		}
		return fmt.Errorf("failed to get company for deletion: %w", err)
	}

	if err := s.repo.DeleteCompany(ctx, id); err != nil {
		return fmt.Errorf("failed to delete company: %w", err)
	}

	go func() {
		s.producer.Produce(events.CompanyDeleted, company)
	}()

	return nil
}

// DescribeEntity returns the column and relation metadata of a table.
func (s *CompanyService) DescribeEntity(_ context.Context, table string) (*descriptor.Entity, error) {
	if table == "" {
		return nil, fmt.Errorf("%w: table name required", e.ErrInvalidInput)
	}
	return s.repo.Describe(table)
}

// check runs struct validation and converts failures into a ValidationError.
func (s *CompanyService) check(v interface{}) error {
	err := s.validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", e.ErrInvalidInput, err)
	}
	out := &e.ValidationError{}
	for _, fe := range verrs {
		out.Violations = append(out.Violations, e.FieldViolation{
			Field:  fe.Field(),
			Reason: describeTag(fe),
		})
	}
	return out
}

func describeTag(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return "must be at least " + fe.Param() + " characters"
	case "max":
		return "must be at most " + fe.Param()
	case "gt":
		return "must be greater than " + fe.Param()
	case "gte":
		return "must be at least " + fe.Param()
	case "lte":
		return "must be at most " + fe.Param()
	default:
		return "failed " + fe.Tag() + " check"
	}
}
