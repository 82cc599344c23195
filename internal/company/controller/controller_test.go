package controller

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/gartstein/fleet/internal/company/descriptor"
	e "github.com/gartstein/fleet/internal/company/errors"
	"github.com/gartstein/fleet/internal/company/events"
	"github.com/gartstein/fleet/internal/company/models"
	"github.com/gartstein/fleet/internal/pkg/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// MockRepository implements the Repository interface for testing
type MockRepository struct {
	createCompany        func(context.Context, *models.Company) error
	getCompany           func(context.Context, int32) (*models.Company, error)
	updateCompany        func(context.Context, *models.CompanyUpdate) error
	deleteCompany        func(context.Context, int32) error
	companyExistsByEmail func(context.Context, string) (bool, error)
	listCompanyUsers     func(context.Context, int32) ([]models.User, error)
	listCompanyVehicles  func(context.Context, int32) ([]models.Vehicle, error)
	getCompanyZone       func(context.Context, int32) (*models.Zone, error)
	getCommunityArea     func(context.Context, int32) (*models.Zone, error)
	createUser           func(context.Context, *models.User) error
	createVehicle        func(context.Context, *models.Vehicle) error
	createZone           func(context.Context, *models.Zone) error
	listZones            func(context.Context, models.ZoneFilter) ([]models.Zone, error)
	deleteZone           func(context.Context, int32) error
	describe             func(string) (*descriptor.Entity, error)
}

func (m *MockRepository) CreateCompany(ctx context.Context, c *models.Company) error {
	return m.createCompany(ctx, c)
}

func (m *MockRepository) GetCompany(ctx context.Context, id int32) (*models.Company, error) {
	return m.getCompany(ctx, id)
}

func (m *MockRepository) UpdateCompany(ctx context.Context, u *models.CompanyUpdate) error {
	return m.updateCompany(ctx, u)
}

func (m *MockRepository) DeleteCompany(ctx context.Context, id int32) error {
	return m.deleteCompany(ctx, id)
}

func (m *MockRepository) CompanyExistsByEmail(ctx context.Context, email string) (bool, error) {
	return m.companyExistsByEmail(ctx, email)
}

func (m *MockRepository) ListCompanyUsers(ctx context.Context, id int32) ([]models.User, error) {
	return m.listCompanyUsers(ctx, id)
}

func (m *MockRepository) ListCompanyVehicles(ctx context.Context, id int32) ([]models.Vehicle, error) {
	return m.listCompanyVehicles(ctx, id)
}

func (m *MockRepository) GetCompanyZone(ctx context.Context, id int32) (*models.Zone, error) {
	return m.getCompanyZone(ctx, id)
}

func (m *MockRepository) GetCompanyCommunityArea(ctx context.Context, id int32) (*models.Zone, error) {
	return m.getCommunityArea(ctx, id)
}

func (m *MockRepository) CreateUser(ctx context.Context, u *models.User) error {
	return m.createUser(ctx, u)
}

func (m *MockRepository) CreateVehicle(ctx context.Context, v *models.Vehicle) error {
	return m.createVehicle(ctx, v)
}

func (m *MockRepository) CreateZone(ctx context.Context, z *models.Zone) error {
	return m.createZone(ctx, z)
}

func (m *MockRepository) ListZones(ctx context.Context, f models.ZoneFilter) ([]models.Zone, error) {
	return m.listZones(ctx, f)
}

func (m *MockRepository) DeleteZone(ctx context.Context, id int32) error {
	return m.deleteZone(ctx, id)
}

func (m *MockRepository) Describe(table string) (*descriptor.Entity, error) {
	return m.describe(table)
}

func (m *MockRepository) Close() error {
	return nil
}

type producedEvent struct {
	EventType events.EventType
	Company   *models.Company
}

// MockProducer is a test double for the Kafka producer.
type MockProducer struct {
	mu             sync.Mutex
	producedEvents []producedEvent
	wg             *sync.WaitGroup
}

// Produce records the event and signals the wait group.
func (m *MockProducer) Produce(eventType events.EventType, company *models.Company) {
	m.mu.Lock()
	m.producedEvents = append(m.producedEvents, producedEvent{eventType, company})
	m.mu.Unlock()
	if m.wg != nil {
		m.wg.Done()
	}
}

func validCompany() *models.Company {
	return &models.Company{
		Latitude:        41.8,
		Longitude:       -87.6,
		DisplayName:     "Acme",
		Email:           "a@acme.com",
		ZoneID:          3,
		CommunityAreaID: 3,
	}
}

func TestCompanyService_CreateCompany(t *testing.T) {
	tests := []struct {
		name          string
		input         func() *models.Company
		mockSetup     func(*MockRepository)
		expectError   bool
		expectedError error
	}{
		{
			name:  "successful creation",
			input: validCompany,
			mockSetup: func(mr *MockRepository) {
				mr.companyExistsByEmail = func(_ context.Context, _ string) (bool, error) {
					return false, nil
				}
				mr.createCompany = func(_ context.Context, c *models.Company) error {
					c.ID = 1
					return nil
				}
			},
		},
		{
			name:  "duplicate email",
			input: validCompany,
			mockSetup: func(mr *MockRepository) {
				mr.companyExistsByEmail = func(_ context.Context, _ string) (bool, error) {
					return true, nil
				}
			},
			expectError:   true,
			expectedError: e.ErrUniqueViolation,
		},
		{
			name: "invalid email",
			input: func() *models.Company {
				c := validCompany()
				c.Email = "not-an-email"
				return c
			},
			mockSetup:     func(_ *MockRepository) {},
			expectError:   true,
			expectedError: e.ErrInvalidInput,
		},
		{
			name: "latitude out of range",
			input: func() *models.Company {
				c := validCompany()
				c.Latitude = 91
				return c
			},
			mockSetup:     func(_ *MockRepository) {},
			expectError:   true,
			expectedError: e.ErrInvalidInput,
		},
		{
			name: "missing zone",
			input: func() *models.Company {
				c := validCompany()
				c.ZoneID = 0
				return c
			},
			mockSetup:     func(_ *MockRepository) {},
			expectError:   true,
			expectedError: e.ErrInvalidInput,
		},
		{
			name: "existing id with the same email",
			input: func() *models.Company {
				c := validCompany()
				c.ID = 1
				return c
			},
			mockSetup: func(mr *MockRepository) {
				mr.getCompany = func(_ context.Context, id int32) (*models.Company, error) {
					c := validCompany()
					c.ID = id
					return c, nil
				}
				mr.companyExistsByEmail = func(_ context.Context, _ string) (bool, error) {
					return true, nil
				}
			},
			expectError:   true,
			expectedError: e.ErrPrimaryKeyViolation,
		},
		{
			name: "id lookup fails",
			input: func() *models.Company {
				c := validCompany()
				c.ID = 1
				return c
			},
			mockSetup: func(mr *MockRepository) {
				mr.getCompany = func(_ context.Context, _ int32) (*models.Company, error) {
					return nil, errors.New("database error")
				}
			},
			expectError: true,
		},
		{
			name: "primary key collision",
			input: func() *models.Company {
				c := validCompany()
				c.ID = 1
				return c
			},
			mockSetup: func(mr *MockRepository) {
				mr.getCompany = func(_ context.Context, _ int32) (*models.Company, error) {
					return nil, e.ErrNotFound
				}
				mr.companyExistsByEmail = func(_ context.Context, _ string) (bool, error) {
					return false, nil
				}
				mr.createCompany = func(_ context.Context, _ *models.Company) error {
					return e.ErrPrimaryKeyViolation
				}
			},
			expectError:   true,
			expectedError: e.ErrPrimaryKeyViolation,
		},
		{
			name:  "unknown zone",
			input: validCompany,
			mockSetup: func(mr *MockRepository) {
				mr.companyExistsByEmail = func(_ context.Context, _ string) (bool, error) {
					return false, nil
				}
				mr.createCompany = func(_ context.Context, _ *models.Company) error {
					return e.ErrForeignKeyViolation
				}
			},
			expectError:   true,
			expectedError: e.ErrForeignKeyViolation,
		},
		{
			name:  "repository error",
			input: validCompany,
			mockSetup: func(mr *MockRepository) {
				mr.companyExistsByEmail = func(_ context.Context, _ string) (bool, error) {
					return false, errors.New("database error")
				}
			},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger := zaptest.NewLogger(t)
			mockRepo := &MockRepository{}
			mockProducer := &MockProducer{wg: new(sync.WaitGroup)}
			tt.mockSetup(mockRepo)

			if !tt.expectError {
				mockProducer.wg.Add(1)
			}

			service := NewCompanyService(mockRepo, mockProducer, logger)
			result, err := service.CreateCompany(context.Background(), tt.input())

			if tt.expectError {
				require.Error(t, err)
				if tt.expectedError != nil {
					assert.ErrorIs(t, err, tt.expectedError)
				}
				assert.Nil(t, result)
				assert.Empty(t, mockProducer.producedEvents)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, int32(1), result.ID)

			mockProducer.wg.Wait()
			require.Len(t, mockProducer.producedEvents, 1)
			assert.Equal(t, events.CompanyCreated, mockProducer.producedEvents[0].EventType)
		})
	}
}

func TestCompanyService_CreateCompanyValidationDetails(t *testing.T) {
	service := NewCompanyService(&MockRepository{}, &MockProducer{}, zaptest.NewLogger(t))

	c := validCompany()
	c.DisplayName = ""
	c.Longitude = 200
	_, err := service.CreateCompany(context.Background(), c)

	var verr *e.ValidationError
	require.ErrorAs(t, err, &verr)
	fields := make([]string, 0, len(verr.Violations))
	for _, v := range verr.Violations {
		fields = append(fields, v.Field)
	}
	assert.ElementsMatch(t, []string{"DisplayName", "Longitude"}, fields)
}

func TestCompanyService_GetCompany(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		mockRepo := &MockRepository{
			getCompany: func(_ context.Context, id int32) (*models.Company, error) {
				c := validCompany()
				c.ID = id
				return c, nil
			},
		}
		service := NewCompanyService(mockRepo, &MockProducer{}, zaptest.NewLogger(t))

		company, err := service.GetCompany(context.Background(), 4)
		require.NoError(t, err)
		assert.Equal(t, int32(4), company.ID)
	})

	t.Run("not found", func(t *testing.T) {
		mockRepo := &MockRepository{
			getCompany: func(_ context.Context, _ int32) (*models.Company, error) {
				return nil, e.ErrNotFound
			},
		}
		service := NewCompanyService(mockRepo, &MockProducer{}, zaptest.NewLogger(t))

		_, err := service.GetCompany(context.Background(), 4)
		assert.ErrorIs(t, err, e.ErrNotFound)
	})
}

func TestCompanyService_UpdateCompany(t *testing.T) {
	tests := []struct {
		name          string
		update        *models.CompanyUpdate
		mockSetup     func(*MockRepository)
		expectedError error
	}{
		{
			name:   "successful update",
			update: &models.CompanyUpdate{ID: 1, DisplayName: utils.Ptr("Acme Taxi")},
			mockSetup: func(mr *MockRepository) {
				mr.updateCompany = func(_ context.Context, _ *models.CompanyUpdate) error { return nil }
				mr.getCompany = func(_ context.Context, id int32) (*models.Company, error) {
					c := validCompany()
					c.ID, c.DisplayName = id, "Acme Taxi"
					return c, nil
				}
			},
		},
		{
			name:          "invalid id",
			update:        &models.CompanyUpdate{ID: 0, DisplayName: utils.Ptr("Acme Taxi")},
			mockSetup:     func(_ *MockRepository) {},
			expectedError: e.ErrInvalidInput,
		},
		{
			name:          "empty update",
			update:        &models.CompanyUpdate{ID: 1},
			mockSetup:     func(_ *MockRepository) {},
			expectedError: e.ErrInvalidInput,
		},
		{
			name:          "invalid email",
			update:        &models.CompanyUpdate{ID: 1, Email: utils.Ptr("nope")},
			mockSetup:     func(_ *MockRepository) {},
			expectedError: e.ErrInvalidInput,
		},
		{
			name:   "not found",
			update: &models.CompanyUpdate{ID: 1, ZoneID: utils.Ptr(int32(2))},
			mockSetup: func(mr *MockRepository) {
				mr.updateCompany = func(_ context.Context, _ *models.CompanyUpdate) error { return e.ErrNotFound }
			},
			expectedError: e.ErrNotFound,
		},
		{
			name:   "unknown community area",
			update: &models.CompanyUpdate{ID: 1, CommunityAreaID: utils.Ptr(int32(99))},
			mockSetup: func(mr *MockRepository) {
				mr.updateCompany = func(_ context.Context, _ *models.CompanyUpdate) error {
					return e.ErrForeignKeyViolation
				}
			},
			expectedError: e.ErrForeignKeyViolation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := &MockRepository{}
			tt.mockSetup(mockRepo)
			mockProducer := &MockProducer{wg: new(sync.WaitGroup)}
			if tt.expectedError == nil {
				mockProducer.wg.Add(1)
			}
			service := NewCompanyService(mockRepo, mockProducer, zaptest.NewLogger(t))

			updated, err := service.UpdateCompany(context.Background(), tt.update)
			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, updated)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, "Acme Taxi", updated.DisplayName)
			mockProducer.wg.Wait()
			assert.Equal(t, events.CompanyUpdated, mockProducer.producedEvents[0].EventType)
		})
	}
}

func TestCompanyService_DeleteCompany(t *testing.T) {
	t.Run("successful delete", func(t *testing.T) {
		deleted := int32(0)
		mockRepo := &MockRepository{
			getCompany: func(_ context.Context, id int32) (*models.Company, error) {
				return &models.Company{ID: id}, nil
			},
			deleteCompany: func(_ context.Context, id int32) error {
				deleted = id
				return nil
			},
		}
		mockProducer := &MockProducer{wg: new(sync.WaitGroup)}
		mockProducer.wg.Add(1)
		service := NewCompanyService(mockRepo, mockProducer, zaptest.NewLogger(t))

		require.NoError(t, service.DeleteCompany(context.Background(), 5))
		assert.Equal(t, int32(5), deleted)

		mockProducer.wg.Wait()
		assert.Equal(t, events.CompanyDeleted, mockProducer.producedEvents[0].EventType)
		assert.Equal(t, int32(5), mockProducer.producedEvents[0].Company.ID)
	})

	t.Run("not found", func(t *testing.T) {
		mockRepo := &MockRepository{
			getCompany: func(_ context.Context, _ int32) (*models.Company, error) {
				return nil, e.ErrNotFound
			},
		}
		mockProducer := &MockProducer{}
		service := NewCompanyService(mockRepo, mockProducer, zaptest.NewLogger(t))

		assert.ErrorIs(t, service.DeleteCompany(context.Background(), 5), e.ErrNotFound)
		assert.Empty(t, mockProducer.producedEvents)
	})

	t.Run("repository error", func(t *testing.T) {
		mockRepo := &MockRepository{
			getCompany: func(_ context.Context, id int32) (*models.Company, error) {
				return &models.Company{ID: id}, nil
			},
			deleteCompany: func(_ context.Context, _ int32) error {
				return errors.New("database error")
			},
		}
		service := NewCompanyService(mockRepo, &MockProducer{}, zaptest.NewLogger(t))

		err := service.DeleteCompany(context.Background(), 5)
		assert.ErrorContains(t, err, "failed to delete company")
	})
}

func TestCompanyService_DescribeEntity(t *testing.T) {
	mockRepo := &MockRepository{
		describe: func(table string) (*descriptor.Entity, error) {
			return &descriptor.Entity{Table: table}, nil
		},
	}
	service := NewCompanyService(mockRepo, &MockProducer{}, zaptest.NewLogger(t))

	ent, err := service.DescribeEntity(context.Background(), "company")
	require.NoError(t, err)
	assert.Equal(t, "company", ent.Table)

	_, err = service.DescribeEntity(context.Background(), "")
	assert.ErrorIs(t, err, e.ErrInvalidInput)
}
