package test

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/gartstein/fleet/internal/company/controller"
	"github.com/gartstein/fleet/internal/company/db"
	e "github.com/gartstein/fleet/internal/company/errors"
	"github.com/gartstein/fleet/internal/company/events"
	"github.com/gartstein/fleet/internal/company/models"
	"github.com/gartstein/fleet/internal/pkg/utils"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
)

// recordingProducer captures events produced by the service.
type recordingProducer struct {
	mu     sync.Mutex
	events []events.EventType
}

func (p *recordingProducer) Produce(eventType events.EventType, _ *models.Company) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, eventType)
}

func (p *recordingProducer) produced() []events.EventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]events.EventType(nil), p.events...)
}

type IntegrationTestSuite struct {
	suite.Suite
	container   *postgres.PostgresContainer
	dbRepo      *db.Repository
	logger      *zap.Logger
	testTimeout time.Duration
}

func TestIntegrationSuite(t *testing.T) {
	if testing.Short() || os.Getenv("FLEET_INTEGRATION") != "1" {
		t.Skip("Skipping integration tests; set FLEET_INTEGRATION=1 to run them")
	}
	suite.Run(t, new(IntegrationTestSuite))
}

func (s *IntegrationTestSuite) SetupSuite() {
	s.logger = zaptest.NewLogger(s.T())
	s.testTimeout = 20 * time.Second
	ctx := context.Background()

	container, err := postgres.Run(ctx, "postgres:16-alpine",
		postgres.WithDatabase("fleet"),
		postgres.WithUsername("fleet"),
		postgres.WithPassword("fleet"),
		postgres.BasicWaitStrategies(),
	)
	s.Require().NoError(err, "failed to start postgres container")
	s.container = container

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	s.Require().NoError(err)

	s.dbRepo, err = initializeDBWithRetry(dsn)
	s.Require().NoError(err, "database initialization failed")
}

func initializeDBWithRetry(dsn string) (*db.Repository, error) {
	cfg := &db.Config{Driver: db.DriverPostgres, DSN: dsn}

	b := backoff.NewExponentialBackOff()
	b.MaxElapsedTime = 30 * time.Second

	var repo *db.Repository
	err := backoff.Retry(func() error {
		r, err := db.NewRepository(cfg)
		if err != nil {
			return err
		}
		repo = r
		return nil
	}, b)
	return repo, err
}

func (s *IntegrationTestSuite) TearDownSuite() {
	if s.dbRepo != nil {
		_ = s.dbRepo.Close()
	}
	if s.container != nil {
		if err := testcontainers.TerminateContainer(s.container); err != nil {
			s.T().Logf("failed to terminate container: %v", err)
		}
	}
}

func (s *IntegrationTestSuite) SetupTest() {
	ctx, cancel := context.WithTimeout(context.Background(), s.testTimeout)
	defer cancel()

	err := s.dbRepo.Exec(ctx, `TRUNCATE TABLE vehicle, "user", company, zone RESTART IDENTITY CASCADE`)
	s.Require().NoError(err, "failed to clean database")

	_, err = s.dbRepo.SeedZones(ctx, []models.Zone{
		{ID: 1, Name: "Weißwasser"},
		{ID: 2, Name: "Görlitz"},
		{ID: 3, Name: "Bad Muskau", IsCommunity: true},
	})
	s.Require().NoError(err)
}

func (s *IntegrationTestSuite) ctx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), s.testTimeout)
}

func acme() *models.Company {
	return &models.Company{
		ID:              1,
		Latitude:        41.8,
		Longitude:       -87.6,
		DisplayName:     "Acme",
		Email:           "a@acme.com",
		ZoneID:          3,
		CommunityAreaID: 3,
	}
}

func (s *IntegrationTestSuite) TestConstraintViolationsAreDistinct() {
	ctx, cancel := s.ctx()
	defer cancel()

	s.Require().NoError(s.dbRepo.CreateCompany(ctx, acme()))

	sameEmail := acme()
	sameEmail.ID = 2
	s.ErrorIs(s.dbRepo.CreateCompany(ctx, sameEmail), e.ErrUniqueViolation)

	s.ErrorIs(s.dbRepo.CreateCompany(ctx, acme()), e.ErrPrimaryKeyViolation)

	unknownZone := acme()
	unknownZone.ID, unknownZone.Email, unknownZone.ZoneID = 3, "z@acme.com", 42
	s.ErrorIs(s.dbRepo.CreateCompany(ctx, unknownZone), e.ErrForeignKeyViolation)

	unknownArea := acme()
	unknownArea.ID, unknownArea.Email, unknownArea.CommunityAreaID = 4, "c@acme.com", 42
	s.ErrorIs(s.dbRepo.CreateCompany(ctx, unknownArea), e.ErrForeignKeyViolation)

	err := s.dbRepo.UpdateCompany(ctx, &models.CompanyUpdate{ID: 1, ZoneID: utils.Ptr(int32(42))})
	s.ErrorIs(err, e.ErrForeignKeyViolation)
}

func (s *IntegrationTestSuite) TestReferencedZoneIsProtected() {
	ctx, cancel := s.ctx()
	defer cancel()

	s.Require().NoError(s.dbRepo.CreateCompany(ctx, acme()))

	s.ErrorIs(s.dbRepo.DeleteZone(ctx, 3), e.ErrForeignKeyViolation)
	s.ErrorIs(s.dbRepo.Exec(ctx, "UPDATE zone SET id = 99 WHERE id = 3"), e.ErrForeignKeyViolation)

	company, err := s.dbRepo.GetCompany(ctx, 1)
	s.Require().NoError(err)
	s.Equal(int32(3), company.ZoneID)
	s.Equal(int32(3), company.CommunityAreaID)

	s.NoError(s.dbRepo.DeleteZone(ctx, 1), "unreferenced zone can go")
}

func (s *IntegrationTestSuite) TestGeneratedIDsFollowExplicitOnes() {
	ctx, cancel := s.ctx()
	defer cancel()

	zone := &models.Zone{Name: "Rothenburg"}
	s.Require().NoError(s.dbRepo.CreateZone(ctx, zone), "seeded ids must not be handed out again")
	s.Equal(int32(4), zone.ID)

	s.Require().NoError(s.dbRepo.CreateCompany(ctx, acme()))
	next := acme()
	next.ID, next.Email = 0, "next@acme.com"
	s.Require().NoError(s.dbRepo.CreateCompany(ctx, next))
	s.Equal(int32(2), next.ID)

	s.Require().NoError(s.dbRepo.CreateUser(ctx, &models.User{ID: 10, Name: "Ann", Email: "ann@acme.com"}))
	user := &models.User{Name: "Bob", Email: "bob@acme.com"}
	s.Require().NoError(s.dbRepo.CreateUser(ctx, user))
	s.Equal(int32(11), user.ID)
}

func (s *IntegrationTestSuite) TestTraversal() {
	ctx, cancel := s.ctx()
	defer cancel()

	s.Require().NoError(s.dbRepo.CreateCompany(ctx, acme()))
	other := acme()
	other.ID, other.Email, other.ZoneID = 2, "o@other.com", 2
	s.Require().NoError(s.dbRepo.CreateCompany(ctx, other))

	for i, companyID := range []int32{1, 1, 2} {
		s.Require().NoError(s.dbRepo.CreateVehicle(ctx, &models.Vehicle{
			LicensePlate: fmt.Sprintf("GR-%d", i),
			Passengers:   4,
			CompanyID:    companyID,
		}))
	}
	s.Require().NoError(s.dbRepo.CreateUser(ctx, &models.User{Name: "Ann", Email: "ann@acme.com", CompanyID: utils.Ptr(int32(1))}))
	s.Require().NoError(s.dbRepo.CreateUser(ctx, &models.User{Name: "Free", Email: "free@example.com"}))

	vehicles, err := s.dbRepo.ListCompanyVehicles(ctx, 1)
	s.Require().NoError(err)
	s.Len(vehicles, 2)
	for _, v := range vehicles {
		s.Equal(int32(1), v.CompanyID)
	}

	users, err := s.dbRepo.ListCompanyUsers(ctx, 1)
	s.Require().NoError(err)
	s.Len(users, 1)

	zone, err := s.dbRepo.GetCompanyZone(ctx, 2)
	s.Require().NoError(err)
	s.Equal("Görlitz", zone.Name)

	area, err := s.dbRepo.GetCompanyCommunityArea(ctx, 2)
	s.Require().NoError(err)
	s.Equal("Bad Muskau", area.Name)

	_, err = s.dbRepo.ListCompanyUsers(ctx, 77)
	s.ErrorIs(err, e.ErrNotFound)

	s.ErrorIs(s.dbRepo.CreateVehicle(ctx, &models.Vehicle{LicensePlate: "GR-X", Passengers: 1, CompanyID: 77}),
		e.ErrForeignKeyViolation)
}

func (s *IntegrationTestSuite) TestServiceLifecycle() {
	ctx, cancel := s.ctx()
	defer cancel()

	producer := &recordingProducer{}
	svc := controller.NewCompanyService(s.dbRepo, producer, s.logger)

	c := acme()
	c.ID = 0
	created, err := svc.CreateCompany(ctx, c)
	s.Require().NoError(err)
	s.Positive(created.ID)

	_, err = svc.CreateCompany(ctx, &models.Company{
		DisplayName: "Dup", Email: "a@acme.com", ZoneID: 1, CommunityAreaID: 3,
	})
	s.ErrorIs(err, e.ErrUniqueViolation)

	updated, err := svc.UpdateCompany(ctx, &models.CompanyUpdate{ID: created.ID, DisplayName: utils.Ptr("Acme Taxi")})
	s.Require().NoError(err)
	s.Equal("Acme Taxi", updated.DisplayName)

	s.Require().NoError(svc.DeleteCompany(ctx, created.ID))
	_, err = svc.GetCompany(ctx, created.ID)
	s.ErrorIs(err, e.ErrNotFound)

	s.Eventually(func() bool {
		return len(producer.produced()) == 3
	}, 5*time.Second, 50*time.Millisecond)
	s.ElementsMatch(
		[]events.EventType{events.CompanyCreated, events.CompanyUpdated, events.CompanyDeleted},
		producer.produced(),
	)
}

func (s *IntegrationTestSuite) TestDescribeMatchesDatabase() {
	ent, err := s.dbRepo.Describe("company")
	s.Require().NoError(err)
	s.Len(ent.Columns, 7)
	s.Len(ent.RelationsTo("zone"), 2)

	_, err = s.dbRepo.Describe("garage")
	s.ErrorIs(err, e.ErrNotFound)
}

// TestKafkaRoundTrip needs a reachable broker in KAFKA_BROKERS.
func (s *IntegrationTestSuite) TestKafkaRoundTrip() {
	raw := os.Getenv("KAFKA_BROKERS")
	if raw == "" {
		s.T().Skip("KAFKA_BROKERS not set")
	}
	brokers := strings.Split(raw, ",")
	topic := "company-events-it-" + uuid.NewString()

	var producer *events.Producer
	err := backoff.Retry(func() error {
		p, err := events.NewProducer(brokers, s.logger, topic)
		if err != nil {
			return err
		}
		producer = p
		return nil
	}, backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 5))
	s.Require().NoError(err)
	defer producer.Close()

	consumer := events.NewConsumer(brokers, "it-"+uuid.NewString(), topic, s.logger)
	defer consumer.Close()

	received := make(chan events.Event, 1)
	consumer.RegisterHandler(func(_ context.Context, ev events.Event) error {
		select {
		case received <- ev:
		default:
		}
		return nil
	})

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	consumer.Start(ctx)

	producer.Produce(events.CompanyCreated, acme())

	select {
	case ev := <-received:
		s.Equal(events.CompanyCreated, ev.Type)
		s.Equal("a@acme.com", ev.Company.Email)
		s.NotEqual(uuid.Nil, ev.ID)
	case <-ctx.Done():
		s.Fail("no event received from Kafka")
	}
}
