package handlers

import (
	"context"

	"github.com/gartstein/fleet/internal/company/descriptor"
	"github.com/gartstein/fleet/internal/company/models"
	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// CompanyController defines the business logic interface
// that the gRPC/HTTP handlers will invoke.
type CompanyController interface {
	CreateCompany(ctx context.Context, company *models.Company) (*models.Company, error)
	GetCompany(ctx context.Context, id int32) (*models.Company, error)
	UpdateCompany(ctx context.Context, update *models.CompanyUpdate) (*models.Company, error)
	DeleteCompany(ctx context.Context, id int32) error

	ListCompanyUsers(ctx context.Context, id int32) ([]models.User, error)
	ListCompanyVehicles(ctx context.Context, id int32) ([]models.Vehicle, error)
	GetCompanyZone(ctx context.Context, id int32) (*models.Zone, error)
	GetCompanyCommunityArea(ctx context.Context, id int32) (*models.Zone, error)
	AddUser(ctx context.Context, user *models.User) (*models.User, error)
	AddVehicle(ctx context.Context, vehicle *models.Vehicle) (*models.Vehicle, error)

	CreateZone(ctx context.Context, zone *models.Zone) (*models.Zone, error)
	ListZones(ctx context.Context, filter models.ZoneFilter) ([]models.Zone, error)
	DeleteZone(ctx context.Context, id int32) error

	DescribeEntity(ctx context.Context, table string) (*descriptor.Entity, error)
}

// CompanyHandler provides gRPC methods for Company operations,
// mapping requests to a CompanyController interface.
type CompanyHandler struct {
	service CompanyController
	logger  *zap.Logger
}

var _ CompanyServiceServer = (*CompanyHandler)(nil)

// NewCompanyHandler constructs a new CompanyHandler with the given service and logger.
func NewCompanyHandler(service CompanyController, logger *zap.Logger) *CompanyHandler {
	return &CompanyHandler{
		service: service,
		logger:  logger.Named("grpc_handler"),
	}
}

func requireID(id *wrapperspb.Int32Value, what string) (int32, error) {
	if id.GetValue() <= 0 {
		return 0, status.Errorf(codes.InvalidArgument, "invalid %s ID", what)
	}
	return id.GetValue(), nil
}

// CreateCompany creates a new Company in the system.
func (h *CompanyHandler) CreateCompany(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	company, err := structToCompany(req)
	if err != nil {
		return nil, h.mapServiceError(err)
	}
	created, err := h.service.CreateCompany(ctx, company)
	if err != nil {
		h.logger.Debug("Create company failed", zap.Error(err))
		return nil, h.mapServiceError(err)
	}
	return companyToStruct(created), nil
}

// GetCompany fetches a Company by ID, returning an error if not found.
func (h *CompanyHandler) GetCompany(ctx context.Context, req *wrapperspb.Int32Value) (*structpb.Struct, error) {
	id, err := requireID(req, "company")
	if err != nil {
		return nil, err
	}
	company, err := h.service.GetCompany(ctx, id)
	if err != nil {
		return nil, h.mapServiceError(err)
	}
	return companyToStruct(company), nil
}

// UpdateCompany applies the fields present in the request to an existing Company.
func (h *CompanyHandler) UpdateCompany(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	update, err := structToUpdate(req)
	if err != nil {
		return nil, h.mapServiceError(err)
	}
	updated, err := h.service.UpdateCompany(ctx, update)
	if err != nil {
		return nil, h.mapServiceError(err)
	}
	return companyToStruct(updated), nil
}

// DeleteCompany removes a Company given its ID.
func (h *CompanyHandler) DeleteCompany(ctx context.Context, req *wrapperspb.Int32Value) (*emptypb.Empty, error) {
	id, err := requireID(req, "company")
	if err != nil {
		return nil, err
	}
	if err := h.service.DeleteCompany(ctx, id); err != nil {
		return nil, h.mapServiceError(err)
	}
	return &emptypb.Empty{}, nil
}

func (h *CompanyHandler) ListCompanyUsers(ctx context.Context, req *wrapperspb.Int32Value) (*structpb.ListValue, error) {
	id, err := requireID(req, "company")
	if err != nil {
		return nil, err
	}
	users, err := h.service.ListCompanyUsers(ctx, id)
	if err != nil {
		return nil, h.mapServiceError(err)
	}
	return listOf(users, userToStruct), nil
}

func (h *CompanyHandler) ListCompanyVehicles(ctx context.Context, req *wrapperspb.Int32Value) (*structpb.ListValue, error) {
	id, err := requireID(req, "company")
	if err != nil {
		return nil, err
	}
	vehicles, err := h.service.ListCompanyVehicles(ctx, id)
	if err != nil {
		return nil, h.mapServiceError(err)
	}
	return listOf(vehicles, vehicleToStruct), nil
}

func (h *CompanyHandler) GetCompanyZone(ctx context.Context, req *wrapperspb.Int32Value) (*structpb.Struct, error) {
	id, err := requireID(req, "company")
	if err != nil {
		return nil, err
	}
	zone, err := h.service.GetCompanyZone(ctx, id)
	if err != nil {
		return nil, h.mapServiceError(err)
	}
	return zoneToStruct(zone), nil
}

func (h *CompanyHandler) GetCompanyCommunityArea(ctx context.Context, req *wrapperspb.Int32Value) (*structpb.Struct, error) {
	id, err := requireID(req, "company")
	if err != nil {
		return nil, err
	}
	zone, err := h.service.GetCompanyCommunityArea(ctx, id)
	if err != nil {
		return nil, h.mapServiceError(err)
	}
	return zoneToStruct(zone), nil
}

// AddUser creates a user; a "company" key attaches it to a company.
func (h *CompanyHandler) AddUser(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	user, err := structToUser(req)
	if err != nil {
		return nil, h.mapServiceError(err)
	}
	created, err := h.service.AddUser(ctx, user)
	if err != nil {
		return nil, h.mapServiceError(err)
	}
	return userToStruct(created), nil
}

func (h *CompanyHandler) AddVehicle(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	vehicle, err := structToVehicle(req)
	if err != nil {
		return nil, h.mapServiceError(err)
	}
	created, err := h.service.AddVehicle(ctx, vehicle)
	if err != nil {
		return nil, h.mapServiceError(err)
	}
	return vehicleToStruct(created), nil
}

func (h *CompanyHandler) CreateZone(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	zone, err := structToZone(req)
	if err != nil {
		return nil, h.mapServiceError(err)
	}
	created, err := h.service.CreateZone(ctx, zone)
	if err != nil {
		return nil, h.mapServiceError(err)
	}
	return zoneToStruct(created), nil
}

// ListZones lists zones; {"is_community": bool} narrows the result.
func (h *CompanyHandler) ListZones(ctx context.Context, req *structpb.Struct) (*structpb.ListValue, error) {
	filter, err := structToZoneFilter(req)
	if err != nil {
		return nil, h.mapServiceError(err)
	}
	zones, err := h.service.ListZones(ctx, filter)
	if err != nil {
		return nil, h.mapServiceError(err)
	}
	return listOf(zones, zoneToStruct), nil
}

func (h *CompanyHandler) DeleteZone(ctx context.Context, req *wrapperspb.Int32Value) (*emptypb.Empty, error) {
	id, err := requireID(req, "zone")
	if err != nil {
		return nil, err
	}
	if err := h.service.DeleteZone(ctx, id); err != nil {
		return nil, h.mapServiceError(err)
	}
	return &emptypb.Empty{}, nil
}

// DescribeEntity returns the column and relation metadata of a table.
func (h *CompanyHandler) DescribeEntity(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error) {
	ent, err := h.service.DescribeEntity(ctx, req.GetValue())
	if err != nil {
		return nil, h.mapServiceError(err)
	}
	out, err := entityToStruct(ent)
	if err != nil {
		return nil, h.mapServiceError(err)
	}
	return out, nil
}
