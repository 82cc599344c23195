package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/gartstein/fleet/internal/company/descriptor"
	e "github.com/gartstein/fleet/internal/company/errors"
	"github.com/gartstein/fleet/internal/company/models"
	"go.uber.org/zap"
	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/protoadapt"
	"google.golang.org/protobuf/types/known/structpb"
)

// errorDomain is reported in ErrorInfo details.
const errorDomain = "fleet.company"

// Reasons reported in ErrorInfo details.
const (
	ReasonNotFound            = "NOT_FOUND"
	ReasonInvalidInput        = "INVALID_INPUT"
	ReasonPrimaryKeyViolation = "PRIMARY_KEY_VIOLATION"
	ReasonUniqueViolation     = "UNIQUE_VIOLATION"
	ReasonForeignKeyViolation = "FOREIGN_KEY_VIOLATION"
)

// fieldError wraps a malformed request field as invalid input.
func fieldError(key, reason string) error {
	return &e.ValidationError{Violations: []e.FieldViolation{{Field: key, Reason: reason}}}
}

func lookup(s *structpb.Struct, key string) (*structpb.Value, bool) {
	v, ok := s.GetFields()[key]
	if !ok {
		return nil, false
	}
	if _, null := v.GetKind().(*structpb.Value_NullValue); null {
		return nil, false
	}
	return v, true
}

func numberField(s *structpb.Struct, key string) (float64, bool, error) {
	v, ok := lookup(s, key)
	if !ok {
		return 0, false, nil
	}
	n, ok := v.GetKind().(*structpb.Value_NumberValue)
	if !ok {
		return 0, true, fieldError(key, "must be a number")
	}
	return n.NumberValue, true, nil
}

func int32Field(s *structpb.Struct, key string) (int32, bool, error) {
	f, ok, err := numberField(s, key)
	if !ok || err != nil {
		return 0, ok, err
	}
	if f != math.Trunc(f) || f < math.MinInt32 || f > math.MaxInt32 {
		return 0, true, fieldError(key, "must be a 32-bit integer")
	}
	return int32(f), true, nil
}

func float32Field(s *structpb.Struct, key string) (float32, bool, error) {
	f, ok, err := numberField(s, key)
	if !ok || err != nil {
		return 0, ok, err
	}
	if math.Abs(f) > math.MaxFloat32 {
		return 0, true, fieldError(key, "out of range")
	}
	return float32(f), true, nil
}

func stringField(s *structpb.Struct, key string) (string, bool, error) {
	v, ok := lookup(s, key)
	if !ok {
		return "", false, nil
	}
	str, ok := v.GetKind().(*structpb.Value_StringValue)
	if !ok {
		return "", true, fieldError(key, "must be a string")
	}
	return str.StringValue, true, nil
}

func boolField(s *structpb.Struct, key string) (bool, bool, error) {
	v, ok := lookup(s, key)
	if !ok {
		return false, false, nil
	}
	b, ok := v.GetKind().(*structpb.Value_BoolValue)
	if !ok {
		return false, true, fieldError(key, "must be a boolean")
	}
	return b.BoolValue, true, nil
}

// widen converts a float32 to the float64 with the same shortest decimal form,
// so 41.8 is not rendered as 41.79999923706055.
func widen(f float32) float64 {
	w, err := strconv.ParseFloat(strconv.FormatFloat(float64(f), 'f', -1, 32), 64)
	if err != nil {
		return float64(f)
	}
	return w
}

// structToCompany converts a request object into a Company model.
func structToCompany(s *structpb.Struct) (*models.Company, error) {
	if s == nil {
		return nil, fmt.Errorf("%w: company data required", e.ErrInvalidInput)
	}
	var (
		c   models.Company
		err error
	)
	if c.ID, _, err = int32Field(s, "id"); err != nil {
		return nil, err
	}
	if c.Latitude, _, err = float32Field(s, "latitude"); err != nil {
		return nil, err
	}
	if c.Longitude, _, err = float32Field(s, "longitude"); err != nil {
		return nil, err
	}
	if c.DisplayName, _, err = stringField(s, "display_name"); err != nil {
		return nil, err
	}
	if c.Email, _, err = stringField(s, "email"); err != nil {
		return nil, err
	}
	if c.ZoneID, _, err = int32Field(s, "zone"); err != nil {
		return nil, err
	}
	if c.CommunityAreaID, _, err = int32Field(s, "community_area"); err != nil {
		return nil, err
	}
	return &c, nil
}

// structToUpdate converts a request object into a partial CompanyUpdate.
// Only the keys present in s are updated.
func structToUpdate(s *structpb.Struct) (*models.CompanyUpdate, error) {
	if s == nil {
		return nil, fmt.Errorf("%w: update data required", e.ErrInvalidInput)
	}
	id, ok, err := int32Field(s, "id")
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fieldError("id", "is required")
	}
	u := &models.CompanyUpdate{ID: id}

	if v, ok, err := float32Field(s, "latitude"); err != nil {
		return nil, err
	} else if ok {
		u.Latitude = &v
	}
	if v, ok, err := float32Field(s, "longitude"); err != nil {
		return nil, err
	} else if ok {
		u.Longitude = &v
	}
	if v, ok, err := stringField(s, "display_name"); err != nil {
		return nil, err
	} else if ok {
		u.DisplayName = &v
	}
	if v, ok, err := stringField(s, "email"); err != nil {
		return nil, err
	} else if ok {
		u.Email = &v
	}
	if v, ok, err := int32Field(s, "zone"); err != nil {
		return nil, err
	} else if ok {
		u.ZoneID = &v
	}
	if v, ok, err := int32Field(s, "community_area"); err != nil {
		return nil, err
	} else if ok {
		u.CommunityAreaID = &v
	}
	return u, nil
}

func structToUser(s *structpb.Struct) (*models.User, error) {
	if s == nil {
		return nil, fmt.Errorf("%w: user data required", e.ErrInvalidInput)
	}
	var (
		u   models.User
		err error
	)
	if u.ID, _, err = int32Field(s, "id"); err != nil {
		return nil, err
	}
	if u.Name, _, err = stringField(s, "name"); err != nil {
		return nil, err
	}
	if u.Email, _, err = stringField(s, "email"); err != nil {
		return nil, err
	}
	if id, ok, err := int32Field(s, "company"); err != nil {
		return nil, err
	} else if ok {
		u.CompanyID = &id
	}
	return &u, nil
}

func structToVehicle(s *structpb.Struct) (*models.Vehicle, error) {
	if s == nil {
		return nil, fmt.Errorf("%w: vehicle data required", e.ErrInvalidInput)
	}
	var (
		v   models.Vehicle
		err error
	)
	if v.ID, _, err = int32Field(s, "id"); err != nil {
		return nil, err
	}
	if v.LicensePlate, _, err = stringField(s, "license_plate"); err != nil {
		return nil, err
	}
	for key, dst := range map[string]*int32{
		"passengers":  &v.Passengers,
		"wheelchairs": &v.Wheelchairs,
		"bikes":       &v.Bikes,
		"luggage":     &v.Luggage,
		"company":     &v.CompanyID,
	} {
		if *dst, _, err = int32Field(s, key); err != nil {
			return nil, err
		}
	}
	return &v, nil
}

func structToZone(s *structpb.Struct) (*models.Zone, error) {
	if s == nil {
		return nil, fmt.Errorf("%w: zone data required", e.ErrInvalidInput)
	}
	var (
		z   models.Zone
		err error
	)
	if z.ID, _, err = int32Field(s, "id"); err != nil {
		return nil, err
	}
	if z.Name, _, err = stringField(s, "name"); err != nil {
		return nil, err
	}
	if z.IsCommunity, _, err = boolField(s, "is_community"); err != nil {
		return nil, err
	}
	return &z, nil
}

func structToZoneFilter(s *structpb.Struct) (models.ZoneFilter, error) {
	var filter models.ZoneFilter
	v, ok, err := boolField(s, "is_community")
	if err != nil {
		return filter, err
	}
	if ok {
		filter.IsCommunity = &v
	}
	return filter, nil
}

func companyToStruct(c *models.Company) *structpb.Struct {
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		"id":             structpb.NewNumberValue(float64(c.ID)),
		"latitude":       structpb.NewNumberValue(widen(c.Latitude)),
		"longitude":      structpb.NewNumberValue(widen(c.Longitude)),
		"display_name":   structpb.NewStringValue(c.DisplayName),
		"email":          structpb.NewStringValue(c.Email),
		"zone":           structpb.NewNumberValue(float64(c.ZoneID)),
		"community_area": structpb.NewNumberValue(float64(c.CommunityAreaID)),
	}}
}

func userToStruct(u *models.User) *structpb.Struct {
	company := structpb.NewNullValue()
	if u.CompanyID != nil {
		company = structpb.NewNumberValue(float64(*u.CompanyID))
	}
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		"id":      structpb.NewNumberValue(float64(u.ID)),
		"name":    structpb.NewStringValue(u.Name),
		"email":   structpb.NewStringValue(u.Email),
		"company": company,
	}}
}

func vehicleToStruct(v *models.Vehicle) *structpb.Struct {
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		"id":            structpb.NewNumberValue(float64(v.ID)),
		"license_plate": structpb.NewStringValue(v.LicensePlate),
		"passengers":    structpb.NewNumberValue(float64(v.Passengers)),
		"wheelchairs":   structpb.NewNumberValue(float64(v.Wheelchairs)),
		"bikes":         structpb.NewNumberValue(float64(v.Bikes)),
		"luggage":       structpb.NewNumberValue(float64(v.Luggage)),
		"company":       structpb.NewNumberValue(float64(v.CompanyID)),
	}}
}

func zoneToStruct(z *models.Zone) *structpb.Struct {
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		"id":           structpb.NewNumberValue(float64(z.ID)),
		"name":         structpb.NewStringValue(z.Name),
		"is_community": structpb.NewBoolValue(z.IsCommunity),
	}}
}

func listOf[T any](items []T, conv func(*T) *structpb.Struct) *structpb.ListValue {
	list := &structpb.ListValue{Values: make([]*structpb.Value, 0, len(items))}
	for i := range items {
		list.Values = append(list.Values, structpb.NewStructValue(conv(&items[i])))
	}
	return list
}

// entityToStruct renders a descriptor through its JSON form.
func entityToStruct(ent *descriptor.Entity) (*structpb.Struct, error) {
	raw, err := json.Marshal(ent)
	if err != nil {
		return nil, err
	}
	out := &structpb.Struct{}
	if err := protojson.Unmarshal(raw, out); err != nil {
		return nil, err
	}
	return out, nil
}

// mapServiceError maps domain or repository errors to gRPC statuses carrying
// an ErrorInfo detail and, for rejected input, a BadRequest detail.
func (h *CompanyHandler) mapServiceError(err error) error {
	var (
		code   codes.Code
		reason string
	)
	switch {
	case errors.Is(err, e.ErrNotFound):
		code, reason = codes.NotFound, ReasonNotFound
	case errors.Is(err, e.ErrPrimaryKeyViolation):
		code, reason = codes.AlreadyExists, ReasonPrimaryKeyViolation
	case errors.Is(err, e.ErrUniqueViolation):
		code, reason = codes.AlreadyExists, ReasonUniqueViolation
	case errors.Is(err, e.ErrForeignKeyViolation):
		code, reason = codes.FailedPrecondition, ReasonForeignKeyViolation
	case errors.Is(err, e.ErrInvalidInput):
		code, reason = codes.InvalidArgument, ReasonInvalidInput
	default:
		h.logger.Error("Internal server error", zap.Error(err))
		return status.Error(codes.Internal, "internal server error")
	}

	details := []protoadapt.MessageV1{&errdetails.ErrorInfo{Reason: reason, Domain: errorDomain}}
	var verr *e.ValidationError
	if errors.As(err, &verr) {
		br := &errdetails.BadRequest{}
		for _, v := range verr.Violations {
			br.FieldViolations = append(br.FieldViolations, &errdetails.BadRequest_FieldViolation{
				Field:       v.Field,
				Description: v.Reason,
			})
		}
		details = append(details, br)
	}

	st, derr := status.New(code, err.Error()).WithDetails(details...)
	if derr != nil {
		return status.Error(code, err.Error())
	}
	return st.Err()
}
