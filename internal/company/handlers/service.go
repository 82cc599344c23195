package handlers

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "fleet.v1.CompanyService"

// FullMethod returns the gRPC method path for a CompanyService method.
func FullMethod(method string) string {
	return "/" + ServiceName + "/" + method
}

// CompanyServiceServer is the server API for the CompanyService.
// Entities travel as google.protobuf.Struct objects keyed by column name;
// ids travel as Int32Value.
type CompanyServiceServer interface {
	CreateCompany(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetCompany(context.Context, *wrapperspb.Int32Value) (*structpb.Struct, error)
	UpdateCompany(context.Context, *structpb.Struct) (*structpb.Struct, error)
	DeleteCompany(context.Context, *wrapperspb.Int32Value) (*emptypb.Empty, error)

	ListCompanyUsers(context.Context, *wrapperspb.Int32Value) (*structpb.ListValue, error)
	ListCompanyVehicles(context.Context, *wrapperspb.Int32Value) (*structpb.ListValue, error)
	GetCompanyZone(context.Context, *wrapperspb.Int32Value) (*structpb.Struct, error)
	GetCompanyCommunityArea(context.Context, *wrapperspb.Int32Value) (*structpb.Struct, error)
	AddUser(context.Context, *structpb.Struct) (*structpb.Struct, error)
	AddVehicle(context.Context, *structpb.Struct) (*structpb.Struct, error)

	CreateZone(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListZones(context.Context, *structpb.Struct) (*structpb.ListValue, error)
	DeleteZone(context.Context, *wrapperspb.Int32Value) (*emptypb.Empty, error)

	DescribeEntity(context.Context, *wrapperspb.StringValue) (*structpb.Struct, error)
}

// unary builds a method descriptor that decodes the request, runs the
// server interceptor chain, and dispatches to call.
func unary[Req any, PReq interface {
	*Req
	proto.Message
}, Resp proto.Message](
	name string,
	call func(CompanyServiceServer, context.Context, PReq) (Resp, error),
) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
			in := PReq(new(Req))
			if err := dec(in); err != nil {
				return nil, err
			}
			s := srv.(CompanyServiceServer)
			if interceptor == nil {
				return call(s, ctx, in)
			}
			info := &grpc.UnaryServerInfo{
				Server:     srv,
				FullMethod: FullMethod(name),
			}
			handler := func(ctx context.Context, req interface{}) (interface{}, error) {
				return call(s, ctx, req.(PReq))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

// CompanyServiceDesc is the grpc.ServiceDesc for the CompanyService.
var CompanyServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*CompanyServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("CreateCompany", CompanyServiceServer.CreateCompany),
		unary("GetCompany", CompanyServiceServer.GetCompany),
		unary("UpdateCompany", CompanyServiceServer.UpdateCompany),
		unary("DeleteCompany", CompanyServiceServer.DeleteCompany),
		unary("ListCompanyUsers", CompanyServiceServer.ListCompanyUsers),
		unary("ListCompanyVehicles", CompanyServiceServer.ListCompanyVehicles),
		unary("GetCompanyZone", CompanyServiceServer.GetCompanyZone),
		unary("GetCompanyCommunityArea", CompanyServiceServer.GetCompanyCommunityArea),
		unary("AddUser", CompanyServiceServer.AddUser),
		unary("AddVehicle", CompanyServiceServer.AddVehicle),
		unary("CreateZone", CompanyServiceServer.CreateZone),
		unary("ListZones", CompanyServiceServer.ListZones),
		unary("DeleteZone", CompanyServiceServer.DeleteZone),
		unary("DescribeEntity", CompanyServiceServer.DescribeEntity),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "fleet/v1/company.proto",
}

// RegisterCompanyServiceServer registers srv on s.
func RegisterCompanyServiceServer(s grpc.ServiceRegistrar, srv CompanyServiceServer) {
	s.RegisterService(&CompanyServiceDesc, srv)
}

// CompanyServiceClient is the client API for the CompanyService.
type CompanyServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewCompanyServiceClient returns a client bound to cc.
func NewCompanyServiceClient(cc grpc.ClientConnInterface) *CompanyServiceClient {
	return &CompanyServiceClient{cc: cc}
}

func invoke[Resp any, PResp interface {
	*Resp
	proto.Message
}](ctx context.Context, cc grpc.ClientConnInterface, method string, in proto.Message, opts ...grpc.CallOption) (PResp, error) {
	out := PResp(new(Resp))
	if err := cc.Invoke(ctx, FullMethod(method), in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *CompanyServiceClient) CreateCompany(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return invoke[structpb.Struct](ctx, c.cc, "CreateCompany", in, opts...)
}

func (c *CompanyServiceClient) GetCompany(ctx context.Context, in *wrapperspb.Int32Value, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return invoke[structpb.Struct](ctx, c.cc, "GetCompany", in, opts...)
}

func (c *CompanyServiceClient) UpdateCompany(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return invoke[structpb.Struct](ctx, c.cc, "UpdateCompany", in, opts...)
}

func (c *CompanyServiceClient) DeleteCompany(ctx context.Context, in *wrapperspb.Int32Value, opts ...grpc.CallOption) (*emptypb.Empty, error) {
	return invoke[emptypb.Empty](ctx, c.cc, "DeleteCompany", in, opts...)
}

func (c *CompanyServiceClient) ListCompanyUsers(ctx context.Context, in *wrapperspb.Int32Value, opts ...grpc.CallOption) (*structpb.ListValue, error) {
	return invoke[structpb.ListValue](ctx, c.cc, "ListCompanyUsers", in, opts...)
}

func (c *CompanyServiceClient) ListCompanyVehicles(ctx context.Context, in *wrapperspb.Int32Value, opts ...grpc.CallOption) (*structpb.ListValue, error) {
	return invoke[structpb.ListValue](ctx, c.cc, "ListCompanyVehicles", in, opts...)
}

func (c *CompanyServiceClient) GetCompanyZone(ctx context.Context, in *wrapperspb.Int32Value, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return invoke[structpb.Struct](ctx, c.cc, "GetCompanyZone", in, opts...)
}

func (c *CompanyServiceClient) GetCompanyCommunityArea(ctx context.Context, in *wrapperspb.Int32Value, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return invoke[structpb.Struct](ctx, c.cc, "GetCompanyCommunityArea", in, opts...)
}

func (c *CompanyServiceClient) AddUser(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return invoke[structpb.Struct](ctx, c.cc, "AddUser", in, opts...)
}

func (c *CompanyServiceClient) AddVehicle(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return invoke[structpb.Struct](ctx, c.cc, "AddVehicle", in, opts...)
}

func (c *CompanyServiceClient) CreateZone(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return invoke[structpb.Struct](ctx, c.cc, "CreateZone", in, opts...)
}

func (c *CompanyServiceClient) ListZones(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.ListValue, error) {
	return invoke[structpb.ListValue](ctx, c.cc, "ListZones", in, opts...)
}

func (c *CompanyServiceClient) DeleteZone(ctx context.Context, in *wrapperspb.Int32Value, opts ...grpc.CallOption) (*emptypb.Empty, error) {
	return invoke[emptypb.Empty](ctx, c.cc, "DeleteZone", in, opts...)
}

func (c *CompanyServiceClient) DescribeEntity(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return invoke[structpb.Struct](ctx, c.cc, "DescribeEntity", in, opts...)
}
