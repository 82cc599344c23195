package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/grpc-ecosystem/grpc-gateway/v2/runtime"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// gateway serves the JSON routes by calling a CompanyServiceServer in process.
type gateway struct {
	mux    *runtime.ServeMux
	server CompanyServiceServer
}

func newGatewayMux() *runtime.ServeMux {
	return runtime.NewServeMux(
		runtime.WithMarshalerOption(runtime.MIMEWildcard, &runtime.JSONPb{
			MarshalOptions: protojson.MarshalOptions{
				UseProtoNames:   true,
				EmitUnpopulated: true,
			},
			UnmarshalOptions: protojson.UnmarshalOptions{
				DiscardUnknown: true,
			},
		}),
	)
}

type route struct {
	method  string
	pattern string
	handler runtime.HandlerFunc
}

func registerGatewayRoutes(mux *runtime.ServeMux, srv CompanyServiceServer) error {
	g := &gateway{mux: mux, server: srv}
	routes := []route{
		{http.MethodPost, "/v1/companies", g.withBody(srv.CreateCompany, nil)},
		{http.MethodGet, "/v1/companies/{id}", withID(g, srv.GetCompany)},
		{http.MethodPatch, "/v1/companies/{id}", g.withBody(srv.UpdateCompany, pathField("id", "id"))},
		{http.MethodDelete, "/v1/companies/{id}", withID(g, srv.DeleteCompany)},

		{http.MethodGet, "/v1/companies/{id}/users", withID(g, srv.ListCompanyUsers)},
		{http.MethodPost, "/v1/companies/{id}/users", g.withBody(srv.AddUser, pathField("id", "company"))},
		{http.MethodGet, "/v1/companies/{id}/vehicles", withID(g, srv.ListCompanyVehicles)},
		{http.MethodPost, "/v1/companies/{id}/vehicles", g.withBody(srv.AddVehicle, pathField("id", "company"))},
		{http.MethodGet, "/v1/companies/{id}/zone", withID(g, srv.GetCompanyZone)},
		{http.MethodGet, "/v1/companies/{id}/community_area", withID(g, srv.GetCompanyCommunityArea)},

		{http.MethodPost, "/v1/zones", g.withBody(srv.CreateZone, nil)},
		{http.MethodGet, "/v1/zones", g.listZones},
		{http.MethodDelete, "/v1/zones/{id}", withID(g, srv.DeleteZone)},

		{http.MethodGet, "/v1/schema/{table}", g.describe},
	}
	for _, rt := range routes {
		if err := mux.HandlePath(rt.method, rt.pattern, rt.handler); err != nil {
			return err
		}
	}
	return nil
}

// serve runs call and writes its result or error with the mux marshaler.
func (g *gateway) serve(w http.ResponseWriter, r *http.Request, call func(context.Context) (proto.Message, error)) {
	ctx := runtime.NewServerMetadataContext(r.Context(), runtime.ServerMetadata{})
	_, outbound := runtime.MarshalerForRequest(g.mux, r)
	resp, err := call(ctx)
	if err != nil {
		runtime.HTTPError(ctx, g.mux, outbound, w, r, err)
		return
	}
	runtime.ForwardResponseMessage(ctx, g.mux, outbound, w, r, resp)
}

func parseID(params map[string]string, key string) (int32, error) {
	id, err := strconv.ParseInt(params[key], 10, 32)
	if err != nil {
		return 0, status.Errorf(codes.InvalidArgument, "invalid %s %q", key, params[key])
	}
	return int32(id), nil
}

// pathField copies the path parameter param into the body key field.
func pathField(param, field string) func(*structpb.Struct, map[string]string) error {
	return func(body *structpb.Struct, params map[string]string) error {
		id, err := parseID(params, param)
		if err != nil {
			return err
		}
		body.Fields[field] = structpb.NewNumberValue(float64(id))
		return nil
	}
}

func withID[Resp proto.Message](g *gateway, call func(context.Context, *wrapperspb.Int32Value) (Resp, error)) runtime.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request, params map[string]string) {
		g.serve(w, r, func(ctx context.Context) (proto.Message, error) {
			id, err := parseID(params, "id")
			if err != nil {
				return nil, err
			}
			return call(ctx, wrapperspb.Int32(id))
		})
	}
}

func (g *gateway) withBody(
	call func(context.Context, *structpb.Struct) (*structpb.Struct, error),
	fill func(*structpb.Struct, map[string]string) error,
) runtime.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request, params map[string]string) {
		g.serve(w, r, func(ctx context.Context) (proto.Message, error) {
			body, err := g.decodeBody(r)
			if err != nil {
				return nil, err
			}
			if fill != nil {
				if err := fill(body, params); err != nil {
					return nil, err
				}
			}
			return call(ctx, body)
		})
	}
}

func (g *gateway) decodeBody(r *http.Request) (*structpb.Struct, error) {
	inbound, _ := runtime.MarshalerForRequest(g.mux, r)
	body := &structpb.Struct{}
	if err := inbound.NewDecoder(r.Body).Decode(body); err != nil && !errors.Is(err, io.EOF) {
		return nil, status.Errorf(codes.InvalidArgument, "malformed request body: %v", err)
	}
	if body.Fields == nil {
		body.Fields = map[string]*structpb.Value{}
	}
	return body, nil
}

func (g *gateway) listZones(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	g.serve(w, r, func(ctx context.Context) (proto.Message, error) {
		filter := &structpb.Struct{Fields: map[string]*structpb.Value{}}
		if raw := r.URL.Query().Get("community"); raw != "" {
			community, err := strconv.ParseBool(raw)
			if err != nil {
				return nil, status.Errorf(codes.InvalidArgument, "invalid community %q", raw)
			}
			filter.Fields["is_community"] = structpb.NewBoolValue(community)
		}
		return g.server.ListZones(ctx, filter)
	})
}

func (g *gateway) describe(w http.ResponseWriter, r *http.Request, params map[string]string) {
	g.serve(w, r, func(ctx context.Context) (proto.Message, error) {
		return g.server.DescribeEntity(ctx, wrapperspb.String(params["table"]))
	})
}
