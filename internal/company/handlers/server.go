// Package handlers provides gRPC and HTTP server implementations for
// serving the CompanyService, bridging the transport layer and business logic,
// translating between protobuf well-known types and domain models.
package handlers

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gartstein/fleet/internal/company/auth"
	"github.com/gartstein/fleet/internal/company/metrics"
	"go.uber.org/zap"
	"google.golang.org/grpc"
)

// Server holds references to both a gRPC server and an HTTP server.
type Server struct {
	grpcServer   *grpc.Server
	httpServer   *http.Server
	logger       *zap.Logger
	grpcEndpoint string
	httpEndpoint string
}

// NewServer constructs a Server with separate endpoints for gRPC and HTTP.
func NewServer(
	grpcPort int,
	httpPort int,
	logger *zap.Logger,
	grpcOpts ...grpc.ServerOption,
) *Server {
	return &Server{
		grpcServer:   grpc.NewServer(grpcOpts...),
		httpServer:   &http.Server{ReadHeaderTimeout: 10 * time.Second},
		logger:       logger.Named("server"),
		grpcEndpoint: fmt.Sprintf(":%d", grpcPort),
		httpEndpoint: fmt.Sprintf(":%d", httpPort),
	}
}

// RegisterGRPCHandler registers the gRPC handler for the CompanyService.
func (s *Server) RegisterGRPCHandler(h CompanyServiceServer) {
	RegisterCompanyServiceServer(s.grpcServer, h)
}

// RegisterHTTPGateway sets up the JSON gateway for h, protected by JWT auth on
// mutating routes. When m is non-nil, requests are measured and /metrics is served.
func (s *Server) RegisterHTTPGateway(h CompanyServiceServer, jwtSecret string, m *metrics.Metrics) error {
	handler, err := NewGatewayHandler(h, jwtSecret, m)
	if err != nil {
		return err
	}
	s.httpServer.Handler = handler
	s.httpServer.Addr = s.httpEndpoint
	return nil
}

// NewGatewayHandler builds the HTTP handler serving the JSON routes of h.
func NewGatewayHandler(h CompanyServiceServer, jwtSecret string, m *metrics.Metrics) (http.Handler, error) {
	mux := newGatewayMux()
	if err := registerGatewayRoutes(mux, h); err != nil {
		return nil, fmt.Errorf("failed to register gateway routes: %w", err)
	}

	var handler http.Handler = auth.HTTPMiddleware(mux, jwtSecret)
	if m != nil {
		err := mux.HandlePath(http.MethodGet, "/metrics", func(w http.ResponseWriter, r *http.Request, _ map[string]string) {
			m.Handler().ServeHTTP(w, r)
		})
		if err != nil {
			return nil, fmt.Errorf("failed to register metrics route: %w", err)
		}
		handler = m.HTTPMiddleware(handler)
	}
	return handler, nil
}

// Start runs the gRPC and HTTP servers concurrently, returning on the first error.
func (s *Server) Start() error {
	var wg sync.WaitGroup
	wg.Add(2)
	errChan := make(chan error, 2)

	go func() {
		defer wg.Done()
		s.logger.Info("Starting gRPC server", zap.String("endpoint", s.grpcEndpoint))
		lis, err := net.Listen("tcp", s.grpcEndpoint)
		if err != nil {
			errChan <- fmt.Errorf("gRPC listen error: %w", err)
			return
		}
		if err := s.grpcServer.Serve(lis); err != nil {
			errChan <- fmt.Errorf("gRPC serve error: %w", err)
		}
	}()

	go func() {
		defer wg.Done()
		if s.httpServer.Handler == nil {
			return
		}
		s.logger.Info("Starting HTTP server", zap.String("endpoint", s.httpEndpoint))
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("HTTP serve error: %w", err)
		}
	}()

	go func() {
		wg.Wait()
		close(errChan)
	}()

	for err := range errChan {
		if err != nil {
			return err
		}
	}
	return nil
}

// Stop gracefully shuts down both gRPC and HTTP servers.
func (s *Server) Stop() {
	s.logger.Info("Shutting down servers...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	s.grpcServer.GracefulStop()
	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.logger.Error("HTTP server shutdown error", zap.Error(err))
	}

	s.logger.Info("Servers stopped")
}
