package server

import (
	"net"

	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/windfall/vocal_service/internal/config"
)

// GRPCServiceName is the service name reported by the health endpoint.
const GRPCServiceName = "vocal_service"

// GRPCServer serves the standard gRPC health protocol.
type GRPCServer struct {
	server *grpc.Server
	health *health.Server
	addr   string
	log    zerolog.Logger
}

// NewGRPCServer creates a new gRPC server.
func NewGRPCServer(cfg *config.Config, log zerolog.Logger) *GRPCServer {
	server := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			UnaryLoggingInterceptor(log),
			UnaryRecoveryInterceptor(log),
		),
		grpc.ChainStreamInterceptor(
			StreamLoggingInterceptor(log),
			StreamRecoveryInterceptor(log),
		),
	)

	healthServer := health.NewServer()
	healthpb.RegisterHealthServer(server, healthServer)

	// Enable reflection for development
	if cfg.IsDevelopment() {
		reflection.Register(server)
	}

	s := &GRPCServer{
		server: server,
		health: healthServer,
		addr:   cfg.GRPCAddress(),
		log:    log,
	}
	s.SetServing(false)
	return s
}

// SetServing flips the health status of the whole server and of GRPCServiceName.
func (s *GRPCServer) SetServing(serving bool) {
	st := healthpb.HealthCheckResponse_NOT_SERVING
	if serving {
		st = healthpb.HealthCheckResponse_SERVING
	}
	s.health.SetServingStatus("", st)
	s.health.SetServingStatus(GRPCServiceName, st)
}

// Start starts the gRPC server.
func (s *GRPCServer) Start() error {
	lis, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	return s.Serve(lis)
}

// Serve accepts connections on lis until the server stops.
func (s *GRPCServer) Serve(lis net.Listener) error {
	s.log.Info().Str("addr", lis.Addr().String()).Msg("Starting gRPC server")
	return s.server.Serve(lis)
}

// GracefulStop gracefully stops the gRPC server.
func (s *GRPCServer) GracefulStop() {
	s.log.Info().Msg("Shutting down gRPC server")
	s.health.Shutdown()
	s.server.GracefulStop()
}
