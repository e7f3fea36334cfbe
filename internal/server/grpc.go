package server

import (
	"google.golang.org/grpc"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// NewGRPCServer creates a gRPC server with standard interceptors,
// registers the health service and reflection, and returns the server
// ready to serve.
func NewGRPCServer(prizeServer *PrizeServer) *grpc.Server {
	srv := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			RecoveryInterceptor,
			LoggingInterceptor,
		),
	)

	healthpb.RegisterHealthServer(srv, prizeServer.health)
	reflection.Register(srv)

	return srv
}
