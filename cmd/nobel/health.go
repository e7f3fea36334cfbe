package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/alfredjeanlab/nobel/internal/server"
)

func defaultGRPCAddr() string {
	if s := os.Getenv("NOBEL_GRPC_TARGET"); s != "" {
		return s
	}
	return "localhost:9001"
}

var healthCmd = &cobra.Command{
	Use:     "health",
	Short:   "Check service health over the gRPC health protocol",
	GroupID: "system",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		addr, _ := cmd.Flags().GetString("grpc")
		service, _ := cmd.Flags().GetString("service")
		timeout, _ := cmd.Flags().GetDuration("timeout")

		conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
		if err != nil {
			return fmt.Errorf("connecting to %s: %w", addr, err)
		}
		defer conn.Close()

		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		resp, err := healthpb.NewHealthClient(conn).Check(ctx, &healthpb.HealthCheckRequest{Service: service})
		if err != nil {
			return fmt.Errorf("checking health: %w", err)
		}
		status := resp.GetStatus().String()

		if jsonOutput {
			if err := printJSON(map[string]string{"service": service, "status": status}); err != nil {
				return err
			}
		} else {
			fmt.Printf("Health: %s\n", status)
		}

		if resp.GetStatus() != healthpb.HealthCheckResponse_SERVING {
			return fmt.Errorf("unhealthy: %s", status)
		}
		return nil
	},
}

func init() {
	healthCmd.Flags().String("grpc", defaultGRPCAddr(), "gRPC health address")
	healthCmd.Flags().String("service", server.HealthService, "service name to check (empty for overall)")
	healthCmd.Flags().Duration("timeout", 5*time.Second, "request timeout")
}
