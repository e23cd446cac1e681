package grpc_server

import (
	"net"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// Health service names, one per listener.
const (
	ServiceHTTPIngest = "iot.ingest.http"
	ServiceCoAPIngest = "iot.ingest.coap"
	ServiceWeb        = "iot.web"
)

// HealthServer reports the serving state of each listener over grpc.health.v1.
type HealthServer struct {
	srv    *grpc.Server
	health *health.Server
}

func NewHealthServer() *HealthServer {
	srv := grpc.NewServer()
	h := health.NewServer()
	healthpb.RegisterHealthServer(srv, h)
	reflection.Register(srv)

	for _, name := range []string{ServiceHTTPIngest, ServiceCoAPIngest, ServiceWeb} {
		h.SetServingStatus(name, healthpb.HealthCheckResponse_NOT_SERVING)
	}
	return &HealthServer{srv: srv, health: h}
}

func (s *HealthServer) SetServing(service string, serving bool) {
	status := healthpb.HealthCheckResponse_NOT_SERVING
	if serving {
		status = healthpb.HealthCheckResponse_SERVING
	}
	s.health.SetServingStatus(service, status)
}

func (s *HealthServer) Serve(lis net.Listener) error {
	return s.srv.Serve(lis)
}

// GracefulStop flips every service to NOT_SERVING before draining connections.
func (s *HealthServer) GracefulStop() {
	s.health.Shutdown()
	s.srv.GracefulStop()
}
