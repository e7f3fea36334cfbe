// Package server exposes the prize store over HTTP (JSON API, server-sent
// events, Prometheus metrics) and a gRPC health endpoint.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/time/rate"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/alfredjeanlab/nobel/internal/auth"
	"github.com/alfredjeanlab/nobel/internal/events"
	"github.com/alfredjeanlab/nobel/internal/journal"
	"github.com/alfredjeanlab/nobel/internal/metrics"
	"github.com/alfredjeanlab/nobel/internal/model"
	"github.com/alfredjeanlab/nobel/internal/ratelimit"
	"github.com/alfredjeanlab/nobel/internal/store"
)

// Version is reported by GET /.
const Version = "3.0.0"

// HealthService is the gRPC health service name reported alongside the
// overall ("") status.
const HealthService = "nobel.Prizes"

// Options configures a PrizeServer. Zero fields get defaults: no-op
// publisher and journal, the built-in credentials, default rate limits and
// a fresh metrics registry.
type Options struct {
	Publisher   events.Publisher
	Journal     journal.Journal
	Credentials *auth.Credentials
	Limiter     *ratelimit.Limiter
	Metrics     *metrics.Metrics
	Logger      *slog.Logger

	// OnMutation, when set, is called after every successful mutation
	// (e.g. to trigger an export).
	OnMutation func()
}

// PrizeServer serves the prize API.
type PrizeServer struct {
	store       store.Store
	publisher   events.Publisher
	journal     journal.Journal
	credentials *auth.Credentials
	policy      *auth.Policy
	limiter     *ratelimit.Limiter
	metrics     *metrics.Metrics
	logger      *slog.Logger
	onMutation  func()

	// rejectLog throttles the rate-limit warning to one line per interval.
	rejectLog rate.Sometimes

	sseHub *sseHub
	health *health.Server
}

// NewPrizeServer returns a PrizeServer backed by the given store.
func NewPrizeServer(s store.Store, opts Options) (*PrizeServer, error) {
	policy, err := auth.NewPolicy()
	if err != nil {
		return nil, err
	}
	if opts.Publisher == nil {
		opts.Publisher = &events.NoopPublisher{}
	}
	if opts.Journal == nil {
		opts.Journal = journal.NoopJournal{}
	}
	if opts.Credentials == nil {
		opts.Credentials = auth.DefaultCredentials()
	}
	if opts.Limiter == nil {
		opts.Limiter, err = ratelimit.New(ratelimit.DefaultTiers(), ratelimit.DefaultMaxKeys)
		if err != nil {
			return nil, err
		}
	}
	if opts.Metrics == nil {
		opts.Metrics = metrics.New()
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	srv := &PrizeServer{
		store:       s,
		publisher:   opts.Publisher,
		journal:     opts.Journal,
		credentials: opts.Credentials,
		policy:      policy,
		limiter:     opts.Limiter,
		metrics:     opts.Metrics,
		logger:      opts.Logger,
		onMutation:  opts.OnMutation,
		rejectLog:   rate.Sometimes{Interval: time.Second},
		sseHub:      newSSEHub(),
		health:      health.NewServer(),
	}
	srv.health.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	srv.health.SetServingStatus(HealthService, healthpb.HealthCheckResponse_SERVING)
	srv.refreshSizeGauge(context.Background())
	return srv, nil
}

// Shutdown marks the server as not serving on the gRPC health endpoint and
// disconnects SSE clients.
func (s *PrizeServer) Shutdown() {
	s.health.Shutdown()
	s.sseHub.close()
}

// recordAndPublish journals an event, publishes it to NATS and fans it out
// to SSE clients. All three are best-effort; failures are logged but do not
// fail the request.
func (s *PrizeServer) recordAndPublish(ctx context.Context, topic, year, category, actor string, event any) {
	payload, err := json.Marshal(event)
	if err != nil {
		s.logger.Warn("failed to marshal event", "topic", topic, "year", year, "category", category, "error", err)
		return
	}
	if err := s.journal.Record(ctx, &model.Event{
		Topic:    topic,
		Year:     year,
		Category: category,
		Actor:    actor,
		Payload:  payload,
	}); err != nil {
		s.logger.Warn("failed to record event", "topic", topic, "year", year, "category", category, "error", err)
	}
	if err := s.publisher.Publish(ctx, topic, event); err != nil {
		s.logger.Warn("failed to publish event", "topic", topic, "year", year, "category", category, "error", err)
	}
	s.sseHub.broadcast(topic, payload)

	s.refreshSizeGauge(ctx)
	if s.onMutation != nil {
		s.onMutation()
	}
}

func (s *PrizeServer) refreshSizeGauge(ctx context.Context) {
	n, err := s.store.Count(ctx)
	if err != nil {
		s.logger.Warn("failed to count prizes", "error", err)
		return
	}
	s.metrics.SetPrizes(n)
}

// status builds the GET / body.
func (s *PrizeServer) status(ctx context.Context) (*model.Status, error) {
	n, err := s.store.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count prizes: %w", err)
	}
	return &model.Status{
		Status:          "active",
		Version:         Version,
		TotalPrizes:     n,
		SecurityEnabled: true,
		Message:         "Welcome to the Nobel Prize API. POST, PUT and DELETE require HTTP Basic credentials.",
	}, nil
}

// securityInfo builds the GET /security/info body.
func (s *PrizeServer) securityInfo() *model.SecurityInfo {
	limits := make(map[string]string)
	for name, tier := range s.limiter.Tiers() {
		limits[name] = tier.String()
	}
	return &model.SecurityInfo{
		Authentication: "HTTP Basic Authentication",
		RateLimits:     limits,
		ProtectedEndpoints: map[string][]string{
			"POST":   {"/prizes"},
			"PUT":    {"/prizes/{year}/{category}"},
			"DELETE": {"/prizes/{year}/{category}"},
		},
		AdminOnly: []string{"DELETE /prizes/{year}/{category}"},
		Message:   "POST, PUT and DELETE require authentication. DELETE requires the admin role.",
	}
}
