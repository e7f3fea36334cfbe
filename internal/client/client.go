// Package client provides a transport-agnostic interface for the Nobel prize
// service and an HTTP/JSON implementation that talks to its REST API.
package client

import (
	"context"

	"github.com/alfredjeanlab/nobel/internal/model"
)

// PrizesClient is the interface the nobel CLI commands use to talk to the
// server. It is implemented by HTTPClient.
type PrizesClient interface {
	// Service info
	Status(ctx context.Context) (*model.Status, error)
	SecurityInfo(ctx context.Context) (*model.SecurityInfo, error)
	Health(ctx context.Context) (string, error)

	// Queries
	ListPrizes(ctx context.Context) ([]*model.Prize, error)
	PrizesByYear(ctx context.Context, year string) ([]*model.Prize, error)
	PrizesByCategory(ctx context.Context, category string) ([]*model.Prize, error)
	Motivation(ctx context.Context, year, category string) (string, error)
	Laureates(ctx context.Context, year, category string) ([]model.Laureate, error)
	SearchLaureate(ctx context.Context, firstname, surname string) ([]*model.Prize, error)

	// Mutations
	CreatePrize(ctx context.Context, prize *model.Prize) (*model.Prize, error)
	UpdatePrize(ctx context.Context, year, category string, update *model.PrizeUpdate) (*model.Prize, error)
	DeletePrize(ctx context.Context, year, category string) error

	// Journal
	GetEvents(ctx context.Context, year, category string) ([]*model.Event, error)

	// Lifecycle
	Close() error
}

var _ PrizesClient = (*HTTPClient)(nil)
