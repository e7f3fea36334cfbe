package sync

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/alfredjeanlab/nobel/internal/model"
	"github.com/alfredjeanlab/nobel/internal/store"
)

// header is the first JSONL record written by ExportJSONL.
type header struct {
	Version    string    `json:"version"`
	Type       string    `json:"type"`
	Timestamp  time.Time `json:"timestamp"`
	PrizeCount int       `json:"prize_count"`
}

// record wraps a single JSONL line with a type discriminator.
type record struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// ExportJSONL writes every prize in the store as JSONL to w: a header line
// followed by one prize per line, ordered by year then category.
func ExportJSONL(ctx context.Context, s store.Store, w io.Writer) error {
	prizes, err := s.ListPrizes(ctx)
	if err != nil {
		return fmt.Errorf("list prizes: %w", err)
	}

	sorted := make([]*model.Prize, len(prizes))
	copy(sorted, prizes)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Year != sorted[j].Year {
			return sorted[i].Year < sorted[j].Year
		}
		return strings.ToLower(sorted[i].Category) < strings.ToLower(sorted[j].Category)
	})

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)

	if err := enc.Encode(header{
		Version:    "1",
		Type:       "header",
		Timestamp:  time.Now().UTC(),
		PrizeCount: len(sorted),
	}); err != nil {
		return fmt.Errorf("encode header: %w", err)
	}

	for _, p := range sorted {
		if err := enc.Encode(record{Type: "prize", Data: p}); err != nil {
			return fmt.Errorf("encode prize %s/%s: %w", p.Year, p.Category, err)
		}
	}

	return nil
}
