package interfaces

import (
	"context"

	"StryktipsSync/internal/model"
)

// ExpertProvider is the capability every expert source must implement.
// How a source fetches and parses its material (RSS, HTML, podcast show
// notes) stays inside the implementation; the consensus service only
// sees the resulting predictions.
type ExpertProvider interface {
	// Name returns the source name, matching the configured weight key.
	Name() string
	// FetchPredictions returns the source's latest picks, at most maxItems.
	FetchPredictions(ctx context.Context, maxItems int) ([]model.ExpertPrediction, error)
}
