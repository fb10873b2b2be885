package adapter

import (
	"context"

	"github.com/amishk599/atsfeed/internal/model"
)

// Nop is the extractor for companies with no known ATS. It returns no jobs.
type Nop struct{}

func (Nop) Extract(context.Context, model.Company) ([]model.NormalizedJob, error) {
	return nil, nil
}
