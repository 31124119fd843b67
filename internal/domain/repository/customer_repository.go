package repository

import (
	"context"

	"github.com/jhoicas/customer-dedup/internal/domain/dedup"
	"github.com/jhoicas/customer-dedup/internal/domain/entity"
)

// CustomerRepository puerto de lectura de candidatos.
// SearchCandidates combina los predicados de q con OR, excluye borrados y respeta q.Limit.
type CustomerRepository interface {
	SearchCandidates(ctx context.Context, q dedup.CandidateQuery) ([]*entity.Customer, error)
}
