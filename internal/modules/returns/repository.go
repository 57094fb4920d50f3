package returns

import (
	"context"

	"github.com/google/uuid"
)

// Repository is the persistence contract for return cases.
type Repository interface {
	NextSequence(ctx context.Context, prefix string, year int) (int, error)
	Create(ctx context.Context, rc *ReturnCase) error
	GetByID(ctx context.Context, id uuid.UUID) (*ReturnCase, error)
	Update(ctx context.Context, rc *ReturnCase) error
	List(ctx context.Context) ([]*ReturnCase, error)
	ListByCreator(ctx context.Context, creatorID string) ([]*ReturnCase, error)
}
