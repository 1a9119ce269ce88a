package diplomas

import "context"

// Repository is the persistence contract for diploma rows.
type Repository interface {
	// List returns every diploma ordered by category rank
	// (fitness, medical, military, tech, business) then year descending.
	List(ctx context.Context) ([]*Diploma, error)

	// GetByID returns common.ErrorNotFound when no row matches.
	GetByID(ctx context.Context, id int64) (*Diploma, error)

	// Create persists a row and returns it with id and timestamps assigned.
	Create(ctx context.Context, in *CreateInput) (*Diploma, error)

	// Update overwrites only the non-nil fields of in and refreshes
	// updated_at. Returns common.ErrorNotFound when no row matches.
	Update(ctx context.Context, id int64, in *UpdateInput) (*Diploma, error)

	// Delete removes the row and reports whether one was actually removed.
	Delete(ctx context.Context, id int64) (bool, error)
}
