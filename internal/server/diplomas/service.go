package diplomas

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/pmorel/cv-backend/internal/common"
	"github.com/pmorel/cv-backend/internal/logging"
	"github.com/pmorel/cv-backend/internal/server/auth"
	"github.com/pmorel/cv-backend/internal/server/blob"
)

// Upload is one multipart file as received at the boundary.
type Upload struct {
	Reader      io.Reader
	Size        int64
	ContentType string
	Name        string
}

// ListCache is an optional read-through cache for the public list. A nil
// ListCache disables caching; implementations must never fail the request.
type ListCache interface {
	Get(ctx context.Context) ([]*Diploma, bool)
	Set(ctx context.Context, items []*Diploma)
	Invalidate(ctx context.Context)
}

// Service orchestrates the diploma operations: public reads, and
// session-gated mutations that keep the stored file and the database row
// consistent. Only this layer translates repository and blob failures into
// the shared error taxonomy.
type Service struct {
	repo     Repository
	files    blob.Store
	sessions *auth.Sessions
	cache    ListCache
	logger   logging.Logger
}

func NewService(repo Repository, files blob.Store, sessions *auth.Sessions, cache ListCache, logger logging.Logger) *Service {
	return &Service{
		repo:     repo,
		files:    files,
		sessions: sessions,
		cache:    cache,
		logger:   logger.With("module", "diplomas"),
	}
}

// List returns every diploma in the fixed public order. No authentication.
func (s *Service) List(ctx context.Context) ([]*Diploma, error) {
	if s.cache != nil {
		if items, ok := s.cache.Get(ctx); ok {
			return items, nil
		}
	}

	items, err := s.repo.List(ctx)
	if err != nil {
		s.logger.Error(ctx, "list diplomas", "error", err.Error())
		return nil, common.ErrorUpstream
	}

	if s.cache != nil {
		s.cache.Set(ctx, items)
	}
	return items, nil
}

// Get returns one diploma. No authentication.
func (s *Service) Get(ctx context.Context, id int64) (*Diploma, error) {
	d, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		s.logger.Error(ctx, "get diploma", "id", id, "error", err.Error())
		return nil, common.ErrorUpstream
	}
	return d, nil
}

// Create adds a diploma after validating the session and the input. When a
// file is attached it is uploaded strictly before the row insert, so no row
// ever references a blob that was never written. A failed upload aborts the
// whole operation; a failed insert after a successful upload leaves an
// orphaned blob, which is inert and accepted.
func (s *Service) Create(ctx context.Context, session string, in CreateInput, file *Upload) (*Diploma, error) {
	if !s.sessions.Validate(session) {
		return nil, common.ErrorUnauthorized
	}

	if err := validateCreate(&in); err != nil {
		return nil, err
	}

	if file != nil && file.Size > 0 {
		if err := s.files.Validate(file.ContentType, file.Size); err != nil {
			return nil, fmt.Errorf("%w: %s", common.ErrorValidation, err.Error())
		}
		url, err := s.files.Upload(ctx, file.Reader, file.Size, file.ContentType, file.Name)
		if err != nil {
			if errors.Is(err, blob.ErrUnsupportedType) || errors.Is(err, blob.ErrTooLarge) {
				return nil, fmt.Errorf("%w: %s", common.ErrorValidation, err.Error())
			}
			s.logger.Error(ctx, "upload failed", "error", err.Error())
			return nil, common.ErrorUpstream
		}
		in.PdfURL = &url
	}

	d, err := s.repo.Create(ctx, &in)
	if err != nil {
		s.logger.Error(ctx, "create diploma", "error", err.Error())
		return nil, common.ErrorUpstream
	}

	s.invalidate(ctx)
	s.logger.Info(ctx, "diploma created", "id", d.ID, "category", d.Category)
	return d, nil
}

// Update applies a partial update to an existing diploma.
func (s *Service) Update(ctx context.Context, session string, id int64, in UpdateInput) (*Diploma, error) {
	if !s.sessions.Validate(session) {
		return nil, common.ErrorUnauthorized
	}

	if in.Category != nil && !ValidCategory(*in.Category) {
		return nil, fmt.Errorf("%w: invalid category", common.ErrorValidation)
	}

	d, err := s.repo.Update(ctx, id, &in)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		s.logger.Error(ctx, "update diploma", "id", id, "error", err.Error())
		return nil, common.ErrorUpstream
	}

	s.invalidate(ctx)
	s.logger.Info(ctx, "diploma updated", "id", d.ID)
	return d, nil
}

// Delete removes a diploma and, best-effort, its stored file. A failed blob
// deletion is logged and never aborts the row deletion: a dangling row
// pointing at a gone blob is worse than an orphaned blob.
func (s *Service) Delete(ctx context.Context, session string, id int64) error {
	if !s.sessions.Validate(session) {
		return common.ErrorUnauthorized
	}

	d, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrorNotFound
		}
		s.logger.Error(ctx, "delete diploma: fetch", "id", id, "error", err.Error())
		return common.ErrorUpstream
	}

	if d.PdfURL != nil {
		if ok := s.files.Delete(ctx, *d.PdfURL); !ok {
			s.logger.Warn(ctx, "blob delete failed, removing row anyway", "id", id, "url", *d.PdfURL)
		}
	}

	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		s.logger.Error(ctx, "delete diploma", "id", id, "error", err.Error())
		return common.ErrorUpstream
	}
	if !deleted {
		// Row vanished between fetch and delete; last write wins.
		return common.ErrorNotFound
	}

	s.invalidate(ctx)
	s.logger.Info(ctx, "diploma deleted", "id", id)
	return nil
}

func (s *Service) invalidate(ctx context.Context) {
	if s.cache != nil {
		s.cache.Invalidate(ctx)
	}
}

func validateCreate(in *CreateInput) error {
	var missing []string
	if in.Title == "" {
		missing = append(missing, "title")
	}
	if in.Institution == "" {
		missing = append(missing, "institution")
	}
	if in.Year == "" {
		missing = append(missing, "year")
	}
	if in.Category == "" {
		missing = append(missing, "category")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing required fields: %s", common.ErrorValidation, strings.Join(missing, ", "))
	}
	if !ValidCategory(in.Category) {
		return fmt.Errorf("%w: invalid category", common.ErrorValidation)
	}
	return nil
}
