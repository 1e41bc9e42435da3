package catalog

import (
	"context"
	"errors"

	"detailbook/internal/domain"
	"detailbook/internal/repository"
)

var ErrNotFound = errors.New("service not found")

// ServiceReader is the read side of the detailing service catalog. Pricing
// administration happens out of band; customers only browse.
type ServiceReader interface {
	GetByID(ctx context.Context, id int64) (*domain.Service, error)
	ListActive(ctx context.Context) ([]domain.Service, error)
}

type Service struct {
	services ServiceReader
}

func NewService(services ServiceReader) *Service {
	return &Service{services: services}
}

func (s *Service) List(ctx context.Context) ([]domain.Service, error) {
	return s.services.ListActive(ctx)
}

func (s *Service) Get(ctx context.Context, id int64) (*domain.Service, error) {
	svc, err := s.services.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if !svc.Active {
		return nil, ErrNotFound
	}
	return svc, nil
}
