package internal

import (
	"context"
	"time"

	"github.com/avdeev/ordertrack/internal/model"
)

type IService interface {
	Create(context.Context, map[string]interface{}) (int64, error)
	GetByID(context.Context, int64) (*model.Order, error)
	List(context.Context, map[string]interface{}) ([]model.Order, error)
	Update(context.Context, int64, map[string]interface{}) error
}

func NewService(repository IRepository) *Service {
	return &Service{Repository: repository}
}

type Service struct {
	Repository IRepository
}

// Create persists a new order built from a sanitized create payload. The
// status is stored exactly as the client supplied it, never defaulted.
func (s Service) Create(ctx context.Context, fields map[string]interface{}) (int64, error) {
	o := model.Order{
		ProductName:  fields["productName"].(string),
		CreationDate: fields["creationDate"].(time.Time),
		Status:       fields["status"].(string),
	}
	return s.Repository.Save(ctx, o)
}

// GetByID returns nil without an error when no order matches: the caller
// renders that as a JSON null.
func (s Service) GetByID(ctx context.Context, id int64) (*model.Order, error) {
	return s.Repository.FindOneByID(ctx, id)
}

func (s Service) List(ctx context.Context, filter map[string]interface{}) ([]model.Order, error) {
	return s.Repository.Find(ctx, filter)
}

// Update merges the sanitized partial payload into an existing order.
func (s Service) Update(ctx context.Context, id int64, fields map[string]interface{}) error {
	matched, err := s.Repository.UpdateOneByID(ctx, id, fields)
	if err != nil {
		return err
	}
	if !matched {
		return ErrOrderNotFound
	}
	return nil
}
