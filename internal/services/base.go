package services

import (
	"context"
	"fmt"
	"io"
	"net/url"

	"smartentrance/internal/events"
)

// Requester is the part of *apiclient.Client the services use.
type Requester interface {
	Get(ctx context.Context, path string, query url.Values, out any) error
	Post(ctx context.Context, path string, body, out any) error
	Put(ctx context.Context, path string, body, out any) error
	Delete(ctx context.Context, path string, query url.Values, out any) error
	Upload(ctx context.Context, path, filename, contentType string, content io.Reader, fields map[string]string, out any) error
}

// Resource defines the calls every backend collection supports
type Resource[T any] interface {
	List(ctx context.Context, path string, query url.Values) ([]T, error)
	Get(ctx context.Context, path string) (*T, error)
	Create(ctx context.Context, path string, body any) (*T, error)
	Update(ctx context.Context, path string, body any) (*T, error)
	Delete(ctx context.Context, path string) error
}

// ResourceImpl implements Resource on top of a Requester
type ResourceImpl[T any] struct {
	client Requester
	name   string
}

// NewResource creates a resource; name is used for emitted events, e.g. "notices.created".
func NewResource[T any](client Requester, name string) Resource[T] {
	return &ResourceImpl[T]{
		client: client,
		name:   name,
	}
}

func (r *ResourceImpl[T]) List(ctx context.Context, path string, query url.Values) ([]T, error) {
	var items []T
	if err := r.client.Get(ctx, path, query, &items); err != nil {
		return nil, err
	}
	// The backend answers an empty collection with null sometimes.
	if items == nil {
		items = []T{}
	}
	return items, nil
}

func (r *ResourceImpl[T]) Get(ctx context.Context, path string) (*T, error) {
	var item T
	if err := r.client.Get(ctx, path, nil, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *ResourceImpl[T]) Create(ctx context.Context, path string, body any) (*T, error) {
	var item T
	if err := r.client.Post(ctx, path, body, &item); err != nil {
		return nil, err
	}

	events.Emit(fmt.Sprintf("%s.created", r.name), &item)
	return &item, nil
}

func (r *ResourceImpl[T]) Update(ctx context.Context, path string, body any) (*T, error) {
	var item T
	if err := r.client.Put(ctx, path, body, &item); err != nil {
		return nil, err
	}

	events.Emit(fmt.Sprintf("%s.updated", r.name), &item)
	return &item, nil
}

func (r *ResourceImpl[T]) Delete(ctx context.Context, path string) error {
	if err := r.client.Delete(ctx, path, nil, nil); err != nil {
		return err
	}

	events.Emit(fmt.Sprintf("%s.deleted", r.name), path)
	return nil
}
