package users

import (
	"context"
	"net/url"

	"github.com/jrsteele09/etokisana-client/transport"
)

const (
	usersPath    = "/users"
	activatePath = "/users/activate/"
)

// Service wraps the administration endpoints for user accounts.
type Service struct {
	client *transport.Client
}

func NewService(client *transport.Client) *Service {
	return &Service{client: client}
}

// List returns a page of users.
func (s *Service) List(ctx context.Context, params transport.ListParams) (*transport.Page[Profile], error) {
	var page transport.Page[Profile]
	if err := s.client.Get(ctx, usersPath, params.Values(), &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// Activate toggles the activation of the user with id.
func (s *Service) Activate(ctx context.Context, id string) (*Profile, error) {
	var p Profile
	if err := s.client.Patch(ctx, activatePath+url.PathEscape(id), nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}
