package catalog

import (
	"context"
	"net/http"
	"strings"

	clienterrors "github.com/jrsteele09/etokisana-client/internal/errors"
	"github.com/jrsteele09/etokisana-client/transport"
)

const sitesPath = "/api/v1/sites"

// Site is a storage or pickup location.
type Site struct {
	ID      string  `json:"_id,omitempty"`
	Name    string  `json:"siteName"`
	Address string  `json:"siteAddress,omitempty"`
	Lat     float64 `json:"siteLat,omitempty"`
	Lng     float64 `json:"siteLng,omitempty"`
}

func (s Site) validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return clienterrors.Wrapf(clienterrors.ErrInvalidArgument, "site name is required")
	}
	if s.Lat < -90 || s.Lat > 90 || s.Lng < -180 || s.Lng > 180 {
		return clienterrors.Wrapf(clienterrors.ErrInvalidArgument, "site coordinates %f,%f", s.Lat, s.Lng)
	}
	return nil
}

type Sites struct {
	api
}

func NewSites(client *transport.Client) *Sites {
	return &Sites{api{client: client}}
}

func (s *Sites) Create(ctx context.Context, site Site) (*Site, error) {
	if err := site.validate(); err != nil {
		return nil, err
	}
	site.ID = ""
	var created Site
	if err := s.send(ctx, &transport.Request{Method: http.MethodPost, Path: sitesPath, Body: site}, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// Mine lists the sites of the authenticated user.
func (s *Sites) Mine(ctx context.Context, params transport.ListParams) (*transport.Page[Site], error) {
	var page transport.Page[Site]
	if err := s.list(ctx, sitesPath+"/me", params.Values(), &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (s *Sites) All(ctx context.Context, params transport.ListParams) (*transport.Page[Site], error) {
	var page transport.Page[Site]
	if err := s.list(ctx, sitesPath, params.Values(), &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (s *Sites) Get(ctx context.Context, id string) (*Site, error) {
	var site Site
	if err := s.get(ctx, sitesPath+"/get-by-id/"+escape(id), nil, &site); err != nil {
		return nil, err
	}
	return &site, nil
}

func (s *Sites) Update(ctx context.Context, id string, site Site) (*Site, error) {
	if err := site.validate(); err != nil {
		return nil, err
	}
	site.ID = ""
	var updated Site
	if err := s.send(ctx, &transport.Request{Method: http.MethodPatch, Path: sitesPath + "/update/" + escape(id), Body: site}, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

func (s *Sites) Delete(ctx context.Context, id string) error {
	return s.send(ctx, &transport.Request{Method: http.MethodDelete, Path: sitesPath + "/delete/" + escape(id)}, nil)
}
