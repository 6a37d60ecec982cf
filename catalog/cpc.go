package catalog

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	clienterrors "github.com/jrsteele09/etokisana-client/internal/errors"
	"github.com/jrsteele09/etokisana-client/transport"
)

const cpcPath = "/api/v1/cpc"

// Classification is a node of the Central Product Classification tree.
type Classification struct {
	Code            string         `json:"code"`
	Name            string         `json:"nom"`
	Level           int            `json:"niveau"`
	ParentCode      string         `json:"parentCode,omitempty"`
	Ancestors       []string       `json:"ancetres"`
	Correspondences map[string]any `json:"correspondances"`
}

func (c Classification) normalized() (Classification, error) {
	if strings.TrimSpace(c.Code) == "" || strings.TrimSpace(c.Name) == "" {
		return c, clienterrors.Wrapf(clienterrors.ErrInvalidArgument, "cpc code and name are required")
	}
	if c.Ancestors == nil {
		c.Ancestors = []string{}
	}
	if c.Correspondences == nil {
		c.Correspondences = map[string]any{}
	}
	return c, nil
}

type CPC struct {
	api
}

func NewCPC(client *transport.Client) *CPC {
	return &CPC{api{client: client}}
}

// List searches the classification. level 0 means every level.
func (s *CPC) List(ctx context.Context, params transport.ListParams, level int) (*transport.Page[Classification], error) {
	if level > 0 {
		params.Extra = cloneValues(params.Extra)
		params.Extra.Set("niveau", strconv.Itoa(level))
	}
	var page transport.Page[Classification]
	if err := s.list(ctx, cpcPath, params.Values(), &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (s *CPC) GetByCode(ctx context.Context, code string) (*Classification, error) {
	var c Classification
	if err := s.get(ctx, cpcPath+"/get-by-code/"+escape(code), nil, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *CPC) Create(ctx context.Context, c Classification) (*Classification, error) {
	c, err := c.normalized()
	if err != nil {
		return nil, err
	}
	var created Classification
	if err := s.send(ctx, &transport.Request{Method: http.MethodPost, Path: cpcPath, Body: c}, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (s *CPC) Update(ctx context.Context, code string, c Classification) (*Classification, error) {
	c, err := c.normalized()
	if err != nil {
		return nil, err
	}
	var updated Classification
	if err := s.send(ctx, &transport.Request{Method: http.MethodPatch, Path: cpcPath + "/update/" + escape(code), Body: c}, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

func (s *CPC) Delete(ctx context.Context, code string) error {
	return s.send(ctx, &transport.Request{Method: http.MethodDelete, Path: cpcPath + "/delete/" + escape(code)}, nil)
}

func cloneValues(v url.Values) url.Values {
	out := url.Values{}
	for k, values := range v {
		out[k] = append([]string(nil), values...)
	}
	return out
}
