package transport

import (
	"encoding/json"
	"net/url"
	"strconv"

	clienterrors "github.com/jrsteele09/etokisana-client/internal/errors"
	"github.com/tidwall/gjson"
)

// ListParams are the pagination and search parameters shared by list endpoints.
type ListParams struct {
	Search string
	Limit  int
	Page   int
	Extra  url.Values // Endpoint specific filters
}

// Values encodes the non-zero parameters.
func (p ListParams) Values() url.Values {
	v := url.Values{}
	for k, values := range p.Extra {
		for _, value := range values {
			v.Add(k, value)
		}
	}
	if p.Search != "" {
		v.Set("search", p.Search)
	}
	if p.Limit > 0 {
		v.Set("limit", strconv.Itoa(p.Limit))
	}
	if p.Page > 0 {
		v.Set("page", strconv.Itoa(p.Page))
	}
	return v
}

// Page is a paginated list response. It decodes a bare JSON array, a
// {"data": [...]} envelope and the {"docs": [...], "totalDocs": n} shape.
type Page[T any] struct {
	Data       []T `json:"data"`
	Total      int `json:"total,omitempty"`
	Page       int `json:"page,omitempty"`
	Limit      int `json:"limit,omitempty"`
	TotalPages int `json:"totalPages,omitempty"`
}

func (p *Page[T]) UnmarshalJSON(data []byte) error {
	if !gjson.ValidBytes(data) {
		return clienterrors.Wrapf(clienterrors.ErrInvalidArgument, "page: invalid json")
	}
	root := gjson.ParseBytes(data)
	if root.IsArray() {
		return json.Unmarshal(data, &p.Data)
	}

	items := firstOf(root, "data", "docs", "items", "results")
	if items.IsObject() {
		// {"data": {"docs": [...], ...}}
		return p.UnmarshalJSON([]byte(items.Raw))
	}
	if items.IsArray() {
		if err := json.Unmarshal([]byte(items.Raw), &p.Data); err != nil {
			return err
		}
	}
	p.Total = int(firstOf(root, "total", "totalDocs", "count").Int())
	p.Page = int(root.Get("page").Int())
	p.Limit = int(root.Get("limit").Int())
	p.TotalPages = int(root.Get("totalPages").Int())
	if p.Total == 0 {
		p.Total = len(p.Data)
	}
	return nil
}

func firstOf(root gjson.Result, paths ...string) gjson.Result {
	for _, path := range paths {
		if r := root.Get(path); r.Exists() {
			return r
		}
	}
	return gjson.Result{}
}
