// Package catalog wraps the marketplace endpoints: products, storage sites,
// stock movements and the CPC product classification.
package catalog

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	clienterrors "github.com/jrsteele09/etokisana-client/internal/errors"
	"github.com/jrsteele09/etokisana-client/transport"
	"github.com/tidwall/gjson"
)

// Catalog groups the per resource services.
type Catalog struct {
	Products *Products
	Sites    *Sites
	Stocks   *Stocks
	CPC      *CPC
}

func New(client *transport.Client) *Catalog {
	return &Catalog{
		Products: NewProducts(client),
		Sites:    NewSites(client),
		Stocks:   NewStocks(client),
		CPC:      NewCPC(client),
	}
}

// Ref is a document reference the API returns either as a bare id or, when
// populated, as the whole document.
type Ref[T any] struct {
	ID    string
	Value *T
}

func (r *Ref[T]) UnmarshalJSON(data []byte) error {
	res := gjson.ParseBytes(data)
	switch {
	case res.Type == gjson.Null:
		return nil
	case res.Type == gjson.String, res.Type == gjson.Number:
		r.ID = res.String()
		return nil
	case res.IsObject():
		var v T
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		r.Value = &v
		r.ID = firstString(res, "_id", "id")
		return nil
	}
	return clienterrors.Wrapf(clienterrors.ErrInvalidArgument, "reference %s", res.Raw)
}

// MarshalJSON writes the id only, which is what the API expects on input.
func (r Ref[T]) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.ID)
}

func firstString(res gjson.Result, paths ...string) string {
	for _, path := range paths {
		if v := res.Get(path); v.Exists() && v.String() != "" {
			return v.String()
		}
	}
	return ""
}

type api struct {
	client *transport.Client
}

func (a api) get(ctx context.Context, path string, query url.Values, out any) error {
	return a.send(ctx, &transport.Request{Method: http.MethodGet, Path: path, Query: query}, out)
}

func (a api) send(ctx context.Context, req *transport.Request, out any) error {
	resp, err := a.client.Do(ctx, req)
	if err != nil {
		return err
	}
	return resp.DecodeData(out)
}

func (a api) list(ctx context.Context, path string, query url.Values, out any) error {
	resp, err := a.client.Do(ctx, &transport.Request{Method: http.MethodGet, Path: path, Query: query})
	if err != nil {
		return err
	}
	return resp.Decode(out)
}

func escape(id string) string {
	return url.PathEscape(id)
}
