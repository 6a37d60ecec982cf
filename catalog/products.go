package catalog

import (
	"context"
	"net/http"
	"strconv"

	"github.com/jrsteele09/etokisana-client/cart"
	"github.com/jrsteele09/etokisana-client/transport"
)

const productsPath = "/api/v1/products"

type Product struct {
	ID          string `json:"_id"`
	Name        string `json:"productName"`
	Description string `json:"productDescription,omitempty"`
	CodeCPC     string `json:"codeCPC,omitempty"`
	State       string `json:"productState,omitempty"`
	Category    string `json:"productCategory,omitempty"`
	CategoryID  string `json:"categoryId,omitempty"`
	Image       string `json:"productImage,omitempty"`
	Price       int64  `json:"price,omitempty"`
	Stock       int    `json:"stock,omitempty"`
	Validated   bool   `json:"validation,omitempty"`
	IsStocker   bool   `json:"isStocker,omitempty"`
}

// CartProduct converts p for cart.Cart.AddItem.
func (p Product) CartProduct() cart.Product {
	return cart.Product{
		ID:    p.ID,
		Name:  p.Name,
		Price: p.Price,
		Stock: p.Stock,
		Image: p.Image,
	}
}

// ProductFilter narrows a product listing.
type ProductFilter struct {
	transport.ListParams
	IsStocker *bool
}

func (f ProductFilter) params() transport.ListParams {
	p := f.ListParams
	if f.IsStocker != nil {
		p.Extra = cloneValues(p.Extra)
		p.Extra.Set("isStocker", strconv.FormatBool(*f.IsStocker))
	}
	return p
}

type Products struct {
	api
}

func NewProducts(client *transport.Client) *Products {
	return &Products{api{client: client}}
}

func (s *Products) List(ctx context.Context, filter ProductFilter) (*transport.Page[Product], error) {
	var page transport.Page[Product]
	if err := s.list(ctx, productsPath, filter.params().Values(), &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// Mine lists the products owned by the authenticated user.
func (s *Products) Mine(ctx context.Context, filter ProductFilter) (*transport.Page[Product], error) {
	var page transport.Page[Product]
	if err := s.list(ctx, productsPath+"/me", filter.params().Values(), &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (s *Products) Get(ctx context.Context, id string) (*Product, error) {
	var p Product
	if err := s.get(ctx, productsPath+"/get-by-id/"+escape(id), nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// ToggleValidation flips the moderation state of a product. Admin only.
func (s *Products) ToggleValidation(ctx context.Context, id string) (*Product, error) {
	return s.patch(ctx, productsPath+"/toggle-validation/"+escape(id))
}

// ToggleStock flips whether a product is held by a stocker.
func (s *Products) ToggleStock(ctx context.Context, id string) (*Product, error) {
	return s.patch(ctx, productsPath+"/toggle-stock/"+escape(id))
}

func (s *Products) patch(ctx context.Context, path string) (*Product, error) {
	var p Product
	if err := s.send(ctx, &transport.Request{Method: http.MethodPatch, Path: path, Body: struct{}{}}, &p); err != nil {
		return nil, err
	}
	return &p, nil
}
