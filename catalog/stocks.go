package catalog

import (
	"context"
	"net/http"
	"time"

	clienterrors "github.com/jrsteele09/etokisana-client/internal/errors"
	"github.com/jrsteele09/etokisana-client/transport"
)

const stocksPath = "/api/v1/stocks"

// Movement is a deposit into or a withdrawal from a site.
type Movement struct {
	SiteOrigineID     string `json:"siteOrigineId"`
	SiteDestinationID string `json:"siteDestinationId"`
	ProductID         string `json:"productId"`
	Quantity          int    `json:"quantite"`
	UnitPrice         int64  `json:"prixUnitaire"`
	Observations      string `json:"observations"`
}

func (m Movement) validate() error {
	switch {
	case m.ProductID == "":
		return clienterrors.Wrapf(clienterrors.ErrInvalidArgument, "movement product is required")
	case m.SiteOrigineID == "" || m.SiteDestinationID == "":
		return clienterrors.Wrapf(clienterrors.ErrInvalidArgument, "movement sites are required")
	case m.Quantity < 1:
		return clienterrors.Wrapf(clienterrors.ErrInvalidArgument, "movement quantity %d", m.Quantity)
	case m.UnitPrice < 0:
		return clienterrors.Wrapf(clienterrors.ErrInvalidArgument, "movement unit price %d", m.UnitPrice)
	}
	return nil
}

// StockMove is a recorded movement with its references populated when the
// API chose to.
type StockMove struct {
	ID           string       `json:"_id"`
	Type         string       `json:"type,omitempty"`
	Origin       Ref[Site]    `json:"siteOrigineId"`
	Destination  Ref[Site]    `json:"siteDestinationId"`
	Depot        Ref[Site]    `json:"depotId"`
	Product      Ref[Product] `json:"productId"`
	Quantity     int          `json:"quantite"`
	UnitPrice    int64        `json:"prixUnitaire"`
	Amount       int64        `json:"montant,omitempty"`
	Observations string       `json:"observations,omitempty"`
	CreatedAt    time.Time    `json:"createdAt"`
}

// Total is the movement value, falling back to quantity times unit price
// when the API did not send an amount.
func (m StockMove) Total() int64 {
	if m.Amount != 0 {
		return m.Amount
	}
	return int64(m.Quantity) * m.UnitPrice
}

type Stocks struct {
	api
}

func NewStocks(client *transport.Client) *Stocks {
	return &Stocks{api{client: client}}
}

func (s *Stocks) Deposit(ctx context.Context, m Movement) (*StockMove, error) {
	return s.move(ctx, "/deposit", m)
}

func (s *Stocks) Withdraw(ctx context.Context, m Movement) (*StockMove, error) {
	return s.move(ctx, "/withdraw", m)
}

func (s *Stocks) move(ctx context.Context, path string, m Movement) (*StockMove, error) {
	if err := m.validate(); err != nil {
		return nil, err
	}
	var created StockMove
	if err := s.send(ctx, &transport.Request{Method: http.MethodPost, Path: stocksPath + path, Body: m}, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// MyActifs lists the stock held on behalf of the authenticated user.
func (s *Stocks) MyActifs(ctx context.Context, params transport.ListParams) (*transport.Page[StockMove], error) {
	var page transport.Page[StockMove]
	if err := s.list(ctx, stocksPath+"/my-actifs", params.Values(), &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// MyPassifs lists the stock the authenticated user holds for others.
func (s *Stocks) MyPassifs(ctx context.Context, params transport.ListParams) (*transport.Page[StockMove], error) {
	var page transport.Page[StockMove]
	if err := s.list(ctx, stocksPath+"/my-passifs", params.Values(), &page); err != nil {
		return nil, err
	}
	return &page, nil
}
