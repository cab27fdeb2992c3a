// Package handler is the HTTP translation layer: it parses requests, calls
// into the store, and maps typed store errors onto status codes. No business
// rules live here.
package handler

import (
	"net/http"

	"github.com/xenking/shop-api/internal/domain/cart"
	"github.com/xenking/shop-api/internal/domain/item"
)

// Handler exposes the item and cart operations over HTTP.
type Handler struct {
	items   item.Repository
	carts   cart.Repository
	cartSvc *cart.Service
}

// New constructs a Handler with the required store dependencies.
func New(items item.Repository, carts cart.Repository, cartSvc *cart.Service) *Handler {
	return &Handler{
		items:   items,
		carts:   carts,
		cartSvc: cartSvc,
	}
}

// Routes returns a mux with all API routes registered.
func (h *Handler) Routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /item", h.createItem)
	mux.HandleFunc("GET /item", h.listItems)
	mux.HandleFunc("GET /item/{id}", h.getItem)
	mux.HandleFunc("PUT /item/{id}", h.updateItem)
	mux.HandleFunc("PATCH /item/{id}", h.patchItem)
	mux.HandleFunc("DELETE /item/{id}", h.deleteItem)

	mux.HandleFunc("POST /cart", h.createCart)
	mux.HandleFunc("GET /cart", h.listCarts)
	mux.HandleFunc("GET /cart/{id}", h.getCart)
	mux.HandleFunc("POST /cart/{cart_id}/add/{item_id}", h.addItemToCart)

	return mux
}
