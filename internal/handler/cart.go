package handler

import (
	"net/http"
	"strconv"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"

	"github.com/xenking/shop-api/internal/domain/cart"
	"github.com/xenking/shop-api/internal/domain/listing"
)

func (h *Handler) createCart(w http.ResponseWriter, r *http.Request) {
	c, err := h.carts.Create(r.Context())
	if err != nil {
		internalError(w, r, err)
		return
	}

	var e jx.Encoder
	encodeCart(&e, *c)
	w.Header().Set("Location", "/cart/"+strconv.FormatInt(c.ID, 10))
	writeJSON(w, http.StatusCreated, &e)
}

func (h *Handler) getCart(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	c, err := h.carts.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, cart.ErrNotFound) {
			writeError(w, http.StatusNotFound, "cart not found")
			return
		}
		internalError(w, r, err)
		return
	}

	var e jx.Encoder
	encodeCart(&e, *c)
	writeJSON(w, http.StatusOK, &e)
}

func (h *Handler) listCarts(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()

	page, err := queryPage(params)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	minPrice, err := queryDecimal(params, "min_price")
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	maxPrice, err := queryDecimal(params, "max_price")
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	minQuantity, err := queryInt(params, "min_quantity")
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	maxQuantity, err := queryInt(params, "max_quantity")
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	carts, err := h.carts.List(r.Context(), cart.ListQuery{
		Page:     page,
		Price:    listing.PriceRange{Min: minPrice, Max: maxPrice},
		Quantity: listing.QuantityRange{Min: minQuantity, Max: maxQuantity},
	})
	if err != nil {
		if errors.Is(err, listing.ErrInvalidQuery) {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		internalError(w, r, err)
		return
	}

	var e jx.Encoder
	e.ArrStart()
	for _, c := range carts {
		encodeCart(&e, c)
	}
	e.ArrEnd()
	writeJSON(w, http.StatusOK, &e)
}

func (h *Handler) addItemToCart(w http.ResponseWriter, r *http.Request) {
	cartID, err := pathID(r, "cart_id")
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	itemID, err := pathID(r, "item_id")
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	c, err := h.cartSvc.AddItem(r.Context(), cartID, itemID)
	if err != nil {
		if errors.Is(err, cart.ErrCartOrItemNotFound) {
			writeError(w, http.StatusUnprocessableEntity, "cart or item not found")
			return
		}
		internalError(w, r, err)
		return
	}

	var e jx.Encoder
	encodeCart(&e, *c)
	writeJSON(w, http.StatusCreated, &e)
}
