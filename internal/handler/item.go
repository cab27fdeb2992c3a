package handler

import (
	"net/http"
	"strconv"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/xenking/shop-api/internal/domain/item"
	"github.com/xenking/shop-api/internal/domain/listing"
)

// internalError logs the failure and hides details from the client.
func internalError(w http.ResponseWriter, r *http.Request, err error) {
	zctx.From(r.Context()).Error("request failed",
		zap.String("path", r.URL.Path),
		zap.Error(err),
	)
	writeError(w, http.StatusInternalServerError, "internal error")
}

func (h *Handler) createItem(w http.ResponseWriter, r *http.Request) {
	p, err := decodeItemPayload(r)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if !p.hasName || !p.hasPrice {
		writeError(w, http.StatusUnprocessableEntity, "name and price are required")
		return
	}

	it, err := h.items.Create(r.Context(), p.name, p.price)
	if err != nil {
		internalError(w, r, err)
		return
	}

	var e jx.Encoder
	encodeItem(&e, *it)
	w.Header().Set("Location", "/item/"+strconv.FormatInt(it.ID, 10))
	writeJSON(w, http.StatusCreated, &e)
}

func (h *Handler) getItem(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	it, err := h.items.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, item.ErrNotFound) {
			writeError(w, http.StatusNotFound, "item not found")
			return
		}
		internalError(w, r, err)
		return
	}
	// The store keeps soft-deleted items fetchable, but the API reports them
	// as missing.
	if it.Deleted {
		writeError(w, http.StatusNotFound, "item was deleted")
		return
	}

	var e jx.Encoder
	encodeItem(&e, *it)
	writeJSON(w, http.StatusOK, &e)
}

func (h *Handler) listItems(w http.ResponseWriter, r *http.Request) {
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
	showDeleted, err := queryBool(params, "show_deleted")
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	items, err := h.items.List(r.Context(), item.ListQuery{
		Page:        page,
		Price:       listing.PriceRange{Min: minPrice, Max: maxPrice},
		ShowDeleted: showDeleted,
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
	for _, it := range items {
		encodeItem(&e, it)
	}
	e.ArrEnd()
	writeJSON(w, http.StatusOK, &e)
}

func (h *Handler) updateItem(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	p, err := decodeItemPayload(r)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if !p.hasName || !p.hasPrice {
		writeError(w, http.StatusUnprocessableEntity, "name and price are required")
		return
	}

	it, err := h.items.Update(r.Context(), id, p.name, p.price)
	if err != nil {
		switch {
		case errors.Is(err, item.ErrNotFound):
			writeError(w, http.StatusNotFound, "item not found")
		case errors.Is(err, item.ErrDeleted):
			writeError(w, http.StatusUnprocessableEntity, "item is deleted")
		default:
			internalError(w, r, err)
		}
		return
	}

	var e jx.Encoder
	encodeItem(&e, *it)
	writeJSON(w, http.StatusOK, &e)
}

func (h *Handler) patchItem(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	p, err := decodeItemPatch(r)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	it, err := h.items.Patch(r.Context(), id, p)
	if err != nil {
		switch {
		case errors.Is(err, item.ErrNotFound):
			writeError(w, http.StatusNotFound, "item not found")
		case errors.Is(err, item.ErrDeleted):
			// Patching a deleted item reports 304 rather than an error body.
			w.WriteHeader(http.StatusNotModified)
		default:
			internalError(w, r, err)
		}
		return
	}

	var e jx.Encoder
	encodeItem(&e, *it)
	writeJSON(w, http.StatusOK, &e)
}

func (h *Handler) deleteItem(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	if err := h.items.Delete(r.Context(), id); err != nil {
		if errors.Is(err, item.ErrNotFound) {
			writeError(w, http.StatusNotFound, "item not found")
			return
		}
		internalError(w, r, err)
		return
	}

	var e jx.Encoder
	e.Null()
	writeJSON(w, http.StatusOK, &e)
}
