package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenking/shop-api/internal/domain/cart"
	"github.com/xenking/shop-api/internal/storage/memory"
)

// Response types mirror the wire format rather than the domain types so the
// tests stay black-box about encoding.

type itemResponse struct {
	ID      int64   `json:"id"`
	Name    string  `json:"name"`
	Price   float64 `json:"price"`
	Deleted bool    `json:"deleted"`
}

type cartItemResponse struct {
	ID        int64  `json:"id"`
	ItemName  string `json:"item_name"`
	Quantity  int    `json:"quantity"`
	Available bool   `json:"available"`
}

type cartResponse struct {
	ID    int64              `json:"id"`
	Items []cartItemResponse `json:"items"`
	Price float64            `json:"price"`
}

func newTestMux() *http.ServeMux {
	itemStore := memory.NewItemStore()
	cartStore := memory.NewCartStore()
	h := New(itemStore, cartStore, cart.NewService(cartStore, itemStore))
	return h.Routes()
}

func do(t *testing.T, mux *http.ServeMux, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()

	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v))
	return v
}

// --- Item routes ---

func TestCreateItem(t *testing.T) {
	mux := newTestMux()

	w := do(t, mux, http.MethodPost, "/item", `{"name":"apple","price":1.5}`)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "/item/0", w.Header().Get("Location"))

	it := decode[itemResponse](t, w)
	assert.Equal(t, int64(0), it.ID)
	assert.Equal(t, "apple", it.Name)
	assert.Equal(t, 1.5, it.Price)
	assert.False(t, it.Deleted)
}

func TestCreateItem_MissingField(t *testing.T) {
	mux := newTestMux()

	w := do(t, mux, http.MethodPost, "/item", `{"name":"apple"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = do(t, mux, http.MethodPost, "/item", `{"price":1.5}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestCreateItem_MalformedBody(t *testing.T) {
	mux := newTestMux()

	w := do(t, mux, http.MethodPost, "/item", `{"name":`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestGetItem(t *testing.T) {
	mux := newTestMux()
	do(t, mux, http.MethodPost, "/item", `{"name":"apple","price":1.5}`)

	w := do(t, mux, http.MethodGet, "/item/0", "")
	require.Equal(t, http.StatusOK, w.Code)

	it := decode[itemResponse](t, w)
	assert.Equal(t, "apple", it.Name)
}

func TestGetItem_NotFound(t *testing.T) {
	mux := newTestMux()

	w := do(t, mux, http.MethodGet, "/item/42", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetItem_DeletedReportsNotFound(t *testing.T) {
	mux := newTestMux()
	do(t, mux, http.MethodPost, "/item", `{"name":"apple","price":1.5}`)
	do(t, mux, http.MethodDelete, "/item/0", "")

	w := do(t, mux, http.MethodGet, "/item/0", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListItems_WindowThenFilter(t *testing.T) {
	mux := newTestMux()

	// Items 0..4 with prices 1..5.
	for _, body := range []string{
		`{"name":"a","price":1}`,
		`{"name":"b","price":2}`,
		`{"name":"c","price":3}`,
		`{"name":"d","price":4}`,
		`{"name":"e","price":5}`,
	} {
		w := do(t, mux, http.MethodPost, "/item", body)
		require.Equal(t, http.StatusCreated, w.Code)
	}

	w := do(t, mux, http.MethodGet, "/item?offset=1&limit=2&min_price=2", "")
	require.Equal(t, http.StatusOK, w.Code)

	items := decode[[]itemResponse](t, w)
	require.Len(t, items, 2)
	assert.Equal(t, int64(1), items[0].ID)
	assert.Equal(t, int64(2), items[1].ID)
}

func TestListItems_InvalidParams(t *testing.T) {
	mux := newTestMux()

	for _, query := range []string{
		"?offset=-1",
		"?limit=0",
		"?limit=-3",
		"?min_price=-1",
		"?max_price=-0.5",
		"?offset=abc",
		"?min_price=cheap",
		"?show_deleted=maybe",
	} {
		w := do(t, mux, http.MethodGet, "/item"+query, "")
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code, "query %s", query)
	}
}

func TestListItems_ShowDeleted(t *testing.T) {
	mux := newTestMux()
	do(t, mux, http.MethodPost, "/item", `{"name":"kept","price":1}`)
	do(t, mux, http.MethodPost, "/item", `{"name":"gone","price":2}`)
	do(t, mux, http.MethodDelete, "/item/1", "")

	w := do(t, mux, http.MethodGet, "/item", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]itemResponse](t, w), 1)

	w = do(t, mux, http.MethodGet, "/item?show_deleted=true", "")
	require.Equal(t, http.StatusOK, w.Code)
	items := decode[[]itemResponse](t, w)
	require.Len(t, items, 2)
	assert.True(t, items[1].Deleted)
}

func TestUpdateItem(t *testing.T) {
	mux := newTestMux()
	do(t, mux, http.MethodPost, "/item", `{"name":"apple","price":1.5}`)

	w := do(t, mux, http.MethodPut, "/item/0", `{"name":"pear","price":2}`)
	require.Equal(t, http.StatusOK, w.Code)

	it := decode[itemResponse](t, w)
	assert.Equal(t, "pear", it.Name)
	assert.Equal(t, 2.0, it.Price)
}

func TestUpdateItem_RequiresBothFields(t *testing.T) {
	mux := newTestMux()
	do(t, mux, http.MethodPost, "/item", `{"name":"apple","price":1.5}`)

	w := do(t, mux, http.MethodPut, "/item/0", `{"name":"pear"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestUpdateItem_NotFoundAndDeleted(t *testing.T) {
	mux := newTestMux()

	w := do(t, mux, http.MethodPut, "/item/42", `{"name":"pear","price":2}`)
	assert.Equal(t, http.StatusNotFound, w.Code)

	do(t, mux, http.MethodPost, "/item", `{"name":"apple","price":1.5}`)
	do(t, mux, http.MethodDelete, "/item/0", "")

	w = do(t, mux, http.MethodPut, "/item/0", `{"name":"pear","price":2}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestPatchItem_PartialFields(t *testing.T) {
	mux := newTestMux()
	do(t, mux, http.MethodPost, "/item", `{"name":"apple","price":1.5}`)

	w := do(t, mux, http.MethodPatch, "/item/0", `{"name":"pear"}`)
	require.Equal(t, http.StatusOK, w.Code)

	it := decode[itemResponse](t, w)
	assert.Equal(t, "pear", it.Name)
	assert.Equal(t, 1.5, it.Price, "price must survive a name-only patch")
}

func TestPatchItem_UnknownFieldRejected(t *testing.T) {
	mux := newTestMux()
	do(t, mux, http.MethodPost, "/item", `{"name":"apple","price":1.5}`)

	w := do(t, mux, http.MethodPatch, "/item/0", `{"name":"pear","deleted":true}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestPatchItem_DeletedReportsNotModified(t *testing.T) {
	mux := newTestMux()
	do(t, mux, http.MethodPost, "/item", `{"name":"apple","price":1.5}`)
	do(t, mux, http.MethodDelete, "/item/0", "")

	w := do(t, mux, http.MethodPatch, "/item/0", `{"name":"pear"}`)
	assert.Equal(t, http.StatusNotModified, w.Code)
}

func TestDeleteItem(t *testing.T) {
	mux := newTestMux()
	do(t, mux, http.MethodPost, "/item", `{"name":"apple","price":1.5}`)

	w := do(t, mux, http.MethodDelete, "/item/0", "")
	assert.Equal(t, http.StatusOK, w.Code)

	// Idempotent at the store level: a second delete still succeeds.
	w = do(t, mux, http.MethodDelete, "/item/0", "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(t, mux, http.MethodDelete, "/item/42", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

// --- Cart routes ---

func TestCreateCart(t *testing.T) {
	mux := newTestMux()

	w := do(t, mux, http.MethodPost, "/cart", "")
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "/cart/0", w.Header().Get("Location"))

	c := decode[cartResponse](t, w)
	assert.Equal(t, int64(0), c.ID)
	assert.Empty(t, c.Items)
	assert.Equal(t, 0.0, c.Price)
}

func TestGetCart_NotFound(t *testing.T) {
	mux := newTestMux()

	w := do(t, mux, http.MethodGet, "/cart/42", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAddItemToCart_Twice(t *testing.T) {
	mux := newTestMux()
	do(t, mux, http.MethodPost, "/item", `{"name":"apple","price":1.5}`)
	do(t, mux, http.MethodPost, "/cart", "")

	w := do(t, mux, http.MethodPost, "/cart/0/add/0", "")
	require.Equal(t, http.StatusCreated, w.Code)

	w = do(t, mux, http.MethodPost, "/cart/0/add/0", "")
	require.Equal(t, http.StatusCreated, w.Code)

	c := decode[cartResponse](t, w)
	require.Len(t, c.Items, 1)
	assert.Equal(t, int64(0), c.Items[0].ID)
	assert.Equal(t, "apple", c.Items[0].ItemName)
	assert.Equal(t, 2, c.Items[0].Quantity)
	assert.True(t, c.Items[0].Available)
	assert.Equal(t, 3.0, c.Price)
}

func TestAddItemToCart_SnapshotPricingOverHTTP(t *testing.T) {
	mux := newTestMux()
	do(t, mux, http.MethodPost, "/item", `{"name":"apple","price":1.5}`)
	do(t, mux, http.MethodPost, "/cart", "")
	do(t, mux, http.MethodPost, "/cart/0/add/0", "")

	// Repricing the item must not change the cart retroactively.
	w := do(t, mux, http.MethodPut, "/item/0", `{"name":"apple","price":99}`)
	require.Equal(t, http.StatusOK, w.Code)

	w = do(t, mux, http.MethodGet, "/cart/0", "")
	require.Equal(t, http.StatusOK, w.Code)
	c := decode[cartResponse](t, w)
	assert.Equal(t, 1.5, c.Price)
}

func TestAddItemToCart_UnknownIDs(t *testing.T) {
	mux := newTestMux()
	do(t, mux, http.MethodPost, "/item", `{"name":"apple","price":1.5}`)
	do(t, mux, http.MethodPost, "/cart", "")

	w := do(t, mux, http.MethodPost, "/cart/42/add/0", "")
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = do(t, mux, http.MethodPost, "/cart/0/add/42", "")
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestAddItemToCart_DeletedItemAllowed(t *testing.T) {
	mux := newTestMux()
	do(t, mux, http.MethodPost, "/item", `{"name":"apple","price":1.5}`)
	do(t, mux, http.MethodDelete, "/item/0", "")
	do(t, mux, http.MethodPost, "/cart", "")

	w := do(t, mux, http.MethodPost, "/cart/0/add/0", "")
	require.Equal(t, http.StatusCreated, w.Code)

	c := decode[cartResponse](t, w)
	require.Len(t, c.Items, 1)
	assert.Equal(t, 1.5, c.Price)
}

func TestListCarts_QuantityFilter(t *testing.T) {
	mux := newTestMux()
	do(t, mux, http.MethodPost, "/item", `{"name":"apple","price":1.5}`)
	do(t, mux, http.MethodPost, "/cart", "")
	do(t, mux, http.MethodPost, "/cart", "")
	do(t, mux, http.MethodPost, "/cart/1/add/0", "")
	do(t, mux, http.MethodPost, "/cart/1/add/0", "")

	w := do(t, mux, http.MethodGet, "/cart?min_quantity=1", "")
	require.Equal(t, http.StatusOK, w.Code)

	carts := decode[[]cartResponse](t, w)
	require.Len(t, carts, 1)
	assert.Equal(t, int64(1), carts[0].ID)
	assert.Equal(t, 3.0, carts[0].Price)
}

func TestListCarts_InvalidParams(t *testing.T) {
	mux := newTestMux()

	for _, query := range []string{
		"?offset=-1",
		"?limit=0",
		"?min_quantity=-1",
		"?max_quantity=-2",
		"?min_price=-1",
		"?max_quantity=lots",
	} {
		w := do(t, mux, http.MethodGet, "/cart"+query, "")
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code, "query %s", query)
	}
}

func TestErrorBodyShape(t *testing.T) {
	mux := newTestMux()

	w := do(t, mux, http.MethodGet, "/item/42", "")
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var body struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, http.StatusNotFound, body.Code)
	assert.NotEmpty(t, body.Message)
}
