package handler

import (
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/shopspring/decimal"

	"github.com/xenking/shop-api/internal/domain/cart"
	"github.com/xenking/shop-api/internal/domain/item"
	"github.com/xenking/shop-api/internal/domain/listing"
)

// maxBodyBytes caps request bodies; item payloads are tiny.
const maxBodyBytes = 1 << 16

func writeJSON(w http.ResponseWriter, status int, e *jx.Encoder) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(e.Bytes())
}

// writeError emits the {code, message} error body shared by all endpoints.
func writeError(w http.ResponseWriter, status int, msg string) {
	var e jx.Encoder
	e.ObjStart()
	e.FieldStart("code")
	e.Int(status)
	e.FieldStart("message")
	e.Str(msg)
	e.ObjEnd()
	writeJSON(w, status, &e)
}

func encodeItem(e *jx.Encoder, it item.Item) {
	e.ObjStart()
	e.FieldStart("id")
	e.Int64(it.ID)
	e.FieldStart("name")
	e.Str(it.Name)
	e.FieldStart("price")
	e.Float64(it.Price.InexactFloat64())
	e.FieldStart("deleted")
	e.Bool(it.Deleted)
	e.ObjEnd()
}

func encodeCart(e *jx.Encoder, c cart.Cart) {
	e.ObjStart()
	e.FieldStart("id")
	e.Int64(c.ID)
	e.FieldStart("items")
	e.ArrStart()
	for _, l := range c.Items {
		e.ObjStart()
		e.FieldStart("id")
		e.Int64(l.ItemID)
		e.FieldStart("item_name")
		e.Str(l.ItemName)
		e.FieldStart("quantity")
		e.Int(l.Quantity)
		e.FieldStart("available")
		e.Bool(l.Available)
		e.ObjEnd()
	}
	e.ArrEnd()
	e.FieldStart("price")
	e.Float64(c.Price.InexactFloat64())
	e.ObjEnd()
}

// itemPayload is the decoded create/update body. Presence flags distinguish
// an absent field from a zero value.
type itemPayload struct {
	name     string
	price    decimal.Decimal
	hasName  bool
	hasPrice bool
}

func decodeItemPayload(r *http.Request) (itemPayload, error) {
	var p itemPayload

	data, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return p, errors.Wrap(err, "read body")
	}

	d := jx.DecodeBytes(data)
	if err := d.Obj(func(d *jx.Decoder, key string) error {
		switch key {
		case "name":
			s, err := d.Str()
			if err != nil {
				return err
			}
			p.name, p.hasName = s, true
			return nil
		case "price":
			f, err := d.Float64()
			if err != nil {
				return err
			}
			p.price, p.hasPrice = decimal.NewFromFloat(f), true
			return nil
		default:
			return d.Skip()
		}
	}); err != nil {
		return p, errors.Wrap(err, "decode body")
	}

	return p, nil
}

// decodeItemPatch decodes a partial-update body. Unlike create/update, every
// field is optional but unknown fields are rejected.
func decodeItemPatch(r *http.Request) (item.Patch, error) {
	var p item.Patch

	data, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return p, errors.Wrap(err, "read body")
	}

	d := jx.DecodeBytes(data)
	if err := d.Obj(func(d *jx.Decoder, key string) error {
		switch key {
		case "name":
			s, err := d.Str()
			if err != nil {
				return err
			}
			p.Name = &s
			return nil
		case "price":
			f, err := d.Float64()
			if err != nil {
				return err
			}
			price := decimal.NewFromFloat(f)
			p.Price = &price
			return nil
		default:
			return errors.Errorf("unknown field %q", key)
		}
	}); err != nil {
		return item.Patch{}, errors.Wrap(err, "decode body")
	}

	return p, nil
}

// pathID parses an integer path segment.
func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil {
		return 0, errors.Wrapf(err, "parse %s", name)
	}
	return id, nil
}

// queryPage parses offset/limit with the service defaults (0, 10). Range
// validation is left to the store so parse errors and range errors surface
// through the same invalid-query path.
func queryPage(q url.Values) (listing.Page, error) {
	page := listing.Page{Offset: 0, Limit: 10}

	if v := q.Get("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return page, errors.Wrap(listing.ErrInvalidQuery, "offset must be an integer")
		}
		page.Offset = n
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return page, errors.Wrap(listing.ErrInvalidQuery, "limit must be an integer")
		}
		page.Limit = n
	}
	return page, nil
}

func queryDecimal(q url.Values, key string) (*decimal.Decimal, error) {
	v := q.Get(key)
	if v == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(v)
	if err != nil {
		return nil, errors.Wrapf(listing.ErrInvalidQuery, "%s must be a number", key)
	}
	return &d, nil
}

func queryInt(q url.Values, key string) (*int, error) {
	v := q.Get(key)
	if v == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return nil, errors.Wrapf(listing.ErrInvalidQuery, "%s must be an integer", key)
	}
	return &n, nil
}

func queryBool(q url.Values, key string) (bool, error) {
	v := q.Get(key)
	if v == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, errors.Wrapf(listing.ErrInvalidQuery, "%s must be a boolean", key)
	}
	return b, nil
}
