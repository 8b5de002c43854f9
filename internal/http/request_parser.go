// Package http provides the JSON API server and its handlers.
//
// This file implements request decoding: JSON bodies into validated DTOs
// and query strings into domain queries.

package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/raiyan37/Centinel/internal/core"
)

const maxBodyBytes = 1 << 20

var validate = validator.New(validator.WithRequiredStructEnabled())

func init() {
	// Report JSON field names rather than Go field names
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
}

// requestError is a malformed request, as opposed to a well-formed request
// with invalid values.
type requestError struct {
	message string
	fields  []FieldError
}

func (e *requestError) Error() string {
	return e.message
}

// decodeJSON reads a single JSON object into dst and validates it.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		var verr *core.ValidationError
		var maxErr *http.MaxBytesError
		switch {
		case errors.As(err, &verr):
			return verr
		case errors.As(err, &maxErr):
			return &requestError{message: "request body too large"}
		case errors.Is(err, io.EOF):
			return &requestError{message: "request body is empty"}
		default:
			return &requestError{message: "malformed JSON: " + err.Error()}
		}
	}
	if dec.More() {
		return &requestError{message: "request body must contain a single JSON object"}
	}

	if fields := ValidateRequest(dst); len(fields) > 0 {
		return &requestError{message: "invalid request data", fields: fields}
	}
	return nil
}

// ValidateRequest runs struct-tag validation and returns one entry per
// rejected field.
func ValidateRequest(obj any) []FieldError {
	err := validate.Struct(obj)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []FieldError{{Field: "", Message: err.Error()}}
	}

	out := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, FieldError{
			Field:   fe.Field(),
			Message: validationMessage(fe),
			Type:    fe.Tag(),
		})
	}
	return out
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return "is too short"
	case "max":
		return "is too long (max " + fe.Param() + " characters)"
	case "gte":
		return "must be at least " + fe.Param()
	default:
		return "is invalid"
	}
}

// parseAmount converts a JSON number or numeric string to a cent-precision decimal.
func parseAmount(n *json.Number) (decimal.Decimal, error) {
	if n == nil {
		return decimal.Zero, nil
	}
	return core.ParseAmount(n.String())
}

// parseTransactionQuery reads paging, search, sort and category parameters.
func parseTransactionQuery(q url.Values) (core.TransactionQuery, error) {
	var query core.TransactionQuery
	var err error

	if query.Page, err = intParam(q, "page"); err != nil {
		return query, err
	}
	if query.Limit, err = intParam(q, "limit"); err != nil {
		return query, err
	}
	if query.Sort, err = core.ParseSortOption(q.Get("sort")); err != nil {
		return query, err
	}
	query.Search = sanitizeInput(q.Get("search"))

	category := strings.TrimSpace(q.Get("category"))
	// "All Transactions" is how clients ask for no category filter
	if category != "" && !strings.EqualFold(category, "all") && !strings.EqualFold(category, "all transactions") {
		query.Category = core.Category(category)
	}

	return query.Normalize()
}

func intParam(q url.Values, name string) (int, error) {
	v := strings.TrimSpace(q.Get(name))
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, &core.ValidationError{Field: name, Message: fmt.Sprintf("must be an integer, got %q", v)}
	}
	return n, nil
}
