package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raiyan37/Centinel/internal/core"
)

func TestParseTransactionQuery(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    core.TransactionQuery
		wantErr bool
	}{
		{
			name: "defaults",
			raw:  "",
			want: core.TransactionQuery{Page: 1, Limit: 10, Sort: core.SortLatest},
		},
		{
			name: "all parameters",
			raw:  "page=3&limit=25&search=+coffee+&sort=a+to+z&category=Dining+Out",
			want: core.TransactionQuery{Page: 3, Limit: 25, Search: "coffee", Sort: core.SortAToZ, Category: core.CategoryDiningOut},
		},
		{
			name: "limit is capped",
			raw:  "limit=1000",
			want: core.TransactionQuery{Page: 1, Limit: 100, Sort: core.SortLatest},
		},
		{
			name: "all transactions means no filter",
			raw:  "category=All+Transactions",
			want: core.TransactionQuery{Page: 1, Limit: 10, Sort: core.SortLatest},
		},
		{name: "non numeric page", raw: "page=two", wantErr: true},
		{name: "unknown sort", raw: "sort=Newest", wantErr: true},
		{name: "unknown category", raw: "category=Travel", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			values, err := url.ParseQuery(tt.raw)
			require.NoError(t, err)

			got, err := parseTransactionQuery(values)
			if tt.wantErr {
				assert.ErrorIs(t, err, core.ErrValidation)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecodeJSON(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantFields []string
		wantBad    bool
		wantDomain error
	}{
		{name: "valid", body: `{"name":"Coffee","amount":-3.5,"category":"Dining Out","date":"2025-06-01"}`},
		{name: "amount as string", body: `{"name":"Coffee","amount":"-3.50","category":"Dining Out","date":"2025-06-01"}`},
		{name: "missing fields", body: `{"name":""}`, wantFields: []string{"name", "amount", "category", "date"}},
		{name: "name too long", body: `{"name":"` + strings.Repeat("x", 101) + `","amount":1,"category":"General","date":"2025-06-01"}`, wantFields: []string{"name"}},
		{name: "unknown field", body: `{"name":"Coffee","colour":"red"}`, wantBad: true},
		{name: "empty body", body: ``, wantBad: true},
		{name: "trailing data", body: `{"name":"a"} {"name":"b"}`, wantBad: true},
		{name: "bad date", body: `{"name":"Coffee","amount":1,"category":"General","date":"01/06/2025"}`, wantDomain: core.ErrValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodPost, "/api/transactions", strings.NewReader(tt.body))
			var req createTransactionRequest
			err := decodeJSON(httptest.NewRecorder(), r, &req)

			var rerr *requestError
			switch {
			case tt.wantDomain != nil:
				assert.ErrorIs(t, err, tt.wantDomain)
			case tt.wantBad:
				require.True(t, errors.As(err, &rerr), "got %v", err)
				assert.Empty(t, rerr.fields)
			case tt.wantFields != nil:
				require.True(t, errors.As(err, &rerr), "got %v", err)
				fields := make([]string, 0, len(rerr.fields))
				for _, f := range rerr.fields {
					fields = append(fields, f.Field)
				}
				assert.Equal(t, tt.wantFields, fields)
			default:
				require.NoError(t, err)
				_, err := req.toDomain()
				assert.NoError(t, err)
			}
		})
	}
}

func TestDecodeJSONBodyTooLarge(t *testing.T) {
	body := `{"name":"` + strings.Repeat("x", maxBodyBytes) + `"}`
	r := httptest.NewRequest(http.MethodPost, "/api/pots", strings.NewReader(body))
	var req createPotRequest
	err := decodeJSON(httptest.NewRecorder(), r, &req)

	var rerr *requestError
	require.True(t, errors.As(err, &rerr))
	assert.Equal(t, "request body too large", rerr.message)
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"12.34", "12.34", false},
		{"-0.5", "-0.50", false},
		{"1e2", "100.00", false},
		{"1.005", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			n := json.Number(tt.in)
			got, err := parseAmount(&n)
			if tt.wantErr {
				assert.ErrorIs(t, err, core.ErrInvalidAmount)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.StringFixed(2))
		})
	}
}

func TestSanitizeInput(t *testing.T) {
	assert.Equal(t, "Coffee\tshop", sanitizeInput("  Coffee\t\x00shop\x07 "))
}
