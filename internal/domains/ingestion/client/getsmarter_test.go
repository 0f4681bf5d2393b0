package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func productAPIServer(t *testing.T) (*httptest.Server, *string) {
	t.Helper()
	var seenAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/token":
			require.NoError(t, r.ParseForm())
			assert.Equal(t, "client_credentials", r.FormValue("grant_type"))
			assert.Equal(t, "client-id", r.FormValue("client_id"))
			json.NewEncoder(w).Encode(map[string]string{"access_token": "oauth-token"})
		case "/products/":
			seenAuth = r.Header.Get("Authorization")
			assert.Equal(t, "2", r.URL.Query().Get("detail"))
			json.NewEncoder(w).Encode(map[string]interface{}{
				"products": []map[string]interface{}{
					{"id": "12345", "name": "Supply Chain Design"},
				},
			})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(server.Close)
	return server, &seenAuth
}

func TestGetProductsWithFixedToken(t *testing.T) {
	server, seenAuth := productAPIServer(t)
	api := NewProductAPIClient(server.URL+"/products", "", "", "", "fixed-token")

	products, err := api.GetProducts(context.Background())
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "Supply Chain Design", products[0].Name)
	assert.Equal(t, "Bearer fixed-token", *seenAuth)
}

func TestGetProductsWithClientCredentials(t *testing.T) {
	server, seenAuth := productAPIServer(t)
	api := NewProductAPIClient(server.URL+"/products", server.URL+"/token", "client-id", "client-secret", "")

	products, err := api.GetProducts(context.Background())
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "Bearer oauth-token", *seenAuth)
}

func TestGetProductsErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	t.Cleanup(server.Close)

	api := NewProductAPIClient(server.URL, "", "", "", "fixed-token")
	_, err := api.GetProducts(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 502")
}

func TestAllVariantsFlattening(t *testing.T) {
	product := Product{
		Variant:             &Variant{ID: "a"},
		Variants:            []Variant{{ID: "b"}},
		FutureVariants:      []Variant{{ID: "c"}},
		CustomPresentations: []Variant{{ID: "d"}},
	}

	variants := product.AllVariants()
	require.Len(t, variants, 4)
	assert.Equal(t, "c", variants[2].ID)
	assert.True(t, variants[2].Future)
	assert.False(t, variants[1].Future)
}

func TestVariantPredicates(t *testing.T) {
	assert.True(t, (&Variant{WebsiteVisibility: "Private"}).Restricted())
	assert.False(t, (&Variant{WebsiteVisibility: "public"}).Restricted())

	assert.True(t, (&Variant{Status: "Scheduled"}).Scheduled())
	assert.True(t, (&Variant{Future: true}).Scheduled())
	assert.False(t, (&Variant{Status: "active"}).Scheduled())
}
