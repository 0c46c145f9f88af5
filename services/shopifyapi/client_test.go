package shopifyapi

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/MarcGrol/campaignbackend/lib/myerrors"
)

func TestCreateOrder(t *testing.T) {
	c := context.TODO()

	server := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/admin/api/2024-10/orders.json", r.URL.Path)
		assert.Equal(t, "my_token", r.Header.Get("X-Shopify-Access-Token"))

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		fmt.Fprint(w, `{"order":{"id":1001,"name":"#1001","financial_status":"paid"}}`)
	})
	defer server.Close()

	client := newTestClient(server)

	order, err := client.CreateOrder(c, Order{
		Email:           "marc@home.nl",
		FinancialStatus: "paid",
		LineItems: []LineItem{
			{VariantUID: 42, Quantity: 2, Price: "25.00"},
		},
	})
	assert.NoError(t, err)
	assert.Equal(t, int64(1001), order.UID)
	assert.Equal(t, "#1001", order.Name)
}

func TestCreateOrderValidationError(t *testing.T) {
	c := context.TODO()

	server := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		fmt.Fprint(w, `{"errors":{"line_items":["Variant does not exist"]}}`)
	})
	defer server.Close()

	client := newTestClient(server)

	_, err := client.CreateOrder(c, Order{})
	assert.Error(t, err)
	assert.True(t, myerrors.IsValidationError(err))
	assert.False(t, myerrors.IsRetryable(err))
	assert.Contains(t, err.Error(), "Variant does not exist")
}

func TestCreateOrderServerError(t *testing.T) {
	c := context.TODO()

	server := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	defer server.Close()

	client := newTestClient(server)

	_, err := client.CreateOrder(c, Order{})
	assert.Error(t, err)
	assert.True(t, myerrors.IsTransportError(err))
	assert.True(t, myerrors.IsRetryable(err))
}

func TestCompleteDraftOrder(t *testing.T) {
	c := context.TODO()

	server := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/admin/api/2024-10/draft_orders/55/complete.json", r.URL.Path)
		assert.Equal(t, "true", r.URL.Query().Get("payment_pending"))

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"draft_order":{"id":55,"name":"#1002","order_id":1002}}`)
	})
	defer server.Close()

	client := newTestClient(server)

	order, err := client.CompleteDraftOrder(c, 55)
	assert.NoError(t, err)
	assert.Equal(t, int64(1002), order.UID)
}

func TestGetProductMetafields(t *testing.T) {
	c := context.TODO()

	server := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/admin/api/2024-10/products/7/metafields.json", r.URL.Path)

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"metafields":[{"namespace":"custom","key":"campaign_total_raised","type":"number_decimal","value":"50.00"}]}`)
	})
	defer server.Close()

	client := newTestClient(server)

	metafields, err := client.GetProductMetafields(c, 7)
	assert.NoError(t, err)
	assert.Len(t, metafields, 1)
	assert.Equal(t, "custom", metafields[0].Namespace)
	assert.Equal(t, "50.00", metafields[0].Value)
}

func TestSetMetafields(t *testing.T) {
	c := context.TODO()

	server := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/admin/api/2024-10/products/7.json", r.URL.Path)

		body, err := io.ReadAll(r.Body)
		assert.NoError(t, err)
		assert.Contains(t, string(body), `"campaign_total_raised"`)

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"product":{"id":7}}`)
	})
	defer server.Close()

	client := newTestClient(server)

	err := client.SetMetafields(c, 7, []Metafield{
		{Namespace: "custom", Key: "campaign_total_raised", Type: "number_decimal", Value: "65.00"},
	})
	assert.NoError(t, err)
}

func TestAmountInCents(t *testing.T) {
	assert.Equal(t, "65.00", AmountInCents(6500))
	assert.Equal(t, "0.05", AmountInCents(5))
	assert.Equal(t, "12.34", AmountInCents(1234))
}

func newTestServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	return httptest.NewTLSServer(handler)
}

func newTestClient(server *httptest.Server) *Client {
	client := NewClient(Config{
		StoreDomain: strings.TrimPrefix(server.URL, "https://"),
		APIToken:    "my_token",
		APIVersion:  "2024-10",
	})
	client.httpClient = server.Client()
	return client
}
