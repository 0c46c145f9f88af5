package shopifyapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/MarcGrol/campaignbackend/lib/myerrors"
	"github.com/MarcGrol/campaignbackend/lib/mylog"
)

const requestTimeout = 20 * time.Second

type Client struct {
	config     Config
	logger     mylog.Logger
	httpClient *http.Client
}

// NewClient returns a client that implements both OrderAPI and MetafieldAPI
// against the commerce backend's REST admin API.
func NewClient(config Config) *Client {
	return &Client{
		config: config,
		logger: mylog.New("shopifyapi"),
		httpClient: &http.Client{
			Timeout: requestTimeout,
		},
	}
}

func (s *Client) CreateOrder(c context.Context, order Order) (Order, error) {
	req := struct {
		Order Order `json:"order"`
	}{Order: order}
	resp := struct {
		Order Order `json:"order"`
	}{}

	err := s.send(c, http.MethodPost, "/orders.json", req, &resp)
	if err != nil {
		return Order{}, err
	}

	return resp.Order, nil
}

func (s *Client) CreateDraftOrder(c context.Context, draft DraftOrder) (DraftOrder, error) {
	req := struct {
		DraftOrder DraftOrder `json:"draft_order"`
	}{DraftOrder: draft}
	resp := struct {
		DraftOrder DraftOrder `json:"draft_order"`
	}{}

	err := s.send(c, http.MethodPost, "/draft_orders.json", req, &resp)
	if err != nil {
		return DraftOrder{}, err
	}

	return resp.DraftOrder, nil
}

func (s *Client) CompleteDraftOrder(c context.Context, draftOrderUID int64) (Order, error) {
	resp := struct {
		DraftOrder DraftOrder `json:"draft_order"`
	}{}

	err := s.send(c, http.MethodPut, fmt.Sprintf("/draft_orders/%d/complete.json?payment_pending=true", draftOrderUID), nil, &resp)
	if err != nil {
		return Order{}, err
	}

	// Completing a draft yields the real order
	return Order{
		UID:  resp.DraftOrder.OrderUID,
		Name: resp.DraftOrder.Name,
	}, nil
}

func (s *Client) CreateTransaction(c context.Context, orderUID int64, transaction Transaction) error {
	req := struct {
		Transaction Transaction `json:"transaction"`
	}{Transaction: transaction}

	return s.send(c, http.MethodPost, fmt.Sprintf("/orders/%d/transactions.json", orderUID), req, nil)
}

func (s *Client) SendInvoice(c context.Context, draftOrderUID int64) error {
	req := struct {
		DraftOrderInvoice struct{} `json:"draft_order_invoice"`
	}{}

	return s.send(c, http.MethodPost, fmt.Sprintf("/draft_orders/%d/send_invoice.json", draftOrderUID), req, nil)
}

func (s *Client) GetProductMetafields(c context.Context, productUID int64) ([]Metafield, error) {
	resp := struct {
		Metafields []Metafield `json:"metafields"`
	}{}

	err := s.send(c, http.MethodGet, fmt.Sprintf("/products/%d/metafields.json", productUID), nil, &resp)
	if err != nil {
		return nil, err
	}

	return resp.Metafields, nil
}

func (s *Client) SetMetafields(c context.Context, productUID int64, metafields []Metafield) error {
	// One batched product update carries all fields at once
	req := struct {
		Product struct {
			UID        int64       `json:"id"`
			Metafields []Metafield `json:"metafields"`
		} `json:"product"`
	}{}
	req.Product.UID = productUID
	req.Product.Metafields = metafields

	return s.send(c, http.MethodPut, fmt.Sprintf("/products/%d.json", productUID), req, nil)
}

func (s *Client) send(c context.Context, method string, path string, reqBody interface{}, respBody interface{}) error {
	url := fmt.Sprintf("https://%s/admin/api/%s%s", s.config.StoreDomain, s.config.APIVersion, path)

	var reader io.Reader
	if reqBody != nil {
		jsonBytes, err := json.Marshal(reqBody)
		if err != nil {
			return myerrors.NewInternalError(fmt.Errorf("error marshalling request for %s %s: %s", method, path, err))
		}
		reader = bytes.NewReader(jsonBytes)
	}

	httpReq, err := http.NewRequestWithContext(c, method, url, reader)
	if err != nil {
		return myerrors.NewInternalError(fmt.Errorf("error creating request for %s %s: %s", method, path, err))
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("X-Shopify-Access-Token", s.config.APIToken)

	httpResp, err := s.httpClient.Do(httpReq)
	if err != nil {
		return myerrors.NewTransportError(fmt.Errorf("error sending %s %s: %s", method, path, err))
	}
	defer httpResp.Body.Close()

	respPayload, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return myerrors.NewTransportError(fmt.Errorf("error reading response of %s %s: %s", method, path, err))
	}

	s.logger.Log(c, path, mylog.SeverityDebug, "%s %s -> %d", method, path, httpResp.StatusCode)

	if httpResp.StatusCode >= 500 {
		return myerrors.NewTransportError(fmt.Errorf("%s %s returned status %d", method, path, httpResp.StatusCode))
	}
	if httpResp.StatusCode >= 400 {
		return myerrors.NewValidationError(fmt.Errorf("%s %s returned status %d: %s", method, path, httpResp.StatusCode, flattenErrors(respPayload)))
	}

	if respBody != nil && len(respPayload) > 0 {
		err = json.Unmarshal(respPayload, respBody)
		if err != nil {
			return myerrors.NewTransportError(fmt.Errorf("error parsing response of %s %s: %s", method, path, err))
		}
	}

	return nil
}

// flattenErrors turns the admin API's error body (a string or a field->messages map)
// into one readable line
func flattenErrors(payload []byte) string {
	wrapper := struct {
		Errors json.RawMessage `json:"errors"`
	}{}
	err := json.Unmarshal(payload, &wrapper)
	if err != nil || len(wrapper.Errors) == 0 {
		return string(payload)
	}

	var asString string
	if json.Unmarshal(wrapper.Errors, &asString) == nil {
		return asString
	}

	var asMap map[string][]string
	if json.Unmarshal(wrapper.Errors, &asMap) == nil {
		fields := make([]string, 0, len(asMap))
		for field := range asMap {
			fields = append(fields, field)
		}
		sort.Strings(fields)

		parts := make([]string, 0, len(fields))
		for _, field := range fields {
			parts = append(parts, fmt.Sprintf("%s: %s", field, strings.Join(asMap[field], ", ")))
		}
		return strings.Join(parts, "; ")
	}

	return string(wrapper.Errors)
}
