package fulfillment

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stripe/stripe-go/v74"
	"github.com/stripe/stripe-go/v74/webhook"
	"go.uber.org/mock/gomock"

	"github.com/MarcGrol/campaignbackend/lib/myerrors"
	"github.com/MarcGrol/campaignbackend/lib/mypublisher"
	"github.com/MarcGrol/campaignbackend/lib/myretry"
	"github.com/MarcGrol/campaignbackend/lib/mytime"
	"github.com/MarcGrol/campaignbackend/services/campaign"
	"github.com/MarcGrol/campaignbackend/services/fulfillment/fulfillmentevents"
	"github.com/MarcGrol/campaignbackend/services/orderapi"
	"github.com/MarcGrol/campaignbackend/services/shopifyapi"
)

const testWebhookSecret = "whsec_test_secret"

func TestCheckoutConfirm(t *testing.T) {

	t.Run("Successful reconciliation creates one order", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		router, payer, orderAPI, progress, nower, publisher := setup(t, ctrl)

		// given
		payer.EXPECT().GetPaymentIntent(gomock.Any(), "pi_1").Return(succeededIntent(nil), nil)
		orderAPI.EXPECT().CreateOrder(gomock.Any(), gomock.Any()).DoAndReturn(
			func(c context.Context, order shopifyapi.Order) (shopifyapi.Order, error) {
				assert.Equal(t, "paid", order.FinancialStatus)
				assert.Contains(t, order.NoteAttributes, shopifyapi.NoteAttribute{Name: "stripe_payment_intent_id", Value: "pi_1"})
				assert.Contains(t, order.NoteAttributes, shopifyapi.NoteAttribute{Name: "campaign_id", Value: "7"})
				assert.Len(t, order.Transactions, 1)
				assert.Equal(t, "65.00", order.Transactions[0].Amount)
				assert.Equal(t, "ch_1", order.Transactions[0].Authorization)
				return shopifyapi.Order{UID: 1001, Name: "#1001"}, nil
			})
		progress.EXPECT().ApplyDelta(gomock.Any(), "7", campaign.ProgressDelta{
			Quantity:      2,
			Backers:       1,
			AmountInCents: 6500,
		}).Return(nil)
		nower.EXPECT().Now().Return(mytime.ExampleTime).AnyTimes()
		progress.EXPECT().AppendBackerEntry(gomock.Any(), "7", campaign.BackerFeedEntry{
			Name:      "Marc Grol",
			Quantity:  2,
			Amount:    "65.00",
			Timestamp: mytime.ExampleTime,
			Location:  "Utrecht",
			OrderRef:  "#1001",
		}).Return(nil)
		payer.EXPECT().UpdateMetadata(gomock.Any(), "pi_1", gomock.Any()).Return(nil)
		publisher.EXPECT().Publish(gomock.Any(), fulfillmentevents.TopicName, fulfillmentevents.FulfillmentCompleted{
			PaymentRef:    "pi_1",
			OrderUID:      "1001",
			OrderRef:      "#1001",
			CampaignUID:   "7",
			CampaignName:  "Bake for Good",
			Quantity:      2,
			AmountInCents: 6500,
			BackerName:    "Marc Grol",
			BackerEmail:   "marc@home.nl",
			BackerCity:    "Utrecht",
		}).Return(nil)

		// when
		response := doConfirm(t, router, "pi_1")

		// then
		assert.Equal(t, 200, response.Code)
		resp := parseConfirmResponse(t, response)
		assert.True(t, resp.Success)
		assert.Equal(t, "1001", resp.OrderUID)
		assert.Equal(t, "#1001", resp.OrderName)
	})

	t.Run("Already fulfilled payment short-circuits without writes", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		router, payer, _, _, _, _ := setup(t, ctrl)

		// given
		payer.EXPECT().GetPaymentIntent(gomock.Any(), "pi_1").Return(succeededIntent(map[string]string{
			"fulfillment_order_id":     "1001",
			"fulfillment_order_ref":    "#1001",
			"fulfillment_completed_at": "2025-03-01T12:34:56Z",
		}), nil)

		// when
		response := doConfirm(t, router, "pi_1")

		// then
		assert.Equal(t, 200, response.Code)
		resp := parseConfirmResponse(t, response)
		assert.True(t, resp.Success)
		assert.Equal(t, "1001", resp.OrderUID)
	})

	t.Run("Payment not succeeded is rejected", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		router, payer, _, _, _, _ := setup(t, ctrl)

		// given
		intent := succeededIntent(nil)
		intent.Status = stripe.PaymentIntentStatusRequiresAction
		payer.EXPECT().GetPaymentIntent(gomock.Any(), "pi_1").Return(intent, nil)

		// when
		response := doConfirm(t, router, "pi_1")

		// then
		assert.Equal(t, 400, response.Code)
		resp := parseConfirmResponse(t, response)
		assert.False(t, resp.Success)
		assert.Contains(t, resp.Error, "not succeeded")
	})

	t.Run("Terminal materialization failure is surfaced after a single attempt", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		router, payer, orderAPI, _, _, publisher := setup(t, ctrl)

		// given
		payer.EXPECT().GetPaymentIntent(gomock.Any(), "pi_1").Return(succeededIntent(nil), nil)
		orderAPI.EXPECT().CreateOrder(gomock.Any(), gomock.Any()).
			Return(shopifyapi.Order{}, myerrors.NewValidationError(fmt.Errorf("Variant does not exist"))).
			Times(1)
		publisher.EXPECT().Publish(gomock.Any(), fulfillmentevents.TopicName, gomock.AssignableToTypeOf(fulfillmentevents.FulfillmentFailed{})).Return(nil)

		// when
		response := doConfirm(t, router, "pi_1")

		// then
		assert.Equal(t, 400, response.Code)
		resp := parseConfirmResponse(t, response)
		assert.False(t, resp.Success)
	})

	t.Run("Transport failure is retried three times", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		router, payer, orderAPI, _, _, publisher := setup(t, ctrl)

		// given
		payer.EXPECT().GetPaymentIntent(gomock.Any(), "pi_1").Return(succeededIntent(nil), nil)
		orderAPI.EXPECT().CreateOrder(gomock.Any(), gomock.Any()).
			Return(shopifyapi.Order{}, myerrors.NewTransportError(fmt.Errorf("connection refused"))).
			Times(3)
		publisher.EXPECT().Publish(gomock.Any(), fulfillmentevents.TopicName, gomock.AssignableToTypeOf(fulfillmentevents.FulfillmentFailed{})).Return(nil)

		// when
		response := doConfirm(t, router, "pi_1")

		// then
		assert.Equal(t, 502, response.Code)
		resp := parseConfirmResponse(t, response)
		assert.False(t, resp.Success)
		assert.Contains(t, resp.Error, "retries exhausted")
	})

	t.Run("Partial progress failure still reports success", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		router, payer, orderAPI, progress, nower, publisher := setup(t, ctrl)

		// given
		payer.EXPECT().GetPaymentIntent(gomock.Any(), "pi_1").Return(succeededIntent(nil), nil)
		orderAPI.EXPECT().CreateOrder(gomock.Any(), gomock.Any()).Return(shopifyapi.Order{UID: 1001, Name: "#1001"}, nil)
		progress.EXPECT().ApplyDelta(gomock.Any(), "7", gomock.Any()).
			Return(myerrors.NewTransportError(fmt.Errorf("progress store down"))).
			Times(3)
		nower.EXPECT().Now().Return(mytime.ExampleTime).AnyTimes()
		progress.EXPECT().AppendBackerEntry(gomock.Any(), "7", gomock.Any()).Return(nil)
		payer.EXPECT().UpdateMetadata(gomock.Any(), "pi_1", gomock.Any()).Return(nil)
		publisher.EXPECT().Publish(gomock.Any(), fulfillmentevents.TopicName, gomock.AssignableToTypeOf(fulfillmentevents.FulfillmentCompleted{})).Return(nil)

		// when
		response := doConfirm(t, router, "pi_1")

		// then
		assert.Equal(t, 200, response.Code)
		resp := parseConfirmResponse(t, response)
		assert.True(t, resp.Success)
	})
}

func TestWebhook(t *testing.T) {

	t.Run("Invalid signature is rejected", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		router, _, _, _, _, _ := setup(t, ctrl)

		// when
		request := httptest.NewRequest(http.MethodPost, "/webhooks/payment", strings.NewReader(`{}`))
		request.Header.Set("Stripe-Signature", "t=1,v1=deadbeef")
		response := httptest.NewRecorder()
		router.ServeHTTP(response, request)

		// then
		assert.Equal(t, 401, response.Code)
		assert.Contains(t, response.Body.String(), "invalid signature")
	})

	t.Run("Unsupported method is rejected", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		router, _, _, _, _, _ := setup(t, ctrl)

		// when
		request := httptest.NewRequest(http.MethodGet, "/webhooks/payment", nil)
		response := httptest.NewRecorder()
		router.ServeHTTP(response, request)

		// then
		assert.Equal(t, 405, response.Code)
	})

	t.Run("Unrecognized event type is accepted and ignored", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		router, _, _, _, _, _ := setup(t, ctrl)

		// when
		response := doWebhook(t, router, webhookPayload(t, "customer.created", map[string]interface{}{"id": "cus_1"}))

		// then
		assert.Equal(t, 200, response.Code)
		assert.Contains(t, response.Body.String(), `"received": true`)
	})

	t.Run("Payment failed event is logged and acknowledged", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		router, _, _, _, _, _ := setup(t, ctrl)

		// when
		response := doWebhook(t, router, webhookPayload(t, "payment_intent.payment_failed", map[string]interface{}{
			"id":       "pi_1",
			"amount":   6500,
			"metadata": map[string]string{"campaign_id": "7"},
		}))

		// then
		assert.Equal(t, 200, response.Code)
	})

	t.Run("Replayed succeeded event observes already-fulfilled and writes nothing", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		router, payer, _, _, _, _ := setup(t, ctrl)

		// given
		payer.EXPECT().GetPaymentIntent(gomock.Any(), "pi_1").Return(succeededIntent(map[string]string{
			"fulfillment_order_id":  "1001",
			"fulfillment_order_ref": "#1001",
		}), nil)

		orderJSON, err := json.Marshal(testOrder())
		assert.NoError(t, err)

		// when
		response := doWebhook(t, router, webhookPayload(t, "payment_intent.succeeded", map[string]interface{}{
			"id":     "pi_1",
			"status": "succeeded",
			"amount": 6500,
			"metadata": map[string]string{
				"campaign_id": "7",
				"order_data":  string(orderJSON),
			},
		}))

		// then
		assert.Equal(t, 200, response.Code)
		assert.Contains(t, response.Body.String(), `"received": true`)
	})

	t.Run("Succeeded event without order data fails so the processor redelivers", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		router, _, _, _, _, _ := setup(t, ctrl)

		// when
		response := doWebhook(t, router, webhookPayload(t, "payment_intent.succeeded", map[string]interface{}{
			"id":       "pi_1",
			"status":   "succeeded",
			"amount":   6500,
			"metadata": map[string]string{"campaign_id": "7"},
		}))

		// then
		assert.Equal(t, 500, response.Code)
		assert.Contains(t, response.Body.String(), "no order data")
	})
}

func TestCheckoutStart(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	// setup
	router, payer, _, _, _, _ := setup(t, ctrl)

	// given
	payer.EXPECT().CreatePaymentIntent(gomock.Any(), gomock.Any()).DoAndReturn(
		func(c context.Context, params stripe.PaymentIntentParams) (stripe.PaymentIntent, error) {
			assert.Equal(t, int64(6500), *params.Amount)
			assert.Equal(t, "7", params.Metadata["campaign_id"])
			assert.NotEmpty(t, params.Metadata["order_data"])
			return stripe.PaymentIntent{ID: "pi_1", ClientSecret: "pi_1_secret", Amount: 6500}, nil
		})

	// when
	form := `campaignUid=7&campaignName=Bake for Good` +
		`&items[0].variantUid=42&items[0].quantity=2&items[0].unitPriceInCents=2500` +
		`&delivery.method=shipping&delivery.priceInCents=1500` +
		`&customer.name=Marc Grol&customer.email=marc@home.nl` +
		`&customer.address.street=My street 79&customer.address.city=Utrecht&customer.address.postalCode=1234AB`
	request := httptest.NewRequest(http.MethodPost, "/checkout/start", strings.NewReader(form))
	request.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	response := httptest.NewRecorder()
	router.ServeHTTP(response, request)

	// then
	assert.Equal(t, 200, response.Code)
	assert.Contains(t, response.Body.String(), "pi_1_secret")
}

func setup(t *testing.T, ctrl *gomock.Controller) (*mux.Router, *MockPayer, *shopifyapi.MockOrderAPI, *campaign.MockProgress, *mytime.MockNower, *mypublisher.MockPublisher) {
	c := context.TODO()
	payer := NewMockPayer(ctrl)
	orderAPI := shopifyapi.NewMockOrderAPI(ctrl)
	progress := campaign.NewMockProgress(ctrl)
	nower := mytime.NewMockNower(ctrl)
	publisher := mypublisher.NewMockPublisher(ctrl)

	payer.EXPECT().UseAPIKey("my_api_key")
	publisher.EXPECT().CreateTopic(gomock.Any(), fulfillmentevents.TopicName).Return(nil)

	sut, err := NewWebService(Config{
		StripeAPIKey:        "my_api_key",
		StripeWebhookSecret: testWebhookSecret,
		Strategy:            StrategyDirect,
	}, payer, orderAPI, progress, publisher, nower)
	assert.NoError(t, err)

	// no real sleeping between retry attempts
	sut.service.retrier = myretry.NewWithSleeper(func(c context.Context, d time.Duration) error {
		return nil
	})

	router := mux.NewRouter()
	err = sut.RegisterEndpoints(c, router)
	assert.NoError(t, err)

	return router, payer, orderAPI, progress, nower, publisher
}

func testOrder() orderapi.CampaignOrder {
	return orderapi.CampaignOrder{
		CampaignUID:  "7",
		CampaignName: "Bake for Good",
		Items: []orderapi.Item{
			{VariantUID: "42", Name: "Choc Chip Dozen", Quantity: 2, UnitPriceInCents: 2500},
		},
		Delivery: orderapi.Delivery{
			Method:       orderapi.DeliveryMethodShipping,
			PriceInCents: 1500,
		},
		Customer: orderapi.Customer{
			Name:  "Marc Grol",
			Email: "marc@home.nl",
			Address: &orderapi.Address{
				Street:     "My street 79",
				City:       "Utrecht",
				PostalCode: "1234AB",
				Country:    "NL",
			},
		},
	}
}

func succeededIntent(metadata map[string]string) stripe.PaymentIntent {
	return stripe.PaymentIntent{
		ID:           "pi_1",
		Status:       stripe.PaymentIntentStatusSucceeded,
		Amount:       6500,
		Metadata:     metadata,
		LatestCharge: &stripe.Charge{ID: "ch_1"},
	}
}

func doConfirm(t *testing.T, router *mux.Router, paymentRef string) *httptest.ResponseRecorder {
	body := struct {
		PaymentIntentID string                 `json:"paymentIntentId"`
		OrderData       orderapi.CampaignOrder `json:"orderData"`
	}{
		PaymentIntentID: paymentRef,
		OrderData:       testOrder(),
	}
	jsonBytes, err := json.Marshal(body)
	assert.NoError(t, err)

	request := httptest.NewRequest(http.MethodPost, "/checkout/confirm", strings.NewReader(string(jsonBytes)))
	request.Header.Set("Content-Type", "application/json")
	response := httptest.NewRecorder()
	router.ServeHTTP(response, request)

	return response
}

func parseConfirmResponse(t *testing.T, response *httptest.ResponseRecorder) confirmResponse {
	resp := confirmResponse{}
	err := json.Unmarshal(response.Body.Bytes(), &resp)
	assert.NoError(t, err)
	return resp
}

func webhookPayload(t *testing.T, eventType string, object map[string]interface{}) string {
	payload, err := json.Marshal(map[string]interface{}{
		"id":          "evt_1",
		"api_version": stripe.APIVersion,
		"type":        eventType,
		"data": map[string]interface{}{
			"object": object,
		},
	})
	assert.NoError(t, err)
	return string(payload)
}

func doWebhook(t *testing.T, router *mux.Router, payload string) *httptest.ResponseRecorder {
	request := httptest.NewRequest(http.MethodPost, "/webhooks/payment", strings.NewReader(payload))

	now := time.Now()
	signature := webhook.ComputeSignature(now, []byte(payload), testWebhookSecret)
	request.Header.Set("Stripe-Signature", fmt.Sprintf("t=%d,v1=%s", now.Unix(), hex.EncodeToString(signature)))

	response := httptest.NewRecorder()
	router.ServeHTTP(response, request)

	return response
}
