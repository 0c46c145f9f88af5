package fulfillment

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/stripe/stripe-go/v74"
	"github.com/stripe/stripe-go/v74/webhook"

	"github.com/MarcGrol/campaignbackend/lib/mycontext"
	"github.com/MarcGrol/campaignbackend/lib/myerrors"
	"github.com/MarcGrol/campaignbackend/lib/myhttp"
	"github.com/MarcGrol/campaignbackend/lib/mylog"
	"github.com/MarcGrol/campaignbackend/lib/mypublisher"
	"github.com/MarcGrol/campaignbackend/lib/mytime"
	"github.com/MarcGrol/campaignbackend/services/campaign"
	"github.com/MarcGrol/campaignbackend/services/orderapi"
	"github.com/MarcGrol/campaignbackend/services/shopifyapi"
)

const maxWebhookBodySize = 64 * 1024

type webService struct {
	logger        mylog.Logger
	service       *service
	webhookSecret string
}

// Use dependency injection to isolate the infrastructure and easy testing
func NewWebService(cfg Config, payer Payer, orderAPI shopifyapi.OrderAPI, progress campaign.Progress, publisher mypublisher.Publisher, nower mytime.Nower) (*webService, error) {
	logger := mylog.New("fulfillment")
	s, err := newService(cfg, payer, orderAPI, progress, publisher, nower, logger)
	if err != nil {
		return nil, err
	}

	return &webService{
		logger:        logger,
		service:       s,
		webhookSecret: cfg.StripeWebhookSecret,
	}, nil
}

func (s *webService) RegisterEndpoints(c context.Context, router *mux.Router) error {
	router.HandleFunc("/checkout/start", s.checkoutStartPage()).Methods("POST")
	router.HandleFunc("/checkout/confirm", s.checkoutConfirmPage()).Methods("POST")
	router.HandleFunc("/webhooks/payment", s.webhookPage()).Methods("POST")

	return s.service.CreateTopics(c)
}

type checkoutStartResponse struct {
	PaymentIntentID string `json:"paymentIntentId"`
	ClientSecret    string `json:"clientSecret"`
	AmountInCents   int64  `json:"amount"`
}

func (s *webService) checkoutStartPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		order, err := orderapi.NewFromRequest(r)
		if err != nil {
			errorWriter.WriteError(c, w, 1, myerrors.NewInvalidInputError(fmt.Errorf("error parsing request: %s", err)))
			return
		}

		intent, err := s.service.startCheckout(c, order)
		if err != nil {
			errorWriter.WriteError(c, w, 2, err)
			return
		}

		errorWriter.Write(c, w, http.StatusOK, checkoutStartResponse{
			PaymentIntentID: intent.ID,
			ClientSecret:    intent.ClientSecret,
			AmountInCents:   intent.Amount,
		})
	}
}

type confirmRequest struct {
	PaymentIntentID string                 `json:"paymentIntentId"`
	OrderData       orderapi.CampaignOrder `json:"orderData"`
}

type confirmResponse struct {
	Success   bool   `json:"success"`
	OrderUID  string `json:"orderId,omitempty"`
	OrderName string `json:"orderName,omitempty"`
	Error     string `json:"error,omitempty"`
}

// checkoutConfirmPage is the synchronous client-callback path: the storefront
// calls it right after observing payment success
func (s *webService) checkoutConfirmPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		req := confirmRequest{}
		err := json.NewDecoder(r.Body).Decode(&req)
		if err != nil {
			errorWriter.WriteError(c, w, 1, myerrors.NewInvalidInputError(fmt.Errorf("error parsing request: %s", err)))
			return
		}
		if req.PaymentIntentID == "" {
			errorWriter.WriteError(c, w, 2, myerrors.NewInvalidInputError(fmt.Errorf("missing paymentIntentId")))
			return
		}

		result, err := s.service.Reconcile(c, req.PaymentIntentID, req.OrderData)
		if err != nil {
			errorWriter.Write(c, w, myerrors.GetHTTPStatus(err), confirmResponse{
				Success: false,
				Error:   err.Error(),
			})
			return
		}

		errorWriter.Write(c, w, http.StatusOK, confirmResponse{
			Success:   true,
			OrderUID:  result.OrderUID,
			OrderName: result.OrderRef,
		})
	}
}

type webhookResponse struct {
	Received bool `json:"received"`
}

// webhookPage is the asynchronous at-least-once path: the processor delivers
// payment events, retrying on any non-2xx response
func (s *webService) webhookPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBodySize))
		if err != nil {
			errorWriter.WriteError(c, w, 1, myerrors.NewInvalidInputError(fmt.Errorf("error reading webhook body: %s", err)))
			return
		}

		event, err := webhook.ConstructEvent(payload, r.Header.Get("Stripe-Signature"), s.webhookSecret)
		if err != nil {
			s.logger.Log(c, "", mylog.SeverityWarn, "Webhook signature verification failed: %s", err)
			errorWriter.Write(c, w, http.StatusUnauthorized, myhttp.ErrorResponse{
				ErrorCode: 2,
				Message:   "invalid signature",
			})
			return
		}

		err = s.handleWebhookEvent(c, event)
		if err != nil {
			// non-2xx makes the processor redeliver
			errorWriter.Write(c, w, http.StatusInternalServerError, myhttp.ErrorResponse{
				ErrorCode: 3,
				Message:   err.Error(),
			})
			return
		}

		errorWriter.Write(c, w, http.StatusOK, webhookResponse{Received: true})
	}
}

func (s *webService) handleWebhookEvent(c context.Context, event stripe.Event) error {
	switch event.Type {
	case "payment_intent.succeeded":
		return s.handlePaymentSucceeded(c, event)

	case "payment_intent.payment_failed":
		intent, err := parsePaymentIntent(event)
		if err != nil {
			return err
		}
		s.logger.Log(c, intent.ID, mylog.SeverityWarn, "Payment %s failed (campaign %s, amount %s)", intent.ID, intent.Metadata[metadataCampaignUID], shopifyapi.AmountInCents(intent.Amount))
		return nil

	case "payment_intent.canceled":
		intent, err := parsePaymentIntent(event)
		if err != nil {
			return err
		}
		s.logger.Log(c, intent.ID, mylog.SeverityInfo, "Payment %s canceled (campaign %s)", intent.ID, intent.Metadata[metadataCampaignUID])
		return nil

	case "charge.succeeded", "charge.failed":
		charge := stripe.Charge{}
		err := json.Unmarshal(event.Data.Raw, &charge)
		if err != nil {
			return myerrors.NewInvalidInputError(fmt.Errorf("error parsing charge: %s", err))
		}
		s.logger.Log(c, charge.ID, mylog.SeverityInfo, "Charge event %s for charge %s (amount %s)", event.Type, charge.ID, shopifyapi.AmountInCents(charge.Amount))
		return nil

	default:
		// unrecognized event types are accepted and ignored
		s.logger.Log(c, "", mylog.SeverityDebug, "Ignoring webhook event type %s", event.Type)
		return nil
	}
}

func (s *webService) handlePaymentSucceeded(c context.Context, event stripe.Event) error {
	intent, err := parsePaymentIntent(event)
	if err != nil {
		return err
	}

	orderJSON := intent.Metadata[metadataOrderData]
	if orderJSON == "" {
		return myerrors.NewValidationError(fmt.Errorf("payment %s carries no order data", intent.ID))
	}

	order := orderapi.CampaignOrder{}
	err = json.Unmarshal([]byte(orderJSON), &order)
	if err != nil {
		return myerrors.NewValidationError(fmt.Errorf("error parsing order data of payment %s: %s", intent.ID, err))
	}

	_, err = s.service.Reconcile(c, intent.ID, order)
	return err
}

func parsePaymentIntent(event stripe.Event) (stripe.PaymentIntent, error) {
	intent := stripe.PaymentIntent{}
	err := json.Unmarshal(event.Data.Raw, &intent)
	if err != nil {
		return stripe.PaymentIntent{}, myerrors.NewInvalidInputError(fmt.Errorf("error parsing payment-intent: %s", err))
	}
	return intent, nil
}
