package fulfillment

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/stripe/stripe-go/v74"

	"github.com/MarcGrol/campaignbackend/lib/myerrors"
	"github.com/MarcGrol/campaignbackend/lib/mylog"
	"github.com/MarcGrol/campaignbackend/lib/mypublisher"
	"github.com/MarcGrol/campaignbackend/lib/myretry"
	"github.com/MarcGrol/campaignbackend/lib/mytime"
	"github.com/MarcGrol/campaignbackend/services/campaign"
	"github.com/MarcGrol/campaignbackend/services/fulfillment/fulfillmentevents"
	"github.com/MarcGrol/campaignbackend/services/orderapi"
	"github.com/MarcGrol/campaignbackend/services/shopifyapi"
)

type ReconcileResult struct {
	OrderUID         string
	OrderRef         string
	AlreadyFulfilled bool
}

// service converges the webhook path and the client-callback path on one
// reconciliation: guard, materialize, aggregate, feed, mark, publish.
type service struct {
	payer        Payer
	materializer materializer
	guard        idempotencyGuard
	progress     campaign.Progress
	publisher    mypublisher.Publisher
	retrier      *myretry.Runner
	nower        mytime.Nower
	logger       mylog.Logger
}

// Use dependency injection to isolate the infrastructure and easy testing
func newService(cfg Config, payer Payer, orderAPI shopifyapi.OrderAPI, progress campaign.Progress, publisher mypublisher.Publisher, nower mytime.Nower, logger mylog.Logger) (*service, error) {
	payer.UseAPIKey(cfg.StripeAPIKey)
	return &service{
		payer:        payer,
		materializer: newMaterializer(cfg.Strategy, orderAPI, logger),
		guard:        idempotencyGuard{payer: payer, nower: nower},
		progress:     progress,
		publisher:    publisher,
		retrier:      myretry.New(),
		nower:        nower,
		logger:       logger,
	}, nil
}

func (s *service) CreateTopics(c context.Context) error {
	err := s.publisher.CreateTopic(c, fulfillmentevents.TopicName)
	if err != nil {
		return fmt.Errorf("error creating topic %s: %s", fulfillmentevents.TopicName, err)
	}

	return nil
}

func (s *service) startCheckout(c context.Context, order orderapi.CampaignOrder) (stripe.PaymentIntent, error) {
	err := order.Validate()
	if err != nil {
		return stripe.PaymentIntent{}, err
	}

	// prices are server-authoritative
	order.Delivery.PriceInCents = orderapi.DeliveryPriceInCents(order.Delivery.Method)

	orderJSON, err := json.Marshal(order)
	if err != nil {
		return stripe.PaymentIntent{}, myerrors.NewInternalError(fmt.Errorf("error serializing order: %s", err))
	}

	intent, err := s.payer.CreatePaymentIntent(c, stripe.PaymentIntentParams{
		Amount:   stripe.Int64(order.TotalInCents()),
		Currency: stripe.String(string(stripe.CurrencyUSD)),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
		Params: stripe.Params{
			Metadata: map[string]string{
				metadataCampaignUID:  order.CampaignUID,
				metadataCampaignName: order.CampaignName,
				metadataOrderData:    string(orderJSON),
			},
		},
	})
	if err != nil {
		return stripe.PaymentIntent{}, err
	}

	s.logger.Log(c, intent.ID, mylog.SeverityInfo, "Started checkout %s for campaign %s (%s)", intent.ID, order.CampaignUID, shopifyapi.AmountInCents(order.TotalInCents()))

	return intent, nil
}

// Reconcile turns one succeeded payment into exactly one order plus a
// progress update. Once materialization starts it runs to completion or
// explicit terminal failure: an order may already exist remotely.
func (s *service) Reconcile(c context.Context, paymentRef string, order orderapi.CampaignOrder) (ReconcileResult, error) {
	intent, err := s.payer.GetPaymentIntent(c, paymentRef)
	if err != nil {
		return ReconcileResult{}, err
	}

	if intent.Status != stripe.PaymentIntentStatusSucceeded {
		return ReconcileResult{}, myerrors.NewValidationError(fmt.Errorf("payment %s has status '%s', not succeeded", paymentRef, intent.Status))
	}

	if orderUID, orderRef, fulfilled := s.guard.checkFulfilled(intent); fulfilled {
		s.logger.Log(c, paymentRef, mylog.SeverityInfo, "Payment %s already fulfilled by order %s (%s)", paymentRef, orderUID, orderRef)
		return ReconcileResult{
			OrderUID:         orderUID,
			OrderRef:         orderRef,
			AlreadyFulfilled: true,
		}, nil
	}

	err = order.Validate()
	if err != nil {
		return ReconcileResult{}, err
	}

	created := materializedOrder{}
	err = s.retrier.Do(c, "materialize-order", func(c context.Context) error {
		var materializeErr error
		created, materializeErr = s.materializer.materialize(c, paymentRef, chargeRef(intent), order)
		return materializeErr
	})
	if err != nil {
		s.logger.Log(c, paymentRef, mylog.SeverityError,
			"MANUAL RECOVERY NEEDED: payment %s succeeded but order creation failed (customer %s <%s>, amount %s): %s",
			paymentRef, order.Customer.Name, order.Customer.Email, shopifyapi.AmountInCents(intent.Amount), err)

		publishErr := s.publisher.Publish(c, fulfillmentevents.TopicName, fulfillmentevents.FulfillmentFailed{
			PaymentRef:  paymentRef,
			CampaignUID: order.CampaignUID,
			Reason:      err.Error(),
		})
		if publishErr != nil {
			s.logger.Log(c, paymentRef, mylog.SeverityWarn, "Error publishing failure event for payment %s: %s", paymentRef, publishErr)
		}

		return ReconcileResult{}, err
	}

	// Everything below is best-effort: the order exists and is the source of truth
	err = s.retrier.Do(c, "apply-progress-delta", func(c context.Context) error {
		return s.progress.ApplyDelta(c, order.CampaignUID, campaign.ProgressDelta{
			Quantity:      order.TotalQuantity(),
			Backers:       1,
			AmountInCents: order.TotalInCents(),
		})
	})
	if err != nil {
		s.logger.Log(c, paymentRef, mylog.SeverityWarn, "Partial failure: progress update failed for campaign %s (payment %s, order %s): %s", order.CampaignUID, paymentRef, created.UID, err)
	}

	err = s.progress.AppendBackerEntry(c, order.CampaignUID, campaign.BackerFeedEntry{
		Name:      backerName(order),
		Quantity:  order.TotalQuantity(),
		Amount:    shopifyapi.AmountInCents(order.TotalInCents()),
		Timestamp: s.nower.Now(),
		Location:  backerLocation(order),
		OrderRef:  created.Ref,
	})
	if err != nil {
		s.logger.Log(c, paymentRef, mylog.SeverityWarn, "Partial failure: backer feed update failed for campaign %s (payment %s, order %s): %s", order.CampaignUID, paymentRef, created.UID, err)
	}

	err = s.guard.markFulfilled(c, paymentRef, created.UID, created.Ref)
	if err != nil {
		s.logger.Log(c, paymentRef, mylog.SeverityWarn, "Partial failure: could not mark payment %s fulfilled (order %s): %s", paymentRef, created.UID, err)
	}

	err = s.publisher.Publish(c, fulfillmentevents.TopicName, fulfillmentevents.FulfillmentCompleted{
		PaymentRef:    paymentRef,
		OrderUID:      created.UID,
		OrderRef:      created.Ref,
		CampaignUID:   order.CampaignUID,
		CampaignName:  order.CampaignName,
		Quantity:      order.TotalQuantity(),
		AmountInCents: order.TotalInCents(),
		BackerName:    order.Customer.Name,
		BackerEmail:   order.Customer.Email,
		BackerCity:    backerLocation(order),
		IsAnonymous:   order.IsAnonymous,
	})
	if err != nil {
		s.logger.Log(c, paymentRef, mylog.SeverityWarn, "Partial failure: could not publish completion event for payment %s: %s", paymentRef, err)
	}

	s.logger.Log(c, paymentRef, mylog.SeverityInfo, "Payment %s fulfilled by order %s (%s)", paymentRef, created.UID, created.Ref)

	return ReconcileResult{
		OrderUID: created.UID,
		OrderRef: created.Ref,
	}, nil
}

func chargeRef(intent stripe.PaymentIntent) string {
	if intent.LatestCharge != nil {
		return intent.LatestCharge.ID
	}
	return intent.ID
}

func backerName(order orderapi.CampaignOrder) string {
	if order.IsAnonymous {
		return "Anonymous"
	}
	return order.Customer.Name
}

func backerLocation(order orderapi.CampaignOrder) string {
	if order.Customer.Address == nil {
		return ""
	}
	return order.Customer.Address.City
}
