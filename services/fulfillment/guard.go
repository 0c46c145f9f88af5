package fulfillment

import (
	"context"
	"fmt"
	"time"

	"github.com/stripe/stripe-go/v74"

	"github.com/MarcGrol/campaignbackend/lib/mytime"
)

// Metadata keys stashed on the payment record itself: the idempotency check
// and the payment share one store.
const (
	metadataOrderUID    = "fulfillment_order_id"
	metadataOrderRef    = "fulfillment_order_ref"
	metadataCompletedAt = "fulfillment_completed_at"

	metadataOrderData    = "order_data"
	metadataCampaignUID  = "campaign_id"
	metadataCampaignName = "campaign_name"
)

type idempotencyGuard struct {
	payer Payer
	nower mytime.Nower
}

// checkFulfilled treats presence of the completion marker as authoritative.
// The check is a fast path only: it is not atomic against the remote store,
// so the materializer's dedup tag remains the after-the-fact safety net.
func (g idempotencyGuard) checkFulfilled(intent stripe.PaymentIntent) (string, string, bool) {
	orderUID := intent.Metadata[metadataOrderUID]
	if orderUID == "" {
		return "", "", false
	}
	return orderUID, intent.Metadata[metadataOrderRef], true
}

func (g idempotencyGuard) markFulfilled(c context.Context, paymentRef string, orderUID string, orderRef string) error {
	err := g.payer.UpdateMetadata(c, paymentRef, map[string]string{
		metadataOrderUID:    orderUID,
		metadataOrderRef:    orderRef,
		metadataCompletedAt: g.nower.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return fmt.Errorf("error marking payment %s fulfilled: %w", paymentRef, err)
	}
	return nil
}
