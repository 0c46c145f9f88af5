package fulfillment

import (
	"context"
	"fmt"
	"strconv"

	"github.com/MarcGrol/campaignbackend/lib/myerrors"
	"github.com/MarcGrol/campaignbackend/lib/mylog"
	"github.com/MarcGrol/campaignbackend/services/orderapi"
	"github.com/MarcGrol/campaignbackend/services/shopifyapi"
)

// Dedup tags attached to the created order and its line items, so duplicate
// orders for one payment can be found even when the idempotency check races
const (
	tagPaymentRef  = "stripe_payment_intent_id"
	tagCampaignUID = "campaign_id"

	tipLineItemTitle = "Campaign Support Tip"
)

type materializedOrder struct {
	UID string
	Ref string
}

type materializer struct {
	strategy Strategy
	orderAPI shopifyapi.OrderAPI
	logger   mylog.Logger
}

func newMaterializer(strategy Strategy, orderAPI shopifyapi.OrderAPI, logger mylog.Logger) materializer {
	return materializer{
		strategy: strategy,
		orderAPI: orderAPI,
		logger:   logger,
	}
}

func (m materializer) materialize(c context.Context, paymentRef string, chargeRef string, order orderapi.CampaignOrder) (materializedOrder, error) {
	lineItems, err := buildLineItems(paymentRef, order)
	if err != nil {
		return materializedOrder{}, err
	}

	if m.strategy == StrategyDraftComplete {
		return m.materializeViaDraft(c, paymentRef, chargeRef, order, lineItems)
	}
	return m.materializeDirect(c, paymentRef, chargeRef, order, lineItems)
}

// materializeDirect creates the order already marked paid in a single call
func (m materializer) materializeDirect(c context.Context, paymentRef string, chargeRef string, order orderapi.CampaignOrder, lineItems []shopifyapi.LineItem) (materializedOrder, error) {
	created, err := m.orderAPI.CreateOrder(c, shopifyapi.Order{
		Email:           order.Customer.Email,
		Currency:        "USD",
		FinancialStatus: "paid",
		LineItems:       lineItems,
		ShippingLines:   shippingLines(order),
		ShippingAddress: shippingAddress(order),
		Customer:        customer(order),
		Note:            orderNote(order),
		NoteAttributes:  dedupTags(paymentRef, order),
		Tags:            "campaign-contribution",
		Transactions: []shopifyapi.Transaction{
			paidTransaction(chargeRef, order.TotalInCents()),
		},
	})
	if err != nil {
		return materializedOrder{}, fmt.Errorf("error creating order for payment %s: %w", paymentRef, err)
	}

	return materializedOrder{
		UID: strconv.FormatInt(created.UID, 10),
		Ref: created.Name,
	}, nil
}

// materializeViaDraft goes draft -> complete, which makes the backend send the
// customer confirmation email. Attaching the transaction and requesting the
// invoice are best-effort: the completed order is already the source of truth.
func (m materializer) materializeViaDraft(c context.Context, paymentRef string, chargeRef string, order orderapi.CampaignOrder, lineItems []shopifyapi.LineItem) (materializedOrder, error) {
	draft, err := m.orderAPI.CreateDraftOrder(c, shopifyapi.DraftOrder{
		Email:           order.Customer.Email,
		LineItems:       lineItems,
		ShippingLine:    draftShippingLine(order),
		ShippingAddress: shippingAddress(order),
		Customer:        customer(order),
		Note:            orderNote(order),
		NoteAttributes:  dedupTags(paymentRef, order),
		Tags:            "campaign-contribution",
	})
	if err != nil {
		return materializedOrder{}, fmt.Errorf("error creating draft order for payment %s: %w", paymentRef, err)
	}

	completed, err := m.orderAPI.CompleteDraftOrder(c, draft.UID)
	if err != nil {
		// the incomplete draft is an acceptable orphan, cleaned up out of band
		return materializedOrder{}, fmt.Errorf("error completing draft order %d for payment %s: %w", draft.UID, paymentRef, err)
	}

	err = m.orderAPI.CreateTransaction(c, completed.UID, paidTransaction(chargeRef, order.TotalInCents()))
	if err != nil {
		m.logger.Log(c, paymentRef, mylog.SeverityWarn, "Partial failure: could not attach transaction to order %d (payment %s): %s", completed.UID, paymentRef, err)
	}

	err = m.orderAPI.SendInvoice(c, draft.UID)
	if err != nil {
		m.logger.Log(c, paymentRef, mylog.SeverityWarn, "Partial failure: could not send invoice for draft %d (payment %s): %s", draft.UID, paymentRef, err)
	}

	return materializedOrder{
		UID: strconv.FormatInt(completed.UID, 10),
		Ref: completed.Name,
	}, nil
}

func buildLineItems(paymentRef string, order orderapi.CampaignOrder) ([]shopifyapi.LineItem, error) {
	properties := []shopifyapi.NoteAttribute{
		{Name: tagPaymentRef, Value: paymentRef},
		{Name: tagCampaignUID, Value: order.CampaignUID},
	}
	if order.CampaignName != "" {
		properties = append(properties, shopifyapi.NoteAttribute{Name: "campaign_name", Value: order.CampaignName})
	}

	lineItems := []shopifyapi.LineItem{}
	for _, item := range order.Items {
		variantUID, err := strconv.ParseInt(item.VariantUID, 10, 64)
		if err != nil {
			return nil, myerrors.NewValidationError(fmt.Errorf("unknown variant '%s'", item.VariantUID))
		}
		lineItems = append(lineItems, shopifyapi.LineItem{
			VariantUID: variantUID,
			Quantity:   item.Quantity,
			Price:      shopifyapi.AmountInCents(item.UnitPriceInCents),
			Properties: properties,
		})
	}

	if order.TipInCents > 0 {
		lineItems = append(lineItems, shopifyapi.LineItem{
			Title:            tipLineItemTitle,
			Quantity:         1,
			Price:            shopifyapi.AmountInCents(order.TipInCents),
			RequiresShipping: boolPtr(false),
			Taxable:          boolPtr(false),
			Properties:       properties,
		})
	}

	return lineItems, nil
}

func shippingLines(order orderapi.CampaignOrder) []shopifyapi.ShippingLine {
	line := draftShippingLine(order)
	if line == nil {
		return nil
	}
	return []shopifyapi.ShippingLine{*line}
}

func draftShippingLine(order orderapi.CampaignOrder) *shopifyapi.ShippingLine {
	switch order.Delivery.Method {
	case orderapi.DeliveryMethodShipping:
		return &shopifyapi.ShippingLine{Title: "Shipping", Price: shopifyapi.AmountInCents(order.Delivery.PriceInCents)}
	case orderapi.DeliveryMethodLocalDelivery:
		return &shopifyapi.ShippingLine{Title: "Local delivery", Price: shopifyapi.AmountInCents(order.Delivery.PriceInCents)}
	default:
		return nil
	}
}

func shippingAddress(order orderapi.CampaignOrder) *shopifyapi.Address {
	if order.Customer.Address == nil {
		return nil
	}
	return &shopifyapi.Address{
		Name:     order.Customer.Name,
		Address1: order.Customer.Address.Street,
		City:     order.Customer.Address.City,
		Province: order.Customer.Address.State,
		Zip:      order.Customer.Address.PostalCode,
		Country:  order.Customer.Address.Country,
		Phone:    order.Customer.Phone,
	}
}

func customer(order orderapi.CampaignOrder) *shopifyapi.Customer {
	firstName, lastName := splitName(order.Customer.Name)
	return &shopifyapi.Customer{
		FirstName: firstName,
		LastName:  lastName,
		Email:     order.Customer.Email,
		Phone:     order.Customer.Phone,
	}
}

func orderNote(order orderapi.CampaignOrder) string {
	return fmt.Sprintf("Campaign contribution to %s", order.CampaignName)
}

func dedupTags(paymentRef string, order orderapi.CampaignOrder) []shopifyapi.NoteAttribute {
	return []shopifyapi.NoteAttribute{
		{Name: tagPaymentRef, Value: paymentRef},
		{Name: tagCampaignUID, Value: order.CampaignUID},
	}
}

func paidTransaction(chargeRef string, amountInCents int64) shopifyapi.Transaction {
	return shopifyapi.Transaction{
		Kind:          "sale",
		Status:        "success",
		Amount:        shopifyapi.AmountInCents(amountInCents),
		Currency:      "USD",
		Gateway:       "stripe",
		Authorization: chargeRef,
	}
}

func splitName(fullName string) (string, string) {
	for i := len(fullName) - 1; i >= 0; i-- {
		if fullName[i] == ' ' {
			return fullName[:i], fullName[i+1:]
		}
	}
	return fullName, ""
}

func boolPtr(b bool) *bool {
	return &b
}
