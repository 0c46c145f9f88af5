package fulfillment

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"github.com/MarcGrol/campaignbackend/lib/myerrors"
	"github.com/MarcGrol/campaignbackend/lib/mylog"
	"github.com/MarcGrol/campaignbackend/services/shopifyapi"
)

func TestMaterializeViaDraft(t *testing.T) {
	c := context.TODO()
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	orderAPI := shopifyapi.NewMockOrderAPI(ctrl)
	sut := newMaterializer(StrategyDraftComplete, orderAPI, mylog.New("materializer"))

	orderAPI.EXPECT().CreateDraftOrder(gomock.Any(), gomock.Any()).DoAndReturn(
		func(c context.Context, draft shopifyapi.DraftOrder) (shopifyapi.DraftOrder, error) {
			assert.Contains(t, draft.NoteAttributes, shopifyapi.NoteAttribute{Name: "stripe_payment_intent_id", Value: "pi_1"})
			assert.NotNil(t, draft.ShippingLine)
			assert.Equal(t, "15.00", draft.ShippingLine.Price)
			draft.UID = 55
			return draft, nil
		})
	orderAPI.EXPECT().CompleteDraftOrder(gomock.Any(), int64(55)).Return(shopifyapi.Order{UID: 1002, Name: "#1002"}, nil)
	orderAPI.EXPECT().CreateTransaction(gomock.Any(), int64(1002), shopifyapi.Transaction{
		Kind:          "sale",
		Status:        "success",
		Amount:        "65.00",
		Currency:      "USD",
		Gateway:       "stripe",
		Authorization: "ch_1",
	}).Return(nil)
	orderAPI.EXPECT().SendInvoice(gomock.Any(), int64(55)).Return(nil)

	created, err := sut.materialize(c, "pi_1", "ch_1", testOrder())
	assert.NoError(t, err)
	assert.Equal(t, "1002", created.UID)
	assert.Equal(t, "#1002", created.Ref)
}

func TestMaterializeViaDraftToleratesBestEffortFailures(t *testing.T) {
	c := context.TODO()
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	orderAPI := shopifyapi.NewMockOrderAPI(ctrl)
	sut := newMaterializer(StrategyDraftComplete, orderAPI, mylog.New("materializer"))

	orderAPI.EXPECT().CreateDraftOrder(gomock.Any(), gomock.Any()).Return(shopifyapi.DraftOrder{UID: 55}, nil)
	orderAPI.EXPECT().CompleteDraftOrder(gomock.Any(), int64(55)).Return(shopifyapi.Order{UID: 1002, Name: "#1002"}, nil)
	orderAPI.EXPECT().CreateTransaction(gomock.Any(), int64(1002), gomock.Any()).
		Return(myerrors.NewTransportError(fmt.Errorf("timeout")))
	orderAPI.EXPECT().SendInvoice(gomock.Any(), int64(55)).
		Return(myerrors.NewTransportError(fmt.Errorf("timeout")))

	// the completed order is the source of truth
	created, err := sut.materialize(c, "pi_1", "ch_1", testOrder())
	assert.NoError(t, err)
	assert.Equal(t, "1002", created.UID)
}

func TestMaterializeDraftCompleteFailure(t *testing.T) {
	c := context.TODO()
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	orderAPI := shopifyapi.NewMockOrderAPI(ctrl)
	sut := newMaterializer(StrategyDraftComplete, orderAPI, mylog.New("materializer"))

	orderAPI.EXPECT().CreateDraftOrder(gomock.Any(), gomock.Any()).Return(shopifyapi.DraftOrder{UID: 55}, nil)
	orderAPI.EXPECT().CompleteDraftOrder(gomock.Any(), int64(55)).
		Return(shopifyapi.Order{}, myerrors.NewTransportError(fmt.Errorf("timeout")))

	// the incomplete draft is an acceptable orphan
	_, err := sut.materialize(c, "pi_1", "ch_1", testOrder())
	assert.Error(t, err)
	assert.True(t, myerrors.IsRetryable(err))
}

func TestMaterializeUnknownVariant(t *testing.T) {
	c := context.TODO()
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	orderAPI := shopifyapi.NewMockOrderAPI(ctrl)
	sut := newMaterializer(StrategyDirect, orderAPI, mylog.New("materializer"))

	order := testOrder()
	order.Items[0].VariantUID = "not-numeric"

	_, err := sut.materialize(c, "pi_1", "ch_1", order)
	assert.ErrorContains(t, err, "unknown variant")
	assert.False(t, myerrors.IsRetryable(err))
}

func TestTipBecomesCustomLineItem(t *testing.T) {
	order := testOrder()
	order.TipInCents = 500

	lineItems, err := buildLineItems("pi_1", order)
	assert.NoError(t, err)
	assert.Len(t, lineItems, 2)

	tip := lineItems[1]
	assert.Equal(t, tipLineItemTitle, tip.Title)
	assert.Equal(t, "5.00", tip.Price)
	assert.Equal(t, int64(1), tip.Quantity)
	assert.False(t, *tip.RequiresShipping)
	assert.False(t, *tip.Taxable)
}
