package fulfillmentevents

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/MarcGrol/campaignbackend/lib/myerrors"
	"github.com/MarcGrol/campaignbackend/lib/myevents"
)

const (
	TopicName                = "fulfillment"
	fulfillmentCompletedName = TopicName + ".completed"
	fulfillmentFailedName    = TopicName + ".failed"
)

type FulfillmentEventService interface {
	Subscribe(c context.Context) error
	OnFulfillmentCompleted(c context.Context, topic string, event FulfillmentCompleted) error
	OnFulfillmentFailed(c context.Context, topic string, event FulfillmentFailed) error
}

func DispatchEvent(c context.Context, reader io.Reader, service FulfillmentEventService) error {
	envelope, err := myevents.ParseEventEnvelope(reader)
	if err != nil {
		return myerrors.NewInvalidInputError(err)
	}

	switch envelope.EventTypeName {
	case fulfillmentCompletedName:
		{
			event := FulfillmentCompleted{}
			err := json.Unmarshal([]byte(envelope.EventPayload), &event)
			if err != nil {
				return myerrors.NewInvalidInputError(err)
			}
			return service.OnFulfillmentCompleted(c, envelope.Topic, event)
		}
	case fulfillmentFailedName:
		{
			event := FulfillmentFailed{}
			err := json.Unmarshal([]byte(envelope.EventPayload), &event)
			if err != nil {
				return myerrors.NewInvalidInputError(err)
			}
			return service.OnFulfillmentFailed(c, envelope.Topic, event)
		}
	default:
		return myerrors.NewNotImplementedError(fmt.Errorf("%s", envelope.EventTypeName))
	}
}

type FulfillmentCompleted struct {
	PaymentRef    string
	OrderUID      string
	OrderRef      string
	CampaignUID   string
	CampaignName  string
	Quantity      int64
	AmountInCents int64
	BackerName    string
	BackerEmail   string
	BackerCity    string
	IsAnonymous   bool
}

func (e FulfillmentCompleted) GetEventTypeName() string {
	return fulfillmentCompletedName
}

func (e FulfillmentCompleted) GetAggregateName() string {
	return e.PaymentRef
}

type FulfillmentFailed struct {
	PaymentRef  string
	CampaignUID string
	Reason      string
}

func (e FulfillmentFailed) GetEventTypeName() string {
	return fulfillmentFailedName
}

func (e FulfillmentFailed) GetAggregateName() string {
	return e.PaymentRef
}
