package mypublisher

import (
	"encoding/json"

	"github.com/MarcGrol/campaignbackend/services/fulfillment/fulfillmentevents"

	"github.com/MarcGrol/campaignbackend/lib/myevents"
	"github.com/MarcGrol/campaignbackend/lib/mytime"
)

func CreatePubsubMessage(event fulfillmentevents.FulfillmentCompleted) string {
	eventBytes, _ := json.Marshal(event)
	envelope := myevents.EventEnvelope{
		UID:           "123",
		CreatedAt:     mytime.ExampleTime,
		Topic:         "fulfillment",
		AggregateUID:  "111",
		EventTypeName: "fulfillment.completed",
		EventPayload:  string(eventBytes),
	}
	envelopeBytes, _ := json.Marshal(envelope)

	req := myevents.PushRequest{
		Message: myevents.PushMessage{
			Data: envelopeBytes,
		},
		Subscription: "fulfillment",
	}

	reqBytes, _ := json.Marshal(req)

	return string(reqBytes)
}
