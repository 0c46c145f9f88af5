package fulfillment

import (
	"context"
	"errors"
	"fmt"

	"github.com/stripe/stripe-go/v74"
	"github.com/stripe/stripe-go/v74/paymentintent"

	"github.com/MarcGrol/campaignbackend/lib/myerrors"
)

//go:generate mockgen -source=payer.go -package fulfillment -destination payer_mock.go Payer
type Payer interface {
	UseAPIKey(key string)
	CreatePaymentIntent(c context.Context, params stripe.PaymentIntentParams) (stripe.PaymentIntent, error)
	GetPaymentIntent(c context.Context, paymentRef string) (stripe.PaymentIntent, error)
	UpdateMetadata(c context.Context, paymentRef string, metadata map[string]string) error
}

type stripePayer struct{}

func NewPayer() Payer {
	return &stripePayer{}
}

func (p *stripePayer) UseAPIKey(apiKey string) {
	stripe.Key = apiKey
}

func (p *stripePayer) CreatePaymentIntent(c context.Context, params stripe.PaymentIntentParams) (stripe.PaymentIntent, error) {
	params.Context = c
	intent, err := paymentintent.New(&params)
	if err != nil {
		return stripe.PaymentIntent{}, classifyStripeError("creating payment-intent", err)
	}

	return *intent, nil
}

func (p *stripePayer) GetPaymentIntent(c context.Context, paymentRef string) (stripe.PaymentIntent, error) {
	intent, err := paymentintent.Get(paymentRef, &stripe.PaymentIntentParams{
		Params: stripe.Params{Context: c},
	})
	if err != nil {
		return stripe.PaymentIntent{}, classifyStripeError(fmt.Sprintf("fetching payment-intent %s", paymentRef), err)
	}

	return *intent, nil
}

func (p *stripePayer) UpdateMetadata(c context.Context, paymentRef string, metadata map[string]string) error {
	params := &stripe.PaymentIntentParams{
		Params: stripe.Params{
			Context:  c,
			Metadata: metadata,
		},
	}
	_, err := paymentintent.Update(paymentRef, params)
	if err != nil {
		return classifyStripeError(fmt.Sprintf("updating payment-intent %s", paymentRef), err)
	}

	return nil
}

func classifyStripeError(action string, err error) error {
	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) {
		if stripeErr.HTTPStatusCode >= 500 {
			return myerrors.NewTransportError(fmt.Errorf("error %s: %s", action, err))
		}
		return myerrors.NewValidationError(fmt.Errorf("error %s: %s", action, err))
	}
	return myerrors.NewTransportError(fmt.Errorf("error %s: %s", action, err))
}
