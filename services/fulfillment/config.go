package fulfillment

import (
	"fmt"
	"os"

	"github.com/MarcGrol/campaignbackend/lib/myerrors"
)

type Strategy string

const (
	// StrategyDirect creates the order already marked paid in one call
	StrategyDirect Strategy = "direct"
	// StrategyDraftComplete goes draft -> complete so the backend sends confirmation mail
	StrategyDraftComplete Strategy = "draft"
)

type Config struct {
	StripeAPIKey        string
	StripeWebhookSecret string
	Strategy            Strategy
}

func NewConfigFromEnv() (Config, error) {
	apiKey := os.Getenv("STRIPE_API_KEY")
	if apiKey == "" {
		return Config{}, myerrors.NewConfigurationError(fmt.Errorf("missing env-var STRIPE_API_KEY"))
	}
	webhookSecret := os.Getenv("STRIPE_WEBHOOK_SECRET")
	if webhookSecret == "" {
		return Config{}, myerrors.NewConfigurationError(fmt.Errorf("missing env-var STRIPE_WEBHOOK_SECRET"))
	}

	strategy := Strategy(os.Getenv("ORDER_STRATEGY"))
	switch strategy {
	case "":
		strategy = StrategyDirect
	case StrategyDirect, StrategyDraftComplete:
		// fine
	default:
		return Config{}, myerrors.NewConfigurationError(fmt.Errorf("unsupported ORDER_STRATEGY '%s'", strategy))
	}

	return Config{
		StripeAPIKey:        apiKey,
		StripeWebhookSecret: webhookSecret,
		Strategy:            strategy,
	}, nil
}
