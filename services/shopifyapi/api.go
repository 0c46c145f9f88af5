package shopifyapi

import (
	"context"
	"fmt"
	"os"

	"github.com/MarcGrol/campaignbackend/lib/myerrors"
)

//go:generate mockgen -source=api.go -package shopifyapi -destination api_mock.go OrderAPI,MetafieldAPI

// OrderAPI covers the order-related parts of the commerce backend's admin API
type OrderAPI interface {
	CreateOrder(c context.Context, order Order) (Order, error)
	CreateDraftOrder(c context.Context, draft DraftOrder) (DraftOrder, error)
	CompleteDraftOrder(c context.Context, draftOrderUID int64) (Order, error)
	CreateTransaction(c context.Context, orderUID int64, transaction Transaction) error
	SendInvoice(c context.Context, draftOrderUID int64) error
}

// MetafieldAPI reads and writes namespaced fields on a product record.
// There is no increment operation: callers must read-modify-write.
type MetafieldAPI interface {
	GetProductMetafields(c context.Context, productUID int64) ([]Metafield, error)
	SetMetafields(c context.Context, productUID int64, metafields []Metafield) error
}

const defaultAPIVersion = "2024-10"

type Config struct {
	StoreDomain string
	APIToken    string
	APIVersion  string
}

func NewConfigFromEnv() (Config, error) {
	storeDomain := os.Getenv("SHOP_STORE_DOMAIN")
	if storeDomain == "" {
		return Config{}, myerrors.NewConfigurationError(fmt.Errorf("missing env-var SHOP_STORE_DOMAIN"))
	}
	apiToken := os.Getenv("SHOP_ADMIN_API_TOKEN")
	if apiToken == "" {
		return Config{}, myerrors.NewConfigurationError(fmt.Errorf("missing env-var SHOP_ADMIN_API_TOKEN"))
	}
	apiVersion := os.Getenv("SHOP_ADMIN_API_VERSION")
	if apiVersion == "" {
		apiVersion = defaultAPIVersion
	}

	return Config{
		StoreDomain: storeDomain,
		APIToken:    apiToken,
		APIVersion:  apiVersion,
	}, nil
}
