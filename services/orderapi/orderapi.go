package orderapi

import (
	"fmt"
	"net/http"
	"net/url"

	formcodec "github.com/go-playground/form/v4"

	"github.com/MarcGrol/campaignbackend/lib/myerrors"
)

const (
	DeliveryMethodPickup        = "pickup"
	DeliveryMethodLocalDelivery = "local_delivery"
	DeliveryMethodShipping      = "shipping"
)

// Flat-rate delivery prices in cents
const (
	PickupPriceInCents        int64 = 0
	LocalDeliveryPriceInCents int64 = 500
	ShippingPriceInCents      int64 = 1500
)

type CampaignOrder struct {
	CampaignUID  string   `form:"campaignUid" json:"campaignId"`
	CampaignName string   `form:"campaignName" json:"campaignName"`
	Items        []Item   `form:"items" json:"items"`
	Delivery     Delivery `form:"delivery" json:"delivery"`
	TipInCents   int64    `form:"tipInCents" json:"tip"`
	Customer     Customer `form:"customer" json:"customer"`
	IsAnonymous  bool     `form:"isAnonymous" json:"isAnonymous"`
}

type Item struct {
	ProductUID       string `form:"productUid" json:"productId"`
	VariantUID       string `form:"variantUid" json:"variantId"`
	Name             string `form:"name" json:"name"`
	Quantity         int64  `form:"quantity" json:"quantity"`
	UnitPriceInCents int64  `form:"unitPriceInCents" json:"price"`
}

type Delivery struct {
	Method       string `form:"method" json:"method"`
	PriceInCents int64  `form:"priceInCents" json:"price"`
}

type Customer struct {
	Name    string   `form:"name" json:"name"`
	Email   string   `form:"email" json:"email"`
	Phone   string   `form:"phone" json:"phone"`
	Address *Address `form:"address" json:"address,omitempty"`
}

type Address struct {
	Street     string `form:"street" json:"address1"`
	City       string `form:"city" json:"city"`
	State      string `form:"state" json:"province"`
	PostalCode string `form:"postalCode" json:"zip"`
	Country    string `form:"country" json:"country"`
}

func NewFromRequest(r *http.Request) (CampaignOrder, error) {
	err := r.ParseForm()
	if err != nil {
		return CampaignOrder{}, myerrors.NewInvalidInputError(err)
	}
	return NewFromValues(r.Form)
}

func NewFromValues(values url.Values) (CampaignOrder, error) {
	order := CampaignOrder{}
	err := formcodec.NewDecoder().Decode(&order, values)
	if err != nil {
		return order, fmt.Errorf("error decoding form: %s", err)
	}

	return order, nil
}

func (o CampaignOrder) ToForm() (url.Values, error) {
	values, err := formcodec.NewEncoder().Encode(o)
	if err != nil {
		return nil, fmt.Errorf("error encoding form: %s", err)
	}

	return values, nil
}

func (o CampaignOrder) Validate() error {
	if o.CampaignUID == "" {
		return myerrors.NewValidationError(fmt.Errorf("missing campaign"))
	}
	if len(o.Items) == 0 {
		return myerrors.NewValidationError(fmt.Errorf("order must contain at least one item"))
	}
	for i, item := range o.Items {
		if item.VariantUID == "" {
			return myerrors.NewValidationError(fmt.Errorf("item %d: missing variant", i))
		}
		if item.Quantity <= 0 {
			return myerrors.NewValidationError(fmt.Errorf("item %d: quantity must be positive", i))
		}
		if item.UnitPriceInCents < 0 {
			return myerrors.NewValidationError(fmt.Errorf("item %d: negative price", i))
		}
	}
	if o.Customer.Name == "" {
		return myerrors.NewValidationError(fmt.Errorf("missing customer name"))
	}
	if o.Customer.Email == "" {
		return myerrors.NewValidationError(fmt.Errorf("missing customer email"))
	}
	if o.TipInCents < 0 {
		return myerrors.NewValidationError(fmt.Errorf("negative tip"))
	}
	switch o.Delivery.Method {
	case DeliveryMethodPickup, DeliveryMethodLocalDelivery:
		// no address needed
	case DeliveryMethodShipping:
		if o.Customer.Address == nil {
			return myerrors.NewValidationError(fmt.Errorf("shipping requires an address"))
		}
	default:
		return myerrors.NewValidationError(fmt.Errorf("unsupported delivery method '%s'", o.Delivery.Method))
	}
	if o.Customer.Address != nil {
		if o.Customer.Address.Street == "" || o.Customer.Address.City == "" || o.Customer.Address.PostalCode == "" {
			return myerrors.NewValidationError(fmt.Errorf("incomplete address"))
		}
	}

	return nil
}

func (o CampaignOrder) TotalQuantity() int64 {
	var total int64
	for _, item := range o.Items {
		total += item.Quantity
	}
	return total
}

func (o CampaignOrder) TotalInCents() int64 {
	var total int64
	for _, item := range o.Items {
		total += item.Quantity * item.UnitPriceInCents
	}
	return total + o.Delivery.PriceInCents + o.TipInCents
}

func DeliveryPriceInCents(method string) int64 {
	switch method {
	case DeliveryMethodShipping:
		return ShippingPriceInCents
	case DeliveryMethodLocalDelivery:
		return LocalDeliveryPriceInCents
	default:
		return PickupPriceInCents
	}
}
