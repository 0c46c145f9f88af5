package shopifyapi

import "fmt"

type Order struct {
	UID             int64           `json:"id,omitempty"`
	Name            string          `json:"name,omitempty"`
	Email           string          `json:"email,omitempty"`
	Currency        string          `json:"currency,omitempty"`
	FinancialStatus string          `json:"financial_status,omitempty"`
	LineItems       []LineItem      `json:"line_items,omitempty"`
	ShippingLines   []ShippingLine  `json:"shipping_lines,omitempty"`
	ShippingAddress *Address        `json:"shipping_address,omitempty"`
	BillingAddress  *Address        `json:"billing_address,omitempty"`
	Customer        *Customer       `json:"customer,omitempty"`
	Note            string          `json:"note,omitempty"`
	NoteAttributes  []NoteAttribute `json:"note_attributes,omitempty"`
	Tags            string          `json:"tags,omitempty"`
	Transactions    []Transaction   `json:"transactions,omitempty"`
	SendReceipt     bool            `json:"send_receipt,omitempty"`
}

type DraftOrder struct {
	UID             int64           `json:"id,omitempty"`
	Name            string          `json:"name,omitempty"`
	Email           string          `json:"email,omitempty"`
	LineItems       []LineItem      `json:"line_items,omitempty"`
	ShippingLine    *ShippingLine   `json:"shipping_line,omitempty"`
	ShippingAddress *Address        `json:"shipping_address,omitempty"`
	BillingAddress  *Address        `json:"billing_address,omitempty"`
	Customer        *Customer       `json:"customer,omitempty"`
	Note            string          `json:"note,omitempty"`
	NoteAttributes  []NoteAttribute `json:"note_attributes,omitempty"`
	Tags            string          `json:"tags,omitempty"`
	OrderUID        int64           `json:"order_id,omitempty"`
}

type LineItem struct {
	VariantUID       int64           `json:"variant_id,omitempty"`
	Title            string          `json:"title,omitempty"`
	Quantity         int64           `json:"quantity"`
	Price            string          `json:"price,omitempty"`
	RequiresShipping *bool           `json:"requires_shipping,omitempty"`
	Taxable          *bool           `json:"taxable,omitempty"`
	Properties       []NoteAttribute `json:"properties,omitempty"`
}

type ShippingLine struct {
	Title string `json:"title"`
	Price string `json:"price"`
}

type NoteAttribute struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type Customer struct {
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Email     string `json:"email,omitempty"`
	Phone     string `json:"phone,omitempty"`
}

type Address struct {
	Name     string `json:"name,omitempty"`
	Address1 string `json:"address1,omitempty"`
	City     string `json:"city,omitempty"`
	Province string `json:"province,omitempty"`
	Zip      string `json:"zip,omitempty"`
	Country  string `json:"country,omitempty"`
	Phone    string `json:"phone,omitempty"`
}

type Transaction struct {
	Kind          string `json:"kind"`
	Status        string `json:"status"`
	Amount        string `json:"amount"`
	Currency      string `json:"currency,omitempty"`
	Gateway       string `json:"gateway,omitempty"`
	Authorization string `json:"authorization,omitempty"`
}

type Metafield struct {
	Namespace string `json:"namespace"`
	Key       string `json:"key"`
	Type      string `json:"type,omitempty"`
	Value     string `json:"value"`
}

// AmountInCents renders a cent amount as the decimal string the admin API expects
func AmountInCents(cents int64) string {
	return fmt.Sprintf("%d.%02d", cents/100, cents%100)
}
