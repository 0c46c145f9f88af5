package campaign

import (
	"strconv"
	"strings"

	"github.com/MarcGrol/campaignbackend/services/shopifyapi"
)

// Two historical counter layouts exist on campaign products. The current one
// keeps prefixed keys in the shared "custom" namespace, older campaigns carry
// a dedicated "campaign" namespace with plain keys.
type SchemaVersion string

const (
	SchemaCurrent SchemaVersion = "custom"
	SchemaLegacy  SchemaVersion = "campaign"
)

func (v SchemaVersion) namespace() string {
	return string(v)
}

func (v SchemaVersion) quantityKey() string {
	if v == SchemaLegacy {
		return "current_quantity"
	}
	return "campaign_current_quantity"
}

func (v SchemaVersion) backersKey() string {
	if v == SchemaLegacy {
		return "backer_count"
	}
	return "campaign_backer_count"
}

func (v SchemaVersion) raisedKey() string {
	if v == SchemaLegacy {
		return "total_raised"
	}
	return "campaign_total_raised"
}

// detectSchema prefers the first layout with any existing counter value
// and defaults to the current one
func detectSchema(metafields []shopifyapi.Metafield) SchemaVersion {
	for _, candidate := range []SchemaVersion{SchemaCurrent, SchemaLegacy} {
		for _, mf := range metafields {
			if mf.Namespace != candidate.namespace() {
				continue
			}
			switch mf.Key {
			case candidate.quantityKey(), candidate.backersKey(), candidate.raisedKey():
				return candidate
			}
		}
	}
	return SchemaCurrent
}

func snapshotFrom(metafields []shopifyapi.Metafield, schema SchemaVersion) ProgressSnapshot {
	snapshot := ProgressSnapshot{}
	for _, mf := range metafields {
		if mf.Namespace != schema.namespace() {
			continue
		}
		switch mf.Key {
		case schema.quantityKey():
			snapshot.Quantity = parseInt(mf.Value)
		case schema.backersKey():
			snapshot.Backers = parseInt(mf.Value)
		case schema.raisedKey():
			snapshot.AmountInCents = parseDecimalToCents(mf.Value)
		}
	}
	return snapshot
}

func counterMetafields(schema SchemaVersion, snapshot ProgressSnapshot) []shopifyapi.Metafield {
	return []shopifyapi.Metafield{
		{
			Namespace: schema.namespace(),
			Key:       schema.quantityKey(),
			Type:      "number_integer",
			Value:     strconv.FormatInt(snapshot.Quantity, 10),
		},
		{
			Namespace: schema.namespace(),
			Key:       schema.backersKey(),
			Type:      "number_integer",
			Value:     strconv.FormatInt(snapshot.Backers, 10),
		},
		{
			Namespace: schema.namespace(),
			Key:       schema.raisedKey(),
			Type:      "number_decimal",
			Value:     shopifyapi.AmountInCents(snapshot.AmountInCents),
		},
	}
}

func parseInt(value string) int64 {
	i, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil {
		return 0
	}
	return i
}

// parseDecimalToCents reads a decimal amount like "50.00" or "50" into cents,
// treating anything unparsable as zero
func parseDecimalToCents(value string) int64 {
	value = strings.TrimSpace(value)
	whole, fraction, found := strings.Cut(value, ".")
	wholePart, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0
	}
	if !found {
		return wholePart * 100
	}

	if len(fraction) > 2 {
		fraction = fraction[:2]
	}
	for len(fraction) < 2 {
		fraction += "0"
	}
	fractionPart, err := strconv.ParseInt(fraction, 10, 64)
	if err != nil {
		return wholePart * 100
	}
	return wholePart*100 + fractionPart
}
