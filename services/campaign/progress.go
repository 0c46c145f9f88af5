package campaign

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"

	"github.com/MarcGrol/campaignbackend/lib/myerrors"
	"github.com/MarcGrol/campaignbackend/lib/mylog"
	"github.com/MarcGrol/campaignbackend/services/shopifyapi"
)

const (
	backerFeedNamespace = "custom"
	backerFeedKey       = "campaign_backers"
	backerFeedCap       = 50
)

type service struct {
	metafieldAPI shopifyapi.MetafieldAPI
	logger       mylog.Logger

	mutex       sync.Mutex
	schemaCache map[int64]SchemaVersion
}

// Use dependency injection to isolate the infrastructure and easy testing
func NewService(metafieldAPI shopifyapi.MetafieldAPI) *service {
	return &service{
		metafieldAPI: metafieldAPI,
		logger:       mylog.New("campaign"),
		schemaCache:  map[int64]SchemaVersion{},
	}
}

// ApplyDelta is read-modify-write: the remote store has no increment primitive.
// Concurrent deltas against the same campaign can lose updates; the upstream
// idempotency guard ensures a single payment is aggregated at most once.
func (s *service) ApplyDelta(c context.Context, campaignUID string, delta ProgressDelta) error {
	productUID, err := parseCampaignUID(campaignUID)
	if err != nil {
		return err
	}

	metafields, err := s.metafieldAPI.GetProductMetafields(c, productUID)
	if err != nil {
		return fmt.Errorf("error fetching metafields of campaign %s: %w", campaignUID, err)
	}

	schema := s.resolveSchema(productUID, metafields)
	current := snapshotFrom(metafields, schema)
	next := current.Add(delta)

	s.logger.Log(c, campaignUID, mylog.SeverityInfo, "Campaign %s progress %+v -> %+v (schema %s)", campaignUID, current, next, schema)

	err = s.metafieldAPI.SetMetafields(c, productUID, counterMetafields(schema, next))
	if err != nil {
		return fmt.Errorf("error writing progress of campaign %s: %w", campaignUID, err)
	}

	return nil
}

func (s *service) AppendBackerEntry(c context.Context, campaignUID string, entry BackerFeedEntry) error {
	productUID, err := parseCampaignUID(campaignUID)
	if err != nil {
		return err
	}

	metafields, err := s.metafieldAPI.GetProductMetafields(c, productUID)
	if err != nil {
		return fmt.Errorf("error fetching metafields of campaign %s: %w", campaignUID, err)
	}

	feed := parseFeed(metafields)
	feed = append(feed, entry)
	if len(feed) > backerFeedCap {
		// keep the most recent entries by insertion order
		feed = feed[len(feed)-backerFeedCap:]
	}

	jsonBytes, err := json.Marshal(feed)
	if err != nil {
		return myerrors.NewInternalError(fmt.Errorf("error serializing backer feed of campaign %s: %s", campaignUID, err))
	}

	err = s.metafieldAPI.SetMetafields(c, productUID, []shopifyapi.Metafield{
		{
			Namespace: backerFeedNamespace,
			Key:       backerFeedKey,
			Type:      "json",
			Value:     string(jsonBytes),
		},
	})
	if err != nil {
		return fmt.Errorf("error writing backer feed of campaign %s: %w", campaignUID, err)
	}

	return nil
}

// resolveSchema detects the counter layout once per campaign and caches it
func (s *service) resolveSchema(productUID int64, metafields []shopifyapi.Metafield) SchemaVersion {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	schema, found := s.schemaCache[productUID]
	if found {
		return schema
	}
	schema = detectSchema(metafields)
	s.schemaCache[productUID] = schema

	return schema
}

// parseFeed tolerates a missing or malformed feed by starting over empty
func parseFeed(metafields []shopifyapi.Metafield) []BackerFeedEntry {
	for _, mf := range metafields {
		if mf.Namespace == backerFeedNamespace && mf.Key == backerFeedKey {
			feed := []BackerFeedEntry{}
			err := json.Unmarshal([]byte(mf.Value), &feed)
			if err != nil {
				return []BackerFeedEntry{}
			}
			return feed
		}
	}
	return []BackerFeedEntry{}
}

func parseCampaignUID(campaignUID string) (int64, error) {
	productUID, err := strconv.ParseInt(campaignUID, 10, 64)
	if err != nil {
		return 0, myerrors.NewValidationError(fmt.Errorf("invalid campaign uid '%s'", campaignUID))
	}
	return productUID, nil
}
