package contribution

import (
	"context"
	"fmt"
	"sort"

	"github.com/MarcGrol/campaignbackend/lib/myerrors"
	"github.com/MarcGrol/campaignbackend/lib/myhttp"
	"github.com/MarcGrol/campaignbackend/lib/mylog"
	"github.com/MarcGrol/campaignbackend/lib/mypubsub"
	"github.com/MarcGrol/campaignbackend/lib/mystore"
	"github.com/MarcGrol/campaignbackend/lib/mytime"
	"github.com/MarcGrol/campaignbackend/lib/myuuid"
	"github.com/MarcGrol/campaignbackend/services/fulfillment/fulfillmentevents"
)

type service struct {
	contributionStore mystore.Store[ContributionRecord]
	statsStore        mystore.Store[CampaignStats]
	pubsub            mypubsub.PubSub
	nower             mytime.Nower
	uuider            myuuid.UUIDer
	logger            mylog.Logger
}

// Use dependency injection to isolate the infrastructure and easy testing
func newService(contributionStore mystore.Store[ContributionRecord], statsStore mystore.Store[CampaignStats], pubsub mypubsub.PubSub, nower mytime.Nower, uuider myuuid.UUIDer, logger mylog.Logger) *service {
	return &service{
		contributionStore: contributionStore,
		statsStore:        statsStore,
		pubsub:            pubsub,
		nower:             nower,
		uuider:            uuider,
		logger:            logger,
	}
}

func (s *service) Subscribe(c context.Context) error {
	err := s.pubsub.CreateTopic(c, fulfillmentevents.TopicName)
	if err != nil {
		return fmt.Errorf("error creating topic %s: %s", fulfillmentevents.TopicName, err)
	}

	err = s.pubsub.Subscribe(c, fulfillmentevents.TopicName, myhttp.GuessHostnameWithScheme()+"/api/contribution/event")
	if err != nil {
		return fmt.Errorf("error subscribing to topic %s: %s", fulfillmentevents.TopicName, err)
	}

	return nil
}

func (s *service) OnFulfillmentCompleted(c context.Context, topic string, event fulfillmentevents.FulfillmentCompleted) error {
	s.logger.Log(c, event.PaymentRef, mylog.SeverityInfo, "Recording contribution for order %s on campaign %s", event.OrderUID, event.CampaignUID)

	// must be idempotent: the event is delivered at-least-once
	existing, err := s.contributionStore.Query(c, []mystore.Filter{
		{Field: "OrderUID", Compare: "=", Value: event.OrderUID},
	}, "CreatedAt")
	if err != nil {
		return myerrors.NewInternalError(fmt.Errorf("error checking for existing contribution: %s", err))
	}
	if len(existing) > 0 {
		s.logger.Log(c, event.PaymentRef, mylog.SeverityInfo, "Contribution for order %s already recorded, skipping", event.OrderUID)
		return nil
	}

	record := ContributionRecord{
		UID:              s.uuider.Create(),
		CampaignUID:      event.CampaignUID,
		OrderUID:         event.OrderUID,
		CustomerUID:      event.BackerEmail,
		AmountInCents:    event.AmountInCents,
		CookiesPurchased: event.Quantity,
		ContributorName:  event.BackerName,
		IsAnonymous:      event.IsAnonymous,
		Status:           StatusPending,
		CreatedAt:        s.nower.Now(),
	}

	return s.recordContribution(c, record)
}

func (s *service) OnFulfillmentFailed(c context.Context, topic string, event fulfillmentevents.FulfillmentFailed) error {
	s.logger.Log(c, event.PaymentRef, mylog.SeverityWarn, "Fulfillment of payment %s on campaign %s failed: %s", event.PaymentRef, event.CampaignUID, event.Reason)
	return nil
}

// recordContribution runs the two writes as a saga: the contribution row
// and the stats row live in separate tables, so a failure halfway is
// repaired with compensating deletes instead of a cross-table transaction.
func (s *service) recordContribution(c context.Context, record ContributionRecord) error {
	statsCreated := false

	workflow := saga{
		logger: s.logger,
		steps: []sagaStep{
			{
				name: "create-contribution",
				execute: func(c context.Context) error {
					return s.contributionStore.Put(c, record.UID, record)
				},
				compensate: func(c context.Context) error {
					return s.contributionStore.Delete(c, record.UID)
				},
			},
			{
				name: "update-campaign-stats",
				execute: func(c context.Context) error {
					return s.statsStore.RunInTransaction(c, func(c context.Context) error {
						stats, found, err := s.statsStore.Get(c, record.CampaignUID)
						if err != nil {
							return err
						}
						if !found {
							stats = CampaignStats{CampaignUID: record.CampaignUID}
							statsCreated = true
						}

						stats.add(record.AmountInCents, record.CookiesPurchased)
						stats.LastUpdated = s.nower.Now()

						return s.statsStore.Put(c, record.CampaignUID, stats)
					})
				},
				compensate: func(c context.Context) error {
					if statsCreated {
						return s.statsStore.Delete(c, record.CampaignUID)
					}
					// Undoing an increment needs the pre-image, which we do
					// not capture. Leave the counters alone and report it.
					s.logger.Log(c, record.UID, mylog.SeverityError,
						"ALERT: stats of campaign %s still include rolled-back contribution %s (order %s, amount %d)",
						record.CampaignUID, record.UID, record.OrderUID, record.AmountInCents)
					return nil
				},
			},
			{
				name: "finalize-contribution",
				execute: func(c context.Context) error {
					record.Status = StatusDone
					return s.contributionStore.Put(c, record.UID, record)
				},
			},
		},
	}

	err := workflow.run(c, record.UID)
	if err != nil {
		return myerrors.NewInternalError(err)
	}

	s.logger.Log(c, record.UID, mylog.SeverityInfo, "Recorded contribution %s of %d cents on campaign %s", record.UID, record.AmountInCents, record.CampaignUID)

	return nil
}

func (s *service) getCampaignStats(c context.Context, campaignUID string) (CampaignStats, error) {
	stats, found, err := s.statsStore.Get(c, campaignUID)
	if err != nil {
		return CampaignStats{}, myerrors.NewInternalError(err)
	}
	if !found {
		return CampaignStats{}, myerrors.NewNotFoundError(fmt.Errorf("no stats for campaign %s", campaignUID))
	}

	return stats, nil
}

func (s *service) listContributions(c context.Context, campaignUID string) ([]ContributionRecord, error) {
	records, err := s.contributionStore.Query(c, []mystore.Filter{
		{Field: "CampaignUID", Compare: "=", Value: campaignUID},
	}, "CreatedAt")
	if err != nil {
		return nil, myerrors.NewInternalError(err)
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].CreatedAt.After(records[j].CreatedAt)
	})

	// The list is public: hide who an anonymous backer is
	for i, r := range records {
		if r.IsAnonymous {
			records[i].ContributorName = "Anonymous"
			records[i].CustomerUID = ""
		}
	}

	return records, nil
}
