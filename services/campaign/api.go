package campaign

import (
	"context"
	"time"
)

type ProgressDelta struct {
	Quantity      int64
	Backers       int64
	AmountInCents int64
}

type ProgressSnapshot struct {
	Quantity      int64
	Backers       int64
	AmountInCents int64
}

func (s ProgressSnapshot) Add(delta ProgressDelta) ProgressSnapshot {
	return ProgressSnapshot{
		Quantity:      s.Quantity + delta.Quantity,
		Backers:       s.Backers + delta.Backers,
		AmountInCents: s.AmountInCents + delta.AmountInCents,
	}
}

type BackerFeedEntry struct {
	Name      string    `json:"name"`
	Quantity  int64     `json:"quantity"`
	Amount    string    `json:"amount"`
	Timestamp time.Time `json:"timestamp"`
	Location  string    `json:"location,omitempty"`
	OrderRef  string    `json:"orderRef,omitempty"`
}

//go:generate mockgen -source=api.go -package campaign -destination progress_mock.go Progress
type Progress interface {
	// ApplyDelta increments the campaign's funding counters
	ApplyDelta(c context.Context, campaignUID string, delta ProgressDelta) error

	// AppendBackerEntry adds one entry to the bounded public backer feed
	AppendBackerEntry(c context.Context, campaignUID string, entry BackerFeedEntry) error
}
