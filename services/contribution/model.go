package contribution

import (
	"time"
)

type ContributionStatus string

const (
	StatusPending    ContributionStatus = "pending"
	StatusDone       ContributionStatus = "done"
	StatusFailed     ContributionStatus = "failed"
	StatusRolledBack ContributionStatus = "rolled_back"
)

type ContributionRecord struct {
	UID              string
	CampaignUID      string
	OrderUID         string
	CustomerUID      string
	AmountInCents    int64
	CookiesPurchased int64
	ContributorName  string
	IsAnonymous      bool
	Status           ContributionStatus
	CreatedAt        time.Time
}

type CampaignStats struct {
	CampaignUID                string
	TotalRaisedInCents         int64
	TotalCookiesSold           int64
	TotalBackers               int64
	AverageContributionInCents int64
	LastUpdated                time.Time
}

func (s *CampaignStats) add(amountInCents int64, cookies int64) {
	s.TotalRaisedInCents += amountInCents
	s.TotalCookiesSold += cookies
	s.TotalBackers++
	s.AverageContributionInCents = s.TotalRaisedInCents / s.TotalBackers
}
