package contribution

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/MarcGrol/campaignbackend/lib/mycontext"
	"github.com/MarcGrol/campaignbackend/lib/myhttp"
	"github.com/MarcGrol/campaignbackend/lib/mylog"
	"github.com/MarcGrol/campaignbackend/lib/mypubsub"
	"github.com/MarcGrol/campaignbackend/lib/mystore"
	"github.com/MarcGrol/campaignbackend/lib/mytime"
	"github.com/MarcGrol/campaignbackend/lib/myuuid"
	"github.com/MarcGrol/campaignbackend/services/fulfillment/fulfillmentevents"
)

type webService struct {
	logger  mylog.Logger
	service *service
}

// Use dependency injection to isolate the infrastructure and easy testing
func NewWebService(contributionStore mystore.Store[ContributionRecord], statsStore mystore.Store[CampaignStats], subscriber mypubsub.PubSub, nower mytime.Nower, uuider myuuid.UUIDer) *webService {
	logger := mylog.New("contribution")
	return &webService{
		logger:  logger,
		service: newService(contributionStore, statsStore, subscriber, nower, uuider, logger),
	}
}

func (s *webService) RegisterEndpoints(c context.Context, router *mux.Router) error {
	// Receives pushed fulfillment events
	router.HandleFunc("/api/contribution/event", s.handleEventEnvelope()).Methods("POST")

	// Public query API
	router.HandleFunc("/api/campaigns/{campaignUID}/stats", s.campaignStatsPage()).Methods("GET")
	router.HandleFunc("/api/campaigns/{campaignUID}/contributions", s.contributionListPage()).Methods("GET")

	return s.service.Subscribe(c)
}

func (s *webService) handleEventEnvelope() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		err := fulfillmentevents.DispatchEvent(c, r.Body, s.service)
		if err != nil {
			errorWriter.WriteError(c, w, 1, err)
			return
		}

		errorWriter.Write(c, w, http.StatusOK, myhttp.SuccessResponse{
			Message: "Successfully processed event",
		})
	}
}

type statsResponse struct {
	CampaignID                 string    `json:"campaignId"`
	TotalRaisedInCents         int64     `json:"totalRaised"`
	TotalCookiesSold           int64     `json:"totalCookiesSold"`
	TotalBackers               int64     `json:"totalBackers"`
	AverageContributionInCents int64     `json:"averageContribution"`
	LastUpdated                time.Time `json:"lastUpdated"`
}

func (s *webService) campaignStatsPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		campaignUID := mux.Vars(r)["campaignUID"]

		stats, err := s.service.getCampaignStats(c, campaignUID)
		if err != nil {
			errorWriter.WriteError(c, w, 2, err)
			return
		}

		errorWriter.Write(c, w, http.StatusOK, statsResponse{
			CampaignID:                 stats.CampaignUID,
			TotalRaisedInCents:         stats.TotalRaisedInCents,
			TotalCookiesSold:           stats.TotalCookiesSold,
			TotalBackers:               stats.TotalBackers,
			AverageContributionInCents: stats.AverageContributionInCents,
			LastUpdated:                stats.LastUpdated,
		})
	}
}

type contributionResponse struct {
	OrderID          string    `json:"orderId"`
	ContributorName  string    `json:"contributorName"`
	AmountInCents    int64     `json:"amount"`
	CookiesPurchased int64     `json:"cookiesPurchased"`
	IsAnonymous      bool      `json:"isAnonymous"`
	Status           string    `json:"status"`
	CreatedAt        time.Time `json:"createdAt"`
}

func (s *webService) contributionListPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		campaignUID := mux.Vars(r)["campaignUID"]

		records, err := s.service.listContributions(c, campaignUID)
		if err != nil {
			errorWriter.WriteError(c, w, 3, err)
			return
		}

		resp := make([]contributionResponse, 0, len(records))
		for _, rec := range records {
			resp = append(resp, contributionResponse{
				OrderID:          rec.OrderUID,
				ContributorName:  rec.ContributorName,
				AmountInCents:    rec.AmountInCents,
				CookiesPurchased: rec.CookiesPurchased,
				IsAnonymous:      rec.IsAnonymous,
				Status:           string(rec.Status),
				CreatedAt:        rec.CreatedAt,
			})
		}

		errorWriter.Write(c, w, http.StatusOK, resp)
	}
}
