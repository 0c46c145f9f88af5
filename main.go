package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/gorilla/mux"

	"github.com/MarcGrol/campaignbackend/lib/mypublisher"
	"github.com/MarcGrol/campaignbackend/lib/mypubsub"
	"github.com/MarcGrol/campaignbackend/lib/myqueue"
	"github.com/MarcGrol/campaignbackend/lib/mystore"
	"github.com/MarcGrol/campaignbackend/lib/mytime"
	"github.com/MarcGrol/campaignbackend/lib/myuuid"
	"github.com/MarcGrol/campaignbackend/services/campaign"
	"github.com/MarcGrol/campaignbackend/services/contribution"
	"github.com/MarcGrol/campaignbackend/services/fulfillment"
	"github.com/MarcGrol/campaignbackend/services/shopifyapi"
)

func main() {
	c := context.Background()

	router := mux.NewRouter()

	nower := mytime.RealNower{}
	uuider := myuuid.RealUUIDer{}

	queue, queueCleanup, err := myqueue.New(c)
	if err != nil {
		log.Fatalf("Error creating task queue: %s", err)
	}
	defer queueCleanup()

	pubsub, pubsubCleanup, err := mypubsub.New(c)
	if err != nil {
		log.Fatalf("Error creating pubsub: %s", err)
	}
	defer pubsubCleanup()

	publisher, publisherCleanup, err := mypublisher.New(c, pubsub, queue, nower)
	if err != nil {
		log.Fatalf("Error creating publisher: %s", err)
	}
	defer publisherCleanup()
	publisher.RegisterEndpoints(c, router)

	shopifyClient := createShopifyClient()

	createFulfillmentService(c, router, shopifyClient, publisher, nower)
	createContributionService(c, router, pubsub, nower, uuider)

	startWebServerBlocking(router)
}

func createShopifyClient() *shopifyapi.Client {
	cfg, err := shopifyapi.NewConfigFromEnv()
	if err != nil {
		log.Fatalf("Error reading shopify config: %s", err)
	}

	return shopifyapi.NewClient(cfg)
}

func createFulfillmentService(c context.Context, router *mux.Router, shopifyClient *shopifyapi.Client, publisher mypublisher.Publisher, nower mytime.Nower) {
	cfg, err := fulfillment.NewConfigFromEnv()
	if err != nil {
		log.Fatalf("Error reading fulfillment config: %s", err)
	}

	progress := campaign.NewService(shopifyClient)

	fulfillmentService, err := fulfillment.NewWebService(cfg, fulfillment.NewPayer(), shopifyClient, progress, publisher, nower)
	if err != nil {
		log.Fatalf("Error creating fulfillment service: %s", err)
	}

	err = fulfillmentService.RegisterEndpoints(c, router)
	if err != nil {
		log.Fatalf("Error registering fulfillment service: %s", err)
	}
}

func createContributionService(c context.Context, router *mux.Router, pubsub mypubsub.PubSub, nower mytime.Nower, uuider myuuid.UUIDer) {
	contributionStore, _, err := mystore.New[contribution.ContributionRecord](c)
	if err != nil {
		log.Fatalf("Error creating contribution store: %s", err)
	}

	statsStore, _, err := mystore.New[contribution.CampaignStats](c)
	if err != nil {
		log.Fatalf("Error creating campaign stats store: %s", err)
	}

	contributionService := contribution.NewWebService(contributionStore, statsStore, pubsub, nower, uuider)

	err = contributionService.RegisterEndpoints(c, router)
	if err != nil {
		log.Fatalf("Error registering contribution service: %s", err)
	}
}

func startWebServerBlocking(router *mux.Router) {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Starting webserver on port %s (try http://localhost:%s)", port, port)
	err := http.ListenAndServe(fmt.Sprintf(":%s", port), router)
	if err != nil {
		log.Fatalf("Error starting webserver on port %s: %s", port, err)
	}
}
