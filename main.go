package main

import (
	"context"
	"log"
	"net/http"

	"github.com/joho/godotenv"

	"stash/api"
	"stash/config"
	"stash/kafka"
	"stash/rssfeeds"
	"stash/storage"
	"stash/types"
)

func main() {
	// Load environment variables from .env if present (non-fatal if missing)
	_ = godotenv.Load()
	cfg := config.FromEnv()

	ctx := context.Background()

	store, err := storage.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("storage init failed: %v", err)
	}
	defer store.Close()
	if err := store.Migrate(ctx); err != nil {
		log.Fatalf("migration failed: %v", err)
	}

	seen, err := storage.NewSeenStore(cfg.RedisAddr, cfg.RedisPass, config.SeenTTL)
	if err != nil {
		log.Fatalf("redis init failed: %v", err)
	}
	defer seen.Close()

	importer := rssfeeds.NewImporter(store, config.ImportWorkers)

	// With brokers configured the poller publishes jobs to Kafka and a
	// consumer group runs the imports; otherwise imports happen inline.
	var publish rssfeeds.PublishFunc
	if len(cfg.KafkaBrokers) > 0 {
		producer, err := kafka.NewProducer(cfg.KafkaBrokers, cfg.ImportTopic)
		if err != nil {
			log.Fatalf("kafka producer init failed: %v", err)
		}
		defer producer.Close()

		consumer, err := kafka.NewConsumer(kafka.ConsumerConfig{
			Brokers: cfg.KafkaBrokers,
			Topic:   cfg.ImportTopic,
			GroupID: cfg.ImportGroup,
			Handler: importHandler(importer),
		})
		if err != nil {
			log.Fatalf("kafka consumer init failed: %v", err)
		}
		if err := consumer.Start(ctx); err != nil {
			log.Fatalf("kafka consumer start failed: %v", err)
		}
		defer consumer.Close()

		publish = func(job types.ImportJob) error {
			return producer.Publish(job.URL, job)
		}
		log.Printf("Import queue enabled (brokers: %v, topic: %s)", cfg.KafkaBrokers, cfg.ImportTopic)
	} else {
		log.Printf("Kafka not configured; feed items import inline")
	}

	poller := rssfeeds.NewPoller(store, seen, importer, publish, cfg.PollInterval)
	go poller.Run(ctx)
	log.Printf("Feed poller running every %s", cfg.PollInterval)

	r := api.NewRouter(api.Deps{
		Items:       store,
		Highlights:  store,
		Feeds:       store,
		Refresh:     poller.PollOnce,
		DefaultUser: cfg.DefaultUser,
	})

	addr := ":" + cfg.Port
	log.Printf("Starting API server on %s", addr)
	log.Println("API endpoints available:")
	log.Println("  GET    /api/health")
	log.Println("  POST   /api/articles")
	log.Println("  GET    /api/articles")
	log.Println("  GET    /api/articles/:id")
	log.Println("  DELETE /api/articles/:id")
	log.Println("  POST   /api/articles/:id/archive")
	log.Println("  POST   /api/articles/:id/tags")
	log.Println("  DELETE /api/articles/:id/tags/:tag")
	log.Println("  GET    /api/tags")
	log.Println("  POST   /api/articles/:id/highlights")
	log.Println("  GET    /api/articles/:id/highlights")
	log.Println("  DELETE /api/highlights/:id")
	log.Println("  POST   /api/feeds")
	log.Println("  GET    /api/feeds")
	log.Println("  DELETE /api/feeds/:id")
	log.Println("  POST   /api/feeds/refresh")
	log.Println("  GET    /metrics")

	if err := http.ListenAndServe(addr, r); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

// importHandler adapts the importer to the Kafka consumer contract.
// Extraction failures are permanent for a given page, so the offset is
// marked anyway; only storage errors trigger redelivery.
func importHandler(importer *rssfeeds.Importer) kafka.HandleFunc {
	return func(ctx context.Context, message []byte) error {
		job, err := kafka.DecodeJob(message)
		if err != nil {
			log.Printf("Dropping undecodable import job: %v", err)
			return nil
		}
		if err := importer.ImportOne(ctx, job); err != nil {
			log.Printf("Import failed for %s: %v", job.URL, err)
		}
		return nil
	}
}
