package main

import (
	"encoding/json"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	amqp "github.com/streadway/amqp"

	"github.com/example/nushka/internal/config"
	"github.com/example/nushka/internal/database"
	"github.com/example/nushka/internal/handlers"
	"github.com/example/nushka/internal/routes"
	"github.com/example/nushka/internal/services"
	"github.com/example/nushka/pkg/rabbitmq"
)

func main() {
	cfg := config.Load()
	db := database.Connect(cfg.DatabaseURL)

	if err := database.SeedProducts(db); err != nil {
		log.Printf("catalog seed failed: %v", err)
	}

	var events *rabbitmq.Client
	if cfg.RabbitMQURL != "" {
		client, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL})
		if err != nil {
			log.Printf("RabbitMQ unavailable, order events disabled: %v", err)
		} else {
			events = client
			defer events.Close()

			// Confirmation emails ride the order queue so a mail API
			// hiccup never blocks checkout.
			mail := services.NewMailService(cfg.MailAPIURL, cfg.MailAPIKey, cfg.MailFrom)
			if err := events.ConsumeOrderEvents(func(msg amqp.Delivery) error {
				var event rabbitmq.OrderEvent
				if err := json.Unmarshal(msg.Body, &event); err != nil {
					log.Printf("dropping malformed order event: %v", err)
					return nil
				}
				if event.CustomerEmail == "" {
					return nil
				}
				return mail.SendOrderConfirmation(event.CustomerEmail, event.OrderNumber, event.Total)
			}); err != nil {
				log.Printf("order event consumer failed to start: %v", err)
			}
		}
	}

	app := fiber.New(fiber.Config{
		AppName:      "Nushka Backend",
		ErrorHandler: handlers.ErrorHandler,
	})

	app.Use(recover.New())
	app.Use(logger.New())

	routes.Register(app, db, cfg, events)

	log.Printf("Starting server on :%s", cfg.AppPort)
	if err := app.Listen(":" + cfg.AppPort); err != nil {
		log.Fatalf("fiber.Listen error: %v", err)
	}
}
