package main

import (
	"log"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/chris/otp-transfers/pkg/app"
	"github.com/chris/otp-transfers/pkg/config"
	"github.com/chris/otp-transfers/pkg/delivery"
	"github.com/chris/otp-transfers/pkg/rabbitmq"
)

var dispatcher *delivery.Dispatcher

func init() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if cfg.RabbitMQURL == "" {
		log.Fatal("RABBITMQ_URL environment variable not set")
	}

	logger := app.NewLogger(cfg)

	// The connection lives for the lifetime of the execution environment.
	producer, err := rabbitmq.NewProducer(cfg.RabbitMQURL, logger)
	if err != nil {
		log.Fatalf("failed to connect to rabbitmq: %v", err)
	}

	dispatcher = delivery.NewDispatcher(delivery.NewRabbitMQSender(producer, cfg.NotificationsExchange), logger)
}

func main() {
	lambda.Start(dispatcher.HandleSQSEvent)
}
