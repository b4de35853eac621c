package events

import (
	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	EventsExchange = "sidecart.events"

	FragmentsRefreshedRoutingKey = "sidecart.fragments.refreshed.v1"
	SettingsUpdatedRoutingKey    = "sidecart.settings.updated.v1"

	producerName = "sidecart-service"
)

func declareEventsExchange(ch *amqp.Channel) error {
	return ch.ExchangeDeclare(
		EventsExchange,
		"topic",
		true,
		false,
		false,
		false,
		nil,
	)
}
