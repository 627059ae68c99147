package event

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	RoutingKeyLoanSubmitted = "loan.submitted"
	RoutingKeyLoanApproved  = "loan.approved"
	RoutingKeyLoanHeld      = "loan.held"
	RoutingKeyLoanRejected  = "loan.rejected"
	publisherAppID          = "loan-desk"
)

type EventPublisher interface {
	PublishLoanEvent(ctx context.Context, event LoanEvent) error
}

type LoanEvent struct {
	AccountNumber int64     `json:"accountNumber"`
	CustomerID    int64     `json:"customerId,omitempty"`
	LoanType      string    `json:"loanType,omitempty"`
	LoanAmount    int64     `json:"loanAmount,omitempty"`
	Action        string    `json:"action"`
	Timestamp     time.Time `json:"timestamp"`
}

// RoutingKeyFor maps a lifecycle action (submit, approve, hold, reject) to its topic key.
func RoutingKeyFor(action string) (string, error) {
	switch action {
	case "submit":
		return RoutingKeyLoanSubmitted, nil
	case "approve":
		return RoutingKeyLoanApproved, nil
	case "hold":
		return RoutingKeyLoanHeld, nil
	case "reject":
		return RoutingKeyLoanRejected, nil
	default:
		return "", fmt.Errorf("no routing key for action %q", action)
	}
}

type RabbitMQEventPublisher struct {
	conn         *amqp.Connection
	exchangeName string
	logger       *slog.Logger
}

func NewRabbitMQEventPublisher(conn *amqp.Connection, exchangeName string, logger *slog.Logger) (EventPublisher, error) {
	if conn == nil {
		return nil, fmt.Errorf("RabbitMQ connection cannot be nil")
	}
	if exchangeName == "" {
		return nil, fmt.Errorf("RabbitMQ exchange name cannot be empty")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}

	tempCh, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("failed to open temporary channel for exchange declaration: %w", err)
	}
	defer tempCh.Close()

	err = tempCh.ExchangeDeclare(
		exchangeName,
		amqp.ExchangeTopic,
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to declare exchange '%s': %w", exchangeName, err)
	}
	logger.Info("Ensured RabbitMQ exchange exists", "exchange", exchangeName, "type", amqp.ExchangeTopic)

	return &RabbitMQEventPublisher{
		conn:         conn,
		exchangeName: exchangeName,
		logger:       logger.With("component", "RabbitMQEventPublisher", "exchange", exchangeName),
	}, nil
}

func (p *RabbitMQEventPublisher) PublishLoanEvent(ctx context.Context, event LoanEvent) error {
	routingKey, err := RoutingKeyFor(event.Action)
	if err != nil {
		p.logger.WarnContext(ctx, "Dropping loan event with unknown action", slog.String("action", event.Action))
		return err
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	return p.publish(ctx, routingKey, event)
}

func (p *RabbitMQEventPublisher) publish(ctx context.Context, routingKey string, payload any) error {
	logCtx := p.logger.With(slog.String("routingKey", routingKey))

	channel, err := p.conn.Channel()
	if err != nil {
		logCtx.ErrorContext(ctx, "Failed to open RabbitMQ channel", slog.Any("error", err))
		return fmt.Errorf("failed to open channel: %w", err)
	}
	defer channel.Close()

	body, err := encodeEvent(payload)
	if err != nil {
		logCtx.ErrorContext(ctx, "Failed to marshal event payload to JSON", slog.Any("error", err))
		return err
	}

	logCtx.DebugContext(ctx, "Publishing message", "bodySize", len(body))

	err = channel.PublishWithContext(
		ctx,
		p.exchangeName,
		routingKey,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
			Body:         body,
			AppId:        publisherAppID,
		},
	)
	if err != nil {
		logCtx.ErrorContext(ctx, "Failed to publish message to RabbitMQ", slog.Any("error", err))
		return fmt.Errorf("failed to publish message: %w", err)
	}

	logCtx.InfoContext(ctx, "Successfully published message")
	return nil
}

func encodeEvent(payload any) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event: %w", err)
	}
	return body, nil
}
