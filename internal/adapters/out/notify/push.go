package notify

import (
	"context"
	"errors"
	"fmt"

	"orderflow/internal/core/ports"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"
)

// MessagingClient is the part of the FCM client used here. *messaging.Client satisfies it.
type MessagingClient interface {
	Send(ctx context.Context, message *messaging.Message) (string, error)
}

// FCMPush sends customer push notifications through Firebase Cloud Messaging.
// The Firebase app is initialised once, at construction.
type FCMPush struct {
	client MessagingClient
}

func NewFCMPush(ctx context.Context, credentialsFile string) (*FCMPush, error) {
	if credentialsFile == "" {
		return nil, errors.New("fcm: credentials file is required")
	}
	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(credentialsFile))
	if err != nil {
		return nil, fmt.Errorf("fcm: init app: %w", err)
	}
	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("fcm: init messaging: %w", err)
	}
	return NewFCMPushWithClient(client), nil
}

func NewFCMPushWithClient(client MessagingClient) *FCMPush {
	return &FCMPush{client: client}
}

func (p *FCMPush) SendPush(ctx context.Context, msg ports.PushMessage) (string, error) {
	if msg.Token == "" {
		return "", errors.New("fcm: device token is required")
	}
	id, err := p.client.Send(ctx, &messaging.Message{
		Token: msg.Token,
		Notification: &messaging.Notification{
			Title: msg.Title,
			Body:  msg.Body,
		},
		Data: msg.Data,
	})
	if err != nil {
		return "", fmt.Errorf("fcm: send: %w", err)
	}
	return id, nil
}
