package notificationControllers

import (
	"context"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"
)

// FCMPusher sends push notifications through Firebase Cloud Messaging.
type FCMPusher struct {
	client *messaging.Client
}

// NewFCMPusher builds a pusher from a service-account credentials file.
// Returns nil (push disabled) when no credentials are configured.
func NewFCMPusher(ctx context.Context, credentialsFile string) (*FCMPusher, error) {
	if credentialsFile == "" {
		return nil, nil
	}
	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(credentialsFile))
	if err != nil {
		return nil, fmt.Errorf("failed to init firebase app: %w", err)
	}
	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to init fcm client: %w", err)
	}
	return &FCMPusher{client: client}, nil
}

func (p *FCMPusher) Push(ctx context.Context, token, title, body string) error {
	_, err := p.client.Send(ctx, &messaging.Message{
		Token: token,
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
	})
	return err
}
