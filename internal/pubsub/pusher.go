// Package pubsub delivers workflow events to connected dashboards through
// Pusher Channels.
package pubsub

import (
	"context"
	"fmt"

	"github.com/pusher/pusher-http-go/v5"
)

// Pusher implements the workflow's Publisher interface. It is constructed
// once at process start and injected; there is no package-level client.
type Pusher struct {
	client pusher.Client
}

func New(appID, key, secret, cluster string) *Pusher {
	return &Pusher{
		client: pusher.Client{
			AppID:   appID,
			Key:     key,
			Secret:  secret,
			Cluster: cluster,
			Secure:  true,
		},
	}
}

func (p *Pusher) Publish(_ context.Context, channel, event string, payload any) error {
	if err := p.client.Trigger(channel, event, payload); err != nil {
		return fmt.Errorf("triggering %s on %s: %w", event, channel, err)
	}

	return nil
}
