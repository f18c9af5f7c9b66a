package services

import (
	"context"
	"fmt"
	"log"

	pubnub "github.com/pubnub/go/v7"

	"ticket-gate/utils"
)

// Notifier pushes lifecycle events to holder/staff channels. Publishing is
// best effort: callers log failures and never fail the operation over them.
type Notifier interface {
	Publish(ctx context.Context, channel string, message map[string]any) error
}

// PubNubNotifier publishes through PubNub behind a circuit breaker so a
// degraded push service cannot slow the scan path.
type PubNubNotifier struct {
	pn      *pubnub.PubNub
	breaker *utils.CircuitBreaker
}

func NewPubNubNotifier(pn *pubnub.PubNub) *PubNubNotifier {
	return &PubNubNotifier{
		pn:      pn,
		breaker: utils.NewCircuitBreaker("pubnub-notifier"),
	}
}

func (n *PubNubNotifier) Publish(ctx context.Context, channel string, message map[string]any) error {
	_, err := n.breaker.Execute(ctx, func() (any, error) {
		_, _, err := n.pn.Publish().
			Channel(channel).
			Message(message).
			Execute()
		return nil, err
	})
	if err != nil {
		return fmt.Errorf("publish to %s: %w", channel, err)
	}
	return nil
}

// NoopNotifier discards messages; used when PubNub keys are not configured.
type NoopNotifier struct{}

func (NoopNotifier) Publish(_ context.Context, channel string, _ map[string]any) error {
	log.Printf("notifier disabled, dropping message for channel %s", channel)
	return nil
}

func userChannel(account string) string {
	return fmt.Sprintf("user-%s", account)
}

func eventStaffChannel(eventID uint64) string {
	return fmt.Sprintf("event-staff-%d", eventID)
}
