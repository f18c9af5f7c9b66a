package store

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"ticket-gate/internal/status"
	"ticket-gate/models"
)

// RedisListings stores open resale listings as hashes with a per-event
// index set, mirroring the ticket mirror's layout.
type RedisListings struct {
	rdb *redis.Client
}

func NewRedisListings(rdb *redis.Client) *RedisListings {
	return &RedisListings{rdb: rdb}
}

func listingKey(id string) string {
	return fmt.Sprintf("listing:%s", id)
}

func eventListingsKey(eventID uint64) string {
	return fmt.Sprintf("listings:event:%d", eventID)
}

func (s *RedisListings) Put(ctx context.Context, l models.ResaleListing) error {
	fields := map[string]any{
		"ticket_id":  l.TicketID,
		"event_id":   l.EventID,
		"seller":     l.Seller,
		"price":      l.Price.String(),
		"created_at": l.CreatedAt.Format(time.RFC3339),
	}
	if err := s.rdb.HSet(ctx, listingKey(l.ID), fields).Err(); err != nil {
		return fmt.Errorf("put listing %s: %w", l.ID, err)
	}
	if err := s.rdb.SAdd(ctx, eventListingsKey(l.EventID), l.ID).Err(); err != nil {
		return fmt.Errorf("index listing %s: %w", l.ID, err)
	}
	return nil
}

func (s *RedisListings) Get(ctx context.Context, id string) (models.ResaleListing, error) {
	fields, err := s.rdb.HGetAll(ctx, listingKey(id)).Result()
	if err != nil {
		return models.ResaleListing{}, fmt.Errorf("get listing %s: %w", id, err)
	}
	if len(fields) == 0 {
		return models.ResaleListing{}, fmt.Errorf("%w: %s", status.ErrListingNotFound, id)
	}

	return listingFromFields(id, fields)
}

func (s *RedisListings) Delete(ctx context.Context, l models.ResaleListing) error {
	if err := s.rdb.Del(ctx, listingKey(l.ID)).Err(); err != nil {
		return fmt.Errorf("delete listing %s: %w", l.ID, err)
	}
	if err := s.rdb.SRem(ctx, eventListingsKey(l.EventID), l.ID).Err(); err != nil {
		return fmt.Errorf("deindex listing %s: %w", l.ID, err)
	}
	return nil
}

func (s *RedisListings) ListByEvent(ctx context.Context, eventID uint64) ([]models.ResaleListing, error) {
	ids, err := s.rdb.SMembers(ctx, eventListingsKey(eventID)).Result()
	if err != nil {
		return nil, fmt.Errorf("listings for event %d: %w", eventID, err)
	}

	listings := make([]models.ResaleListing, 0, len(ids))
	for _, id := range ids {
		l, err := s.Get(ctx, id)
		if err != nil {
			continue
		}
		listings = append(listings, l)
	}
	return listings, nil
}

func listingFromFields(id string, fields map[string]string) (models.ResaleListing, error) {
	ticketID, err := strconv.ParseUint(fields["ticket_id"], 10, 64)
	if err != nil {
		return models.ResaleListing{}, fmt.Errorf("listing %s: bad ticket_id %q", id, fields["ticket_id"])
	}
	eventID, _ := strconv.ParseUint(fields["event_id"], 10, 64)

	price, err := decimal.NewFromString(fields["price"])
	if err != nil {
		return models.ResaleListing{}, fmt.Errorf("listing %s: bad price %q", id, fields["price"])
	}

	createdAt, _ := time.Parse(time.RFC3339, fields["created_at"])

	return models.ResaleListing{
		ID:        id,
		TicketID:  ticketID,
		EventID:   eventID,
		Seller:    fields["seller"],
		Price:     price,
		CreatedAt: createdAt,
	}, nil
}
