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

// maxTxRetries bounds WATCH retries when an unrelated writer touches the
// ticket hash between read and commit.
const maxTxRetries = 3

// RedisLedger mirrors ticket ownership and status in Redis hashes, one hash
// per ticket plus a per-event index set. Per-ticket atomicity comes from
// WATCH-based optimistic transactions.
type RedisLedger struct {
	rdb *redis.Client
}

func NewRedisLedger(rdb *redis.Client) *RedisLedger {
	return &RedisLedger{rdb: rdb}
}

func ticketKey(id uint64) string {
	return fmt.Sprintf("ticket:%d", id)
}

func eventTicketsKey(eventID uint64) string {
	return fmt.Sprintf("event:%d:tickets", eventID)
}

func (l *RedisLedger) GetTicket(ctx context.Context, id uint64) (models.Ticket, error) {
	fields, err := l.rdb.HGetAll(ctx, ticketKey(id)).Result()
	if err != nil {
		return models.Ticket{}, fmt.Errorf("get ticket %d: %w", id, err)
	}
	if len(fields) == 0 {
		return models.Ticket{}, fmt.Errorf("%w: %d", status.ErrTicketNotFound, id)
	}

	return ticketFromFields(id, fields)
}

// GetOwner reads only the owner field, for callers that need ownership
// without the full record.
func (l *RedisLedger) GetOwner(ctx context.Context, id uint64) (string, error) {
	owner, err := l.rdb.HGet(ctx, ticketKey(id), "owner").Result()
	if err == redis.Nil {
		return "", fmt.Errorf("%w: %d", status.ErrTicketNotFound, id)
	} else if err != nil {
		return "", fmt.Errorf("get owner of ticket %d: %w", id, err)
	}
	return owner, nil
}

func (l *RedisLedger) PutTicket(ctx context.Context, t models.Ticket) error {
	if _, err := l.rdb.HSet(ctx, ticketKey(t.ID), ticketFields(t)).Result(); err != nil {
		return fmt.Errorf("put ticket %d: %w", t.ID, err)
	}
	if err := l.rdb.SAdd(ctx, eventTicketsKey(t.EventID), t.ID).Err(); err != nil {
		return fmt.Errorf("index ticket %d: %w", t.ID, err)
	}
	return nil
}

// CommitTransition applies from -> to only if the ticket still reads from
// under WATCH. A concurrent writer that wins the race leaves the loser with
// an illegal-transition error naming both states.
func (l *RedisLedger) CommitTransition(ctx context.Context, id uint64, from, to models.TicketStatus) error {
	key := ticketKey(id)

	txf := func(tx *redis.Tx) error {
		current, err := tx.HGet(ctx, key, "status").Result()
		if err == redis.Nil {
			return fmt.Errorf("%w: %d", status.ErrTicketNotFound, id)
		} else if err != nil {
			return err
		}

		if models.TicketStatus(current) != from {
			return fmt.Errorf("%w: %s -> %s", status.ErrIllegalTransition, current, to)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, key, "status", string(to))
			return nil
		})
		return err
	}

	for i := 0; i < maxTxRetries; i++ {
		err := l.rdb.Watch(ctx, txf, key)
		if err == redis.TxFailedErr {
			continue
		}
		return err
	}
	return fmt.Errorf("transition ticket %d: %w", id, redis.TxFailedErr)
}

// CommitTransfer moves ownership from -> to in one atomic unit: the ticket
// passes through transferred and re-enters valid under the new owner, with
// the transfer counter bumped. A transfer retires the relationship, not the
// right.
func (l *RedisLedger) CommitTransfer(ctx context.Context, id uint64, from, to string) error {
	key := ticketKey(id)

	txf := func(tx *redis.Tx) error {
		fields, err := tx.HGetAll(ctx, key).Result()
		if err != nil {
			return err
		}
		if len(fields) == 0 {
			return fmt.Errorf("%w: %d", status.ErrTicketNotFound, id)
		}

		if fields["owner"] != from {
			return fmt.Errorf("%w: %s does not own ticket %d", status.ErrNotOwner, from, id)
		}
		if models.TicketStatus(fields["status"]) != models.StatusValid {
			return fmt.Errorf("%w: ticket %d is %s", status.ErrTicketNotTransferable, id, fields["status"])
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, key, "owner", to, "status", string(models.StatusValid))
			pipe.HIncrBy(ctx, key, "transfer_count", 1)
			return nil
		})
		return err
	}

	for i := 0; i < maxTxRetries; i++ {
		err := l.rdb.Watch(ctx, txf, key)
		if err == redis.TxFailedErr {
			continue
		}
		return err
	}
	return fmt.Errorf("transfer ticket %d: %w", id, redis.TxFailedErr)
}

func (l *RedisLedger) TicketsByEvent(ctx context.Context, eventID uint64) ([]models.Ticket, error) {
	members, err := l.rdb.SMembers(ctx, eventTicketsKey(eventID)).Result()
	if err != nil {
		return nil, fmt.Errorf("tickets for event %d: %w", eventID, err)
	}

	tickets := make([]models.Ticket, 0, len(members))
	for _, member := range members {
		id, err := strconv.ParseUint(member, 10, 64)
		if err != nil {
			continue
		}
		t, err := l.GetTicket(ctx, id)
		if err != nil {
			continue
		}
		tickets = append(tickets, t)
	}
	return tickets, nil
}

func ticketFields(t models.Ticket) map[string]any {
	return map[string]any{
		"event_id":       t.EventID,
		"tier_code":      t.TierCode,
		"owner":          t.Owner,
		"status":         string(t.Status),
		"original_price": t.OriginalPrice.String(),
		"purchase_date":  t.PurchaseDate.Format(time.RFC3339),
		"transfer_count": t.TransferCount,
	}
}

func ticketFromFields(id uint64, fields map[string]string) (models.Ticket, error) {
	eventID, err := strconv.ParseUint(fields["event_id"], 10, 64)
	if err != nil {
		return models.Ticket{}, fmt.Errorf("ticket %d: bad event_id %q", id, fields["event_id"])
	}
	tierCode, _ := strconv.Atoi(fields["tier_code"])
	transferCount, _ := strconv.Atoi(fields["transfer_count"])

	price, err := decimal.NewFromString(fields["original_price"])
	if err != nil {
		return models.Ticket{}, fmt.Errorf("ticket %d: bad original_price %q", id, fields["original_price"])
	}

	purchased, _ := time.Parse(time.RFC3339, fields["purchase_date"])

	return models.Ticket{
		ID:            id,
		EventID:       eventID,
		TierCode:      tierCode,
		Owner:         fields["owner"],
		Status:        models.TicketStatus(fields["status"]),
		OriginalPrice: price,
		PurchaseDate:  purchased,
		TransferCount: transferCount,
	}, nil
}
