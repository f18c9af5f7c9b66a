package store

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"ticket-gate/models"
)

// RedisScanLog keeps the latest redemption audit entry per ticket.
type RedisScanLog struct {
	rdb *redis.Client
}

func NewRedisScanLog(rdb *redis.Client) *RedisScanLog {
	return &RedisScanLog{rdb: rdb}
}

func scanLogKey(ticketID uint64) string {
	return fmt.Sprintf("scan:audit:%d", ticketID)
}

func (s *RedisScanLog) Record(ctx context.Context, rec models.ScanRecord) error {
	fields := map[string]any{
		"event_id":     rec.EventID,
		"validated_by": rec.ValidatedBy,
		"validated_at": rec.ValidatedAt.Format(time.RFC3339),
		"payload_mode": string(rec.PayloadMode),
	}
	if err := s.rdb.HSet(ctx, scanLogKey(rec.TicketID), fields).Err(); err != nil {
		return fmt.Errorf("record scan for ticket %d: %w", rec.TicketID, err)
	}
	return nil
}

func (s *RedisScanLog) Last(ctx context.Context, ticketID uint64) (models.ScanRecord, error) {
	fields, err := s.rdb.HGetAll(ctx, scanLogKey(ticketID)).Result()
	if err != nil {
		return models.ScanRecord{}, fmt.Errorf("scan record for ticket %d: %w", ticketID, err)
	}
	if len(fields) == 0 {
		return models.ScanRecord{}, redis.Nil
	}

	eventID, _ := strconv.ParseUint(fields["event_id"], 10, 64)
	validatedAt, _ := time.Parse(time.RFC3339, fields["validated_at"])

	return models.ScanRecord{
		TicketID:    ticketID,
		EventID:     eventID,
		ValidatedBy: fields["validated_by"],
		ValidatedAt: validatedAt,
		PayloadMode: models.QrMode(fields["payload_mode"]),
	}, nil
}
