package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ticket-gate/internal/status"
	"ticket-gate/models"
)

func TestRedisRoster_GetStaffRole(t *testing.T) {
	db, mock := redismock.NewClientMock()
	roster := NewRedisRoster(db)

	mock.ExpectHGet("staff:7", "addr-scanner").SetVal("scanner")

	role, err := roster.GetStaffRole(context.Background(), 7, "addr-scanner")
	require.NoError(t, err)
	assert.Equal(t, models.RoleScanner, role)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisRoster_GetStaffRole_Missing(t *testing.T) {
	db, mock := redismock.NewClientMock()
	roster := NewRedisRoster(db)

	// Unknown accounts read as none, not as an error.
	mock.ExpectHGet("staff:7", "addr-unknown").RedisNil()

	role, err := roster.GetStaffRole(context.Background(), 7, "addr-unknown")
	require.NoError(t, err)
	assert.Equal(t, models.RoleNone, role)
}

func TestRedisRoster_SetAndRemove(t *testing.T) {
	db, mock := redismock.NewClientMock()
	roster := NewRedisRoster(db)

	mock.ExpectHSet("staff:7", "addr-b", "checkin").SetVal(1)
	require.NoError(t, roster.SetStaffRole(context.Background(), 7, "addr-b", models.RoleCheckIn))

	mock.ExpectHDel("staff:7", "addr-b").SetVal(1)
	require.NoError(t, roster.RemoveStaffRole(context.Background(), 7, "addr-b"))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisListings_PutGetDelete(t *testing.T) {
	db, mock := redismock.NewClientMock()
	store := NewRedisListings(db)

	created := time.Now().UTC().Truncate(time.Second)
	listing := models.ResaleListing{
		ID:        "LST1A2B",
		TicketID:  testTicketID,
		EventID:   7,
		Seller:    "addr-a",
		Price:     decimal.NewFromInt(110_000),
		CreatedAt: created,
	}

	mock.ExpectHSet("listing:LST1A2B", map[string]any{
		"ticket_id":  listing.TicketID,
		"event_id":   listing.EventID,
		"seller":     listing.Seller,
		"price":      "110000",
		"created_at": created.Format(time.RFC3339),
	}).SetVal(5)
	mock.ExpectSAdd("listings:event:7", "LST1A2B").SetVal(1)
	require.NoError(t, store.Put(context.Background(), listing))

	mock.ExpectHGetAll("listing:LST1A2B").SetVal(map[string]string{
		"ticket_id":  "1007300042",
		"event_id":   "7",
		"seller":     "addr-a",
		"price":      "110000",
		"created_at": created.Format(time.RFC3339),
	})
	got, err := store.Get(context.Background(), "LST1A2B")
	require.NoError(t, err)
	assert.Equal(t, listing.TicketID, got.TicketID)
	assert.Equal(t, listing.Seller, got.Seller)
	assert.True(t, listing.Price.Equal(got.Price))

	mock.ExpectDel("listing:LST1A2B").SetVal(1)
	mock.ExpectSRem("listings:event:7", "LST1A2B").SetVal(1)
	require.NoError(t, store.Delete(context.Background(), listing))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisListings_GetMissing(t *testing.T) {
	db, mock := redismock.NewClientMock()
	store := NewRedisListings(db)

	mock.ExpectHGetAll("listing:NOPE").SetVal(map[string]string{})

	_, err := store.Get(context.Background(), "NOPE")
	assert.True(t, errors.Is(err, status.ErrListingNotFound))
}

func TestRedisScanLog_RecordAndLast(t *testing.T) {
	db, mock := redismock.NewClientMock()
	log := NewRedisScanLog(db)

	validated := time.Now().UTC().Truncate(time.Second)
	rec := models.ScanRecord{
		TicketID:    testTicketID,
		EventID:     7,
		ValidatedBy: "addr-scanner",
		ValidatedAt: validated,
		PayloadMode: models.QrModeRotating,
	}

	mock.ExpectHSet("scan:audit:1007300042", map[string]any{
		"event_id":     rec.EventID,
		"validated_by": rec.ValidatedBy,
		"validated_at": validated.Format(time.RFC3339),
		"payload_mode": "rotating",
	}).SetVal(4)
	require.NoError(t, log.Record(context.Background(), rec))

	mock.ExpectHGetAll("scan:audit:1007300042").SetVal(map[string]string{
		"event_id":     "7",
		"validated_by": "addr-scanner",
		"validated_at": validated.Format(time.RFC3339),
		"payload_mode": "rotating",
	})
	got, err := log.Last(context.Background(), testTicketID)
	require.NoError(t, err)
	assert.Equal(t, rec.ValidatedBy, got.ValidatedBy)
	assert.Equal(t, models.QrModeRotating, got.PayloadMode)
	assert.Equal(t, validated.Unix(), got.ValidatedAt.Unix())
}
