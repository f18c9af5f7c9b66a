package store

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"ticket-gate/models"
)

// RedisRoster keeps one hash per event mapping staff accounts to role
// names. Absent accounts read as RoleNone.
type RedisRoster struct {
	rdb *redis.Client
}

func NewRedisRoster(rdb *redis.Client) *RedisRoster {
	return &RedisRoster{rdb: rdb}
}

func rosterKey(eventID uint64) string {
	return fmt.Sprintf("staff:%d", eventID)
}

func (r *RedisRoster) GetStaffRole(ctx context.Context, eventID uint64, account string) (models.StaffRole, error) {
	name, err := r.rdb.HGet(ctx, rosterKey(eventID), account).Result()
	if err == redis.Nil {
		return models.RoleNone, nil
	} else if err != nil {
		return models.RoleNone, fmt.Errorf("staff role for %s on event %d: %w", account, eventID, err)
	}

	role, err := models.ParseStaffRole(name)
	if err != nil {
		return models.RoleNone, fmt.Errorf("staff role for %s on event %d: %w", account, eventID, err)
	}
	return role, nil
}

func (r *RedisRoster) SetStaffRole(ctx context.Context, eventID uint64, account string, role models.StaffRole) error {
	if err := r.rdb.HSet(ctx, rosterKey(eventID), account, role.String()).Err(); err != nil {
		return fmt.Errorf("set staff role for %s on event %d: %w", account, eventID, err)
	}
	return nil
}

func (r *RedisRoster) RemoveStaffRole(ctx context.Context, eventID uint64, account string) error {
	if err := r.rdb.HDel(ctx, rosterKey(eventID), account).Err(); err != nil {
		return fmt.Errorf("remove staff role for %s on event %d: %w", account, eventID, err)
	}
	return nil
}

// Roster returns every explicit staff assignment on the event. The
// organizer's implicit manager role is not stored and does not appear here.
func (r *RedisRoster) Roster(ctx context.Context, eventID uint64) (map[string]models.StaffRole, error) {
	entries, err := r.rdb.HGetAll(ctx, rosterKey(eventID)).Result()
	if err != nil {
		return nil, fmt.Errorf("roster for event %d: %w", eventID, err)
	}

	roster := make(map[string]models.StaffRole, len(entries))
	for account, name := range entries {
		role, err := models.ParseStaffRole(name)
		if err != nil {
			return nil, fmt.Errorf("roster for event %d: %w", eventID, err)
		}
		roster[account] = role
	}
	return roster, nil
}
