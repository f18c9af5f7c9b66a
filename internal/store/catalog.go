package store

import (
	"context"
	"fmt"

	"github.com/pocketbase/dbx"
	"github.com/pocketbase/pocketbase/core"

	"ticket-gate/models"
)

// PocketBaseCatalog reads events and organizer resale rules from the
// PocketBase "events" collection. The collection is the organizer-facing
// config surface; this subsystem only ever reads it.
type PocketBaseCatalog struct {
	app core.App
}

func NewPocketBaseCatalog(app core.App) *PocketBaseCatalog {
	return &PocketBaseCatalog{app: app}
}

func (c *PocketBaseCatalog) eventRecord(eventID uint64) (*core.Record, error) {
	record, err := c.app.FindFirstRecordByFilter(
		"events",
		"code = {:code}",
		dbx.Params{"code": eventID},
	)
	if err != nil {
		return nil, fmt.Errorf("event %d: %w", eventID, err)
	}
	return record, nil
}

func (c *PocketBaseCatalog) GetEvent(_ context.Context, eventID uint64) (models.Event, error) {
	record, err := c.eventRecord(eventID)
	if err != nil {
		return models.Event{}, err
	}

	return models.Event{
		Code:      eventID,
		Name:      record.GetString("name"),
		Venue:     record.GetString("venue"),
		StartsAt:  record.GetDateTime("starts_at").Time(),
		EndsAt:    record.GetDateTime("ends_at").Time(),
		Cancelled: record.GetBool("cancelled"),
		Organizer: record.GetString("organizer"),
		QrMode:    models.QrMode(record.GetString("qr_mode")),
	}, nil
}

func (c *PocketBaseCatalog) GetResaleRules(_ context.Context, eventID uint64) (models.ResaleRules, error) {
	record, err := c.eventRecord(eventID)
	if err != nil {
		return models.ResaleRules{}, err
	}

	return models.ResaleRules{
		AllowResell:          record.GetBool("allow_resell"),
		MaxMarkupBps:         int64(record.GetInt("max_markup_bps")),
		OrganizerFeeBps:      int64(record.GetInt("organizer_fee_bps")),
		RestrictResellTiming: record.GetBool("restrict_resell_timing"),
		MinDaysBeforeEvent:   record.GetInt("min_days_before_event"),
	}, nil
}
