package services

import (
	"context"
	"fmt"

	"ticket-gate/internal/status"
	"ticket-gate/internal/store"
	"ticket-gate/models"
)

// StaffService answers "may principal P perform an action requiring
// at-least role R on event E" and manages the roster under the role
// hierarchy rules. The organizer identity carries implicit manager
// authority that cannot be revoked.
type StaffService struct {
	roster  store.RosterStore
	catalog store.EventCatalog
}

func NewStaffService(roster store.RosterStore, catalog store.EventCatalog) *StaffService {
	return &StaffService{
		roster:  roster,
		catalog: catalog,
	}
}

// Role resolves the effective role of an account on an event. The
// organizer always reads as manager regardless of roster contents.
func (s *StaffService) Role(ctx context.Context, eventID uint64, account string) (models.StaffRole, error) {
	event, err := s.catalog.GetEvent(ctx, eventID)
	if err != nil {
		return models.RoleNone, err
	}

	if account == event.Organizer {
		return models.RoleManager, nil
	}

	return s.roster.GetStaffRole(ctx, eventID, account)
}

// Require fails with InsufficientStaffPrivileges unless account holds at
// least required on the event.
func (s *StaffService) Require(ctx context.Context, eventID uint64, account string, required models.StaffRole) error {
	actual, err := s.Role(ctx, eventID, account)
	if err != nil {
		return err
	}

	if !models.HasRole(actual, required) {
		return fmt.Errorf("%w: %s holds %s, needs %s", status.ErrInsufficientStaffPrivilege, account, actual, required)
	}
	return nil
}

// Assign grants account a role on the event. Managers may assign any role
// below manager; only the organizer may appoint a manager. Assigning none
// is rejected — removal is a distinct operation, not a demotion target.
func (s *StaffService) Assign(ctx context.Context, eventID uint64, caller, account string, role models.StaffRole) error {
	if role == models.RoleNone {
		return status.ErrCannotAssignNoneRole
	}

	event, err := s.catalog.GetEvent(ctx, eventID)
	if err != nil {
		return err
	}

	if role == models.RoleManager {
		if caller != event.Organizer {
			return fmt.Errorf("%w: only the organizer may appoint a manager", status.ErrInsufficientStaffPrivilege)
		}
	} else if err := s.Require(ctx, eventID, caller, models.RoleManager); err != nil {
		return err
	}

	return s.roster.SetStaffRole(ctx, eventID, account, role)
}

// Revoke removes account from the event roster. Revoking a manager takes
// the organizer; revoking lesser roles takes a manager. The organizer's
// implicit authority can never be removed.
func (s *StaffService) Revoke(ctx context.Context, eventID uint64, caller, account string) error {
	event, err := s.catalog.GetEvent(ctx, eventID)
	if err != nil {
		return err
	}

	if account == event.Organizer {
		return status.ErrCannotRemoveOrganizer
	}

	target, err := s.roster.GetStaffRole(ctx, eventID, account)
	if err != nil {
		return err
	}

	if target == models.RoleManager {
		if caller != event.Organizer {
			return fmt.Errorf("%w: only the organizer may remove a manager", status.ErrInsufficientStaffPrivilege)
		}
	} else if err := s.Require(ctx, eventID, caller, models.RoleManager); err != nil {
		return err
	}

	return s.roster.RemoveStaffRole(ctx, eventID, account)
}

// Roster lists the event's explicit staff assignments. Viewing takes a
// manager; the organizer's implicit role is annotated by the caller, not
// stored.
func (s *StaffService) Roster(ctx context.Context, eventID uint64, caller string) (map[string]models.StaffRole, error) {
	if err := s.Require(ctx, eventID, caller, models.RoleManager); err != nil {
		return nil, err
	}
	return s.roster.Roster(ctx, eventID)
}
