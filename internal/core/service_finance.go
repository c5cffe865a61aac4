package core

import (
	"context"

	"obracore/pkg/domain"
)

// CreateMovement persists a financial movement.
func (s *Service) CreateMovement(ctx context.Context, movement Movement) (Movement, Result, error) {
	var created Movement
	res, err := s.transact(ctx, "create_movement", func(tx domain.Transaction) error {
		var err error
		created, err = tx.CreateMovement(movement)
		return err
	}, func() string { return created.ID })
	return created, res, err
}

// UpdateMovement mutates a movement using the provided mutator.
func (s *Service) UpdateMovement(ctx context.Context, id string, mutator func(*Movement) error) (Movement, Result, error) {
	var updated Movement
	res, err := s.transact(ctx, "update_movement", func(tx domain.Transaction) error {
		var err error
		updated, err = tx.UpdateMovement(id, mutator)
		return err
	}, func() string { return id })
	return updated, res, err
}

// DeleteMovement removes a movement record.
func (s *Service) DeleteMovement(ctx context.Context, id string) (Result, error) {
	return s.transact(ctx, "delete_movement", func(tx domain.Transaction) error {
		return tx.DeleteMovement(id)
	}, func() string { return id })
}

// ListMovements returns all movements, newest first.
func (s *Service) ListMovements(ctx context.Context) ([]Movement, error) {
	var out []Movement
	err := s.read(ctx, func(v domain.TransactionView) error {
		out = v.ListMovements()
		return nil
	})
	return sortByCreation(out, func(m Movement) Base { return m.Base }), err
}

// ListMovementsByOrganization returns an organization's movements, newest first.
func (s *Service) ListMovementsByOrganization(ctx context.Context, organizationID string) ([]Movement, error) {
	var out []Movement
	err := s.read(ctx, func(v domain.TransactionView) error {
		for _, movement := range v.ListMovements() {
			if movement.OrganizationID == organizationID {
				out = append(out, movement)
			}
		}
		return nil
	})
	return sortByCreation(out, func(m Movement) Base { return m.Base }), err
}

// GetMovement returns a movement by id.
func (s *Service) GetMovement(ctx context.Context, id string) (Movement, error) {
	var out Movement
	err := s.read(ctx, func(v domain.TransactionView) error {
		movement, ok := v.FindMovement(id)
		if !ok {
			return ErrNotFound{Entity: EntityMovement, ID: id}
		}
		out = movement
		return nil
	})
	return out, err
}

// CreateCalendarEvent persists a calendar event.
func (s *Service) CreateCalendarEvent(ctx context.Context, event CalendarEvent) (CalendarEvent, Result, error) {
	var created CalendarEvent
	res, err := s.transact(ctx, "create_calendar_event", func(tx domain.Transaction) error {
		var err error
		created, err = tx.CreateCalendarEvent(event)
		return err
	}, func() string { return created.ID })
	return created, res, err
}

// UpdateCalendarEvent mutates a calendar event using the provided mutator.
func (s *Service) UpdateCalendarEvent(ctx context.Context, id string, mutator func(*CalendarEvent) error) (CalendarEvent, Result, error) {
	var updated CalendarEvent
	res, err := s.transact(ctx, "update_calendar_event", func(tx domain.Transaction) error {
		var err error
		updated, err = tx.UpdateCalendarEvent(id, mutator)
		return err
	}, func() string { return id })
	return updated, res, err
}

// DeleteCalendarEvent removes a calendar event record.
func (s *Service) DeleteCalendarEvent(ctx context.Context, id string) (Result, error) {
	return s.transact(ctx, "delete_calendar_event", func(tx domain.Transaction) error {
		return tx.DeleteCalendarEvent(id)
	}, func() string { return id })
}

// ListCalendarEvents returns all calendar events, newest first.
func (s *Service) ListCalendarEvents(ctx context.Context) ([]CalendarEvent, error) {
	var out []CalendarEvent
	err := s.read(ctx, func(v domain.TransactionView) error {
		out = v.ListCalendarEvents()
		return nil
	})
	return sortByCreation(out, func(e CalendarEvent) Base { return e.Base }), err
}

// GetCalendarEvent returns a calendar event by id.
func (s *Service) GetCalendarEvent(ctx context.Context, id string) (CalendarEvent, error) {
	var out CalendarEvent
	err := s.read(ctx, func(v domain.TransactionView) error {
		event, ok := v.FindCalendarEvent(id)
		if !ok {
			return ErrNotFound{Entity: EntityCalendarEvent, ID: id}
		}
		out = event
		return nil
	})
	return out, err
}

// CreateContact persists a contact.
func (s *Service) CreateContact(ctx context.Context, contact Contact) (Contact, Result, error) {
	var created Contact
	res, err := s.transact(ctx, "create_contact", func(tx domain.Transaction) error {
		var err error
		created, err = tx.CreateContact(contact)
		return err
	}, func() string { return created.ID })
	return created, res, err
}

// UpdateContact mutates a contact using the provided mutator.
func (s *Service) UpdateContact(ctx context.Context, id string, mutator func(*Contact) error) (Contact, Result, error) {
	var updated Contact
	res, err := s.transact(ctx, "update_contact", func(tx domain.Transaction) error {
		var err error
		updated, err = tx.UpdateContact(id, mutator)
		return err
	}, func() string { return id })
	return updated, res, err
}

// UpdateContactTypes replaces a contact's type tags. Second step of the
// contact modal flow.
func (s *Service) UpdateContactTypes(ctx context.Context, id string, types []string) (Contact, Result, error) {
	return s.UpdateContact(ctx, id, func(c *Contact) error {
		c.ContactTypes = append([]string(nil), types...)
		return nil
	})
}

// DeleteContact removes a contact record.
func (s *Service) DeleteContact(ctx context.Context, id string) (Result, error) {
	return s.transact(ctx, "delete_contact", func(tx domain.Transaction) error {
		return tx.DeleteContact(id)
	}, func() string { return id })
}

// ListContacts returns all contacts, newest first.
func (s *Service) ListContacts(ctx context.Context) ([]Contact, error) {
	var out []Contact
	err := s.read(ctx, func(v domain.TransactionView) error {
		out = v.ListContacts()
		return nil
	})
	return sortByCreation(out, func(c Contact) Base { return c.Base }), err
}

// GetContact returns a contact by id.
func (s *Service) GetContact(ctx context.Context, id string) (Contact, error) {
	var out Contact
	err := s.read(ctx, func(v domain.TransactionView) error {
		contact, ok := v.FindContact(id)
		if !ok {
			return ErrNotFound{Entity: EntityContact, ID: id}
		}
		out = contact
		return nil
	})
	return out, err
}
