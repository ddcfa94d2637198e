package services

import (
	"context"
	"fmt"

	"github.com/DIVT313/forensic-agent/internal/core/domain"
	"github.com/DIVT313/forensic-agent/internal/core/ports/driven"
)

// NewExtractor returns the extractor for an extractable kind.
func NewExtractor(kind domain.SourceKind) (Extractor, error) {
	switch kind {
	case domain.SourceContacts:
		e := newExtractor(kind, mapContact)
		e.present = func(contacts []domain.Contact) any {
			return domain.FlattenContacts(contacts)
		}
		return e, nil
	case domain.SourceMessages:
		return newExtractor(kind, mapMessage), nil
	case domain.SourceCallEvents:
		return newExtractor(kind, mapCallEvent), nil
	case domain.SourceCalendarEvents:
		return newExtractor(kind, mapCalendarEvent), nil
	default:
		return nil, fmt.Errorf("%w: no extractor for %q", domain.ErrUnsupportedType, kind)
	}
}

// DefaultExtractors returns one extractor per extractable kind.
func DefaultExtractors() map[domain.SourceKind]Extractor {
	extractors := make(map[domain.SourceKind]Extractor, 4)
	for _, kind := range domain.AllSourceKinds() {
		e, err := NewExtractor(kind)
		if err != nil {
			panic(err)
		}
		extractors[kind] = e
	}
	return extractors
}

func mapContact(ctx context.Context, x *extraction, raw domain.RawRecord) (domain.Contact, error) {
	id, err := raw.String(domain.FieldID)
	if err != nil {
		return domain.Contact{}, err
	}
	if id == nil || *id == "" {
		return domain.Contact{}, fmt.Errorf("%w: contact without %s", domain.ErrDecode, domain.FieldID)
	}
	name, err := raw.String(domain.FieldDisplayName)
	if err != nil {
		return domain.Contact{}, err
	}
	return domain.Contact{
		ID:     *id,
		Name:   name,
		Phones: x.contactPhones(ctx, *id),
	}, nil
}

// contactPhones runs the phone sub-query for one contact. Failures are noted
// and never abort the contact loop; phones read before a failure are kept.
func (x *extraction) contactPhones(ctx context.Context, contactID string) []string {
	phones := []string{}
	stream, err := x.reader.Open(ctx, driven.Query{Kind: domain.SourceContactPhones, ParentID: contactID})
	if err != nil {
		x.note("phones for contact %s: %v", contactID, err)
		return phones
	}
	defer stream.Close()

	for stream.Next() {
		number, err := stream.Record().String(domain.FieldNumber)
		if err != nil {
			x.note("phones for contact %s: dropped row: %v", contactID, err)
			continue
		}
		if number == nil {
			continue
		}
		phones = append(phones, *number)
	}
	if err := stream.Err(); err != nil {
		x.note("phones for contact %s: %v", contactID, err)
	}
	return phones
}

func mapMessage(_ context.Context, _ *extraction, raw domain.RawRecord) (domain.Message, error) {
	var (
		m   domain.Message
		err error
	)
	if m.Address, err = raw.String(domain.FieldAddress); err != nil {
		return m, err
	}
	if m.Body, err = raw.String(domain.FieldBody); err != nil {
		return m, err
	}
	if m.Date, err = raw.Int64(domain.FieldDate); err != nil {
		return m, err
	}
	if m.Type, err = raw.Int(domain.FieldType); err != nil {
		return m, err
	}
	return m, nil
}

func mapCallEvent(_ context.Context, _ *extraction, raw domain.RawRecord) (domain.CallEvent, error) {
	var (
		c   domain.CallEvent
		err error
	)
	if c.Number, err = raw.String(domain.FieldNumber); err != nil {
		return c, err
	}
	if c.Date, err = raw.Int64(domain.FieldDate); err != nil {
		return c, err
	}
	if c.Duration, err = raw.Int64(domain.FieldDuration); err != nil {
		return c, err
	}
	if c.Type, err = raw.Int(domain.FieldType); err != nil {
		return c, err
	}
	return c, nil
}

func mapCalendarEvent(_ context.Context, _ *extraction, raw domain.RawRecord) (domain.CalendarEvent, error) {
	var (
		ev  domain.CalendarEvent
		err error
	)
	if !raw.Has(domain.FieldID) {
		return ev, fmt.Errorf("%w: event without %s", domain.ErrDecode, domain.FieldID)
	}
	if ev.ID, err = raw.Int64(domain.FieldID); err != nil {
		return ev, err
	}
	if ev.Title, err = raw.String(domain.FieldTitle); err != nil {
		return ev, err
	}
	if ev.DTStart, err = raw.Int64(domain.FieldDTStart); err != nil {
		return ev, err
	}
	if ev.DTEnd, err = raw.Int64(domain.FieldDTEnd); err != nil {
		return ev, err
	}
	return ev, nil
}
