package tracker

import (
	"context"
	"database/sql"
	"time"

	"brokertrack-backend/lib/scrapers/jca"
	"brokertrack-backend/services/tracker/db"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// status-entry keys for top-level declaration attributes, prefixed so
// they can never collide with a processing-unit name
const (
	AttrImporterName    = "ATTR:IMPORTER NAME"
	AttrLaneAssigned    = "ATTR:LANE ASSIGNED"
	AttrCustomsRelease  = "ATTR:CUSTOMS RELEASE"
	AttrCustomsExitNote = "ATTR:CUSTOMS EXIT NOTE"
)

// reconcile folds one scrape result into the store. Reapplying the
// same result is a no-op beyond the last-scraped timestamp, which is
// what makes an abandoned batch safe to rerun.
func (s Service) reconcile(ctx context.Context, shipmentId int64, status jca.Status, result jca.Result) error {
	ctx, span := tracer.Start(ctx, "reconcile")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("shipment", shipmentId),
		attribute.String("status", string(status)),
	)

	fail := func(err error) error {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	now := time.Now().Unix()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fail(err)
	}
	defer tx.Rollback()
	txqry := s.qry.WithTx(tx)

	if result.NotFound {
		err := txqry.MarkShipmentNotValid(ctx, db.MarkShipmentNotValidParams{
			ID:            shipmentId,
			LastScrapedAt: now,
		})
		if err != nil {
			return fail(err)
		}
		return tx.Commit()
	}

	err = txqry.UpdateShipmentScrape(ctx, db.UpdateShipmentScrapeParams{
		ID:               shipmentId,
		Status:           string(status),
		CustomsReference: nullString(result.Detail(jca.DetailCustomsReference)),
		LastScrapedAt:    now,
	})
	if err != nil {
		return fail(err)
	}

	for _, unit := range result.AssignedUnits {
		value := unit.Status
		if value == "" {
			value = "Pending"
		}
		err := txqry.UpsertStatusEntry(ctx, db.UpsertStatusEntryParams{
			ShipmentID:        shipmentId,
			StatusType:        unit.Unit,
			StatusValue:       value,
			DateTimeAssigned:  nullString(unit.DateAssigned),
			DateTimeCompleted: nullString(unit.DateCompleted),
			UpdatedAt:         now,
		})
		if err != nil {
			return fail(err)
		}
	}

	for _, attr := range []struct {
		key   string
		value string
	}{
		{AttrImporterName, result.Detail(jca.DetailImporterName)},
		{AttrLaneAssigned, result.Detail(jca.DetailLaneAssigned)},
		{AttrCustomsRelease, result.Detail(jca.DetailCustomsRelease)},
		{AttrCustomsExitNote, result.Detail(jca.DetailCustomsExitNote)},
	} {
		// an empty scrape value never clobbers a previously stored one
		if attr.value == "" {
			continue
		}
		err := txqry.UpsertStatusEntry(ctx, db.UpsertStatusEntryParams{
			ShipmentID:  shipmentId,
			StatusType:  attr.key,
			StatusValue: attr.value,
			UpdatedAt:   now,
		})
		if err != nil {
			return fail(err)
		}
	}

	return tx.Commit()
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
