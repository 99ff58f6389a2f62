package tracker

import (
	"context"
	"fmt"
	"log/slog"

	"brokertrack-backend/lib/scrapers/jca"
	"brokertrack-backend/services/tracker/db"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// the portal rejects searches without a filing year, shipments created
// before the year field existed fall back to this
const defaultYear = "2026"

type ShipmentResult struct {
	ShipmentId int64      `json:"shipmentId"`
	Ref        string     `json:"ref"`
	Success    bool       `json:"success"`
	Status     jca.Status `json:"status,omitempty"`
	Error      string     `json:"error,omitempty"`
}

type BatchResult struct {
	Message string           `json:"message"`
	Results []ShipmentResult `json:"results"`
}

// ScrapeBatch runs the scrape pipeline over one shipment (by id) or,
// when id is 0, over every shipment not in a terminal status.
// Shipments are processed strictly one after another, the portal binds
// its state token to a single in-flight interaction and concurrent
// sessions against it are unreliable. Individual shipment failures are
// recorded in the batch result and never abort the batch, only a
// failure to enumerate shipments at all is returned as an error.
func (s Service) ScrapeBatch(ctx context.Context, shipmentId int64) (BatchResult, error) {
	ctx, span := tracer.Start(ctx, "ScrapeBatch")
	defer span.End()

	var shipments []db.Shipment
	if shipmentId != 0 {
		shipment, err := s.qry.GetShipment(ctx, shipmentId)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return BatchResult{}, err
		}
		shipments = []db.Shipment{shipment}
	} else {
		var err error
		shipments, err = s.qry.ListActiveShipments(ctx)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return BatchResult{}, err
		}
	}

	results := make([]ShipmentResult, 0, len(shipments))
	for _, shipment := range shipments {
		result := s.scrapeShipment(ctx, shipment)
		if !result.Success {
			slog.WarnContext(
				ctx, "scrape failed",
				"shipment", shipment.ID,
				"reference", shipment.CommercialReference,
				"err", result.Error,
			)
		} else {
			slog.InfoContext(
				ctx, "scraped shipment",
				"shipment", shipment.ID,
				"reference", shipment.CommercialReference,
				"status", result.Status,
			)
		}
		results = append(results, result)
	}

	span.SetAttributes(attribute.Int("count", len(results)))
	return BatchResult{
		Message: fmt.Sprintf("Scraped %d shipment(s)", len(results)),
		Results: results,
	}, nil
}

func (s Service) scrapeShipment(ctx context.Context, shipment db.Shipment) ShipmentResult {
	ctx, span := tracer.Start(ctx, "scrapeShipment")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("shipment", shipment.ID),
		attribute.String("reference", shipment.CommercialReference),
	)

	fail := func(err error) ShipmentResult {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return ShipmentResult{
			ShipmentId: shipment.ID,
			Ref:        shipment.CommercialReference,
			Error:      err.Error(),
		}
	}

	// the ViewState token is single-use, every search needs a fresh
	// session and a failed search needs a fresh one again
	session, err := s.portal.AcquireSession(ctx)
	if err != nil {
		return fail(err)
	}

	year := shipment.Year
	if year == "" {
		year = defaultYear
	}
	markup, err := s.portal.SearchDeclaration(ctx, session, jca.Query{
		OfficeCode:          shipment.OfficeCode,
		Year:                year,
		CommercialReference: shipment.CommercialReference,
		Trn:                 shipment.Trn,
		Role:                shipment.TrackingRole,
	})
	if err != nil {
		return fail(err)
	}

	result, err := s.extractor.Extract(markup)
	if err != nil {
		// malformed markup writes nothing, the shipment stays
		// eligible for the next cycle
		return fail(err)
	}

	status := jca.Classify(result)
	err = s.reconcile(ctx, shipment.ID, status, result)
	if err != nil {
		return fail(fmt.Errorf("persist scrape result: %w", err))
	}

	return ShipmentResult{
		ShipmentId: shipment.ID,
		Ref:        shipment.CommercialReference,
		Success:    true,
		Status:     status,
	}
}
