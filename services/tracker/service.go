package tracker

import (
	"context"
	"database/sql"
	"time"

	"brokertrack-backend/lib/scrapers/jca"
	"brokertrack-backend/services/tracker/db"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("services/tracker")

// Service owns the shipment store and the scrape pipeline against the
// declaration-tracker portal.
type Service struct {
	db        *sql.DB
	qry       *db.Queries
	portal    *jca.Client
	extractor jca.Extractor
}

type Options struct {
	Portal *jca.Client
	// defaults to jca.DocumentExtractor
	Extractor jca.Extractor
}

func NewService(database *sql.DB, opts Options) Service {
	extractor := opts.Extractor
	if extractor == nil {
		extractor = jca.DocumentExtractor{}
	}
	return Service{
		db:        database,
		qry:       db.New(database),
		portal:    opts.Portal,
		extractor: extractor,
	}
}

type NewShipment struct {
	OfficeCode          string
	Year                string
	CommercialReference string
	Trn                 string
	TrackingRole        string
}

func (s Service) CreateShipment(ctx context.Context, arg NewShipment) (db.Shipment, error) {
	ctx, span := tracer.Start(ctx, "CreateShipment")
	defer span.End()

	span.SetAttributes(attribute.String("reference", arg.CommercialReference))

	role := arg.TrackingRole
	if role == "" {
		role = "Declarant"
	}
	id, err := s.qry.CreateShipment(ctx, db.CreateShipmentParams{
		OfficeCode:          arg.OfficeCode,
		Year:                arg.Year,
		CommercialReference: arg.CommercialReference,
		Trn:                 arg.Trn,
		TrackingRole:        role,
		CreatedAt:           time.Now().Unix(),
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return db.Shipment{}, err
	}
	return s.qry.GetShipment(ctx, id)
}

func (s Service) GetShipment(ctx context.Context, id int64) (db.Shipment, error) {
	return s.qry.GetShipment(ctx, id)
}

func (s Service) ListShipments(ctx context.Context) ([]db.Shipment, error) {
	return s.qry.ListShipments(ctx)
}

func (s Service) ListStatusEntries(ctx context.Context, shipmentId int64) ([]db.StatusEntry, error) {
	return s.qry.ListStatusEntries(ctx, shipmentId)
}

func (s Service) DeleteShipment(ctx context.Context, id int64) error {
	ctx, span := tracer.Start(ctx, "DeleteShipment")
	defer span.End()

	err := s.qry.DeleteShipment(ctx, id)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}
