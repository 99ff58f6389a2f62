package db

import "database/sql"

type Shipment struct {
	ID                  int64
	OfficeCode          string
	Year                string
	CommercialReference string
	Trn                 string
	TrackingRole        string
	Status              string
	CustomsReference    sql.NullString
	LastScrapedAt       sql.NullInt64
	CreatedAt           int64
}

type StatusEntry struct {
	ShipmentID        int64
	StatusType        string
	StatusValue       string
	DateTimeAssigned  sql.NullString
	DateTimeCompleted sql.NullString
	UpdatedAt         int64
}
