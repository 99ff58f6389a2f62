package db

import (
	"context"
	"database/sql"
)

type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

type Queries struct {
	db DBTX
}

func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

const shipmentColumns = `id, office_code, year, commercial_reference, trn,
tracking_role, status, customs_reference, last_scraped_at, created_at`

func scanShipment(row interface{ Scan(...interface{}) error }) (Shipment, error) {
	var s Shipment
	err := row.Scan(
		&s.ID,
		&s.OfficeCode,
		&s.Year,
		&s.CommercialReference,
		&s.Trn,
		&s.TrackingRole,
		&s.Status,
		&s.CustomsReference,
		&s.LastScrapedAt,
		&s.CreatedAt,
	)
	return s, err
}

type CreateShipmentParams struct {
	OfficeCode          string
	Year                string
	CommercialReference string
	Trn                 string
	TrackingRole        string
	CreatedAt           int64
}

func (q *Queries) CreateShipment(ctx context.Context, arg CreateShipmentParams) (int64, error) {
	res, err := q.db.ExecContext(ctx, `
INSERT INTO shipments (office_code, year, commercial_reference, trn, tracking_role, created_at)
VALUES (?, ?, ?, ?, ?, ?)`,
		arg.OfficeCode,
		arg.Year,
		arg.CommercialReference,
		arg.Trn,
		arg.TrackingRole,
		arg.CreatedAt,
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (q *Queries) GetShipment(ctx context.Context, id int64) (Shipment, error) {
	return scanShipment(q.db.QueryRowContext(ctx, `
SELECT `+shipmentColumns+` FROM shipments WHERE id = ?`, id))
}

func (q *Queries) ListShipments(ctx context.Context) ([]Shipment, error) {
	rows, err := q.db.QueryContext(ctx, `
SELECT `+shipmentColumns+` FROM shipments ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Shipment
	for rows.Next() {
		s, err := scanShipment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// shipments still worth scraping, everything not in a terminal status
func (q *Queries) ListActiveShipments(ctx context.Context) ([]Shipment, error) {
	rows, err := q.db.QueryContext(ctx, `
SELECT `+shipmentColumns+` FROM shipments
WHERE status NOT IN ('Released', 'Not Valid')
ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Shipment
	for rows.Next() {
		s, err := scanShipment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

type UpdateShipmentScrapeParams struct {
	ID               int64
	Status           string
	CustomsReference sql.NullString
	LastScrapedAt    int64
}

func (q *Queries) UpdateShipmentScrape(ctx context.Context, arg UpdateShipmentScrapeParams) error {
	_, err := q.db.ExecContext(ctx, `
UPDATE shipments SET status = ?, customs_reference = ?, last_scraped_at = ?
WHERE id = ?`,
		arg.Status,
		arg.CustomsReference,
		arg.LastScrapedAt,
		arg.ID,
	)
	return err
}

type MarkShipmentNotValidParams struct {
	ID            int64
	LastScrapedAt int64
}

func (q *Queries) MarkShipmentNotValid(ctx context.Context, arg MarkShipmentNotValidParams) error {
	_, err := q.db.ExecContext(ctx, `
UPDATE shipments SET status = 'Not Valid', last_scraped_at = ?
WHERE id = ?`,
		arg.LastScrapedAt,
		arg.ID,
	)
	return err
}

// statuses are removed explicitly, sqlite only honors the schema's
// cascade when foreign key enforcement is turned on
func (q *Queries) DeleteShipment(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM shipment_statuses WHERE shipment_id = ?`, id)
	if err != nil {
		return err
	}
	_, err = q.db.ExecContext(ctx, `DELETE FROM shipments WHERE id = ?`, id)
	return err
}

type UpsertStatusEntryParams struct {
	ShipmentID        int64
	StatusType        string
	StatusValue       string
	DateTimeAssigned  sql.NullString
	DateTimeCompleted sql.NullString
	UpdatedAt         int64
}

// keyed on (shipment_id, status_type), a rescrape overwrites the
// previous value instead of appending history
func (q *Queries) UpsertStatusEntry(ctx context.Context, arg UpsertStatusEntryParams) error {
	_, err := q.db.ExecContext(ctx, `
INSERT INTO shipment_statuses (shipment_id, status_type, status_value, date_time_assigned, date_time_completed, updated_at)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT (shipment_id, status_type) DO UPDATE SET
	status_value = excluded.status_value,
	date_time_assigned = excluded.date_time_assigned,
	date_time_completed = excluded.date_time_completed,
	updated_at = excluded.updated_at`,
		arg.ShipmentID,
		arg.StatusType,
		arg.StatusValue,
		arg.DateTimeAssigned,
		arg.DateTimeCompleted,
		arg.UpdatedAt,
	)
	return err
}

func (q *Queries) ListStatusEntries(ctx context.Context, shipmentID int64) ([]StatusEntry, error) {
	rows, err := q.db.QueryContext(ctx, `
SELECT shipment_id, status_type, status_value, date_time_assigned, date_time_completed, updated_at
FROM shipment_statuses
WHERE shipment_id = ?
ORDER BY status_type`, shipmentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []StatusEntry
	for rows.Next() {
		var e StatusEntry
		err := rows.Scan(
			&e.ShipmentID,
			&e.StatusType,
			&e.StatusValue,
			&e.DateTimeAssigned,
			&e.DateTimeCompleted,
			&e.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
