package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/parking-service/internal/domain"
)

type parkingSpotRepository struct {
	db DBTX
}

// NewParkingSpotRepository instantiates repository.
func NewParkingSpotRepository(db DBTX) ParkingSpotRepository {
	return &parkingSpotRepository{db: db}
}

const spotColumns = `id, lot_id, number, status`

func (r *parkingSpotRepository) CreateRange(ctx context.Context, lotID string, from, to int) (int, error) {
	if to < from {
		return 0, nil
	}
	const query = `
        INSERT INTO parking_spots (lot_id, number, status)
        SELECT $1, n, $4 FROM generate_series($2::int, $3::int) AS n`
	cmd, err := r.db.Exec(ctx, query, lotID, from, to, domain.SpotAvailable)
	if err != nil {
		return 0, mapError(err)
	}
	return int(cmd.RowsAffected()), nil
}

func (r *parkingSpotRepository) GetByID(ctx context.Context, id string) (*domain.ParkingSpot, error) {
	spot, err := scanSpot(r.db.QueryRow(ctx, `SELECT `+spotColumns+` FROM parking_spots WHERE id=$1`, id))
	if err != nil {
		return nil, mapError(err)
	}
	return spot, nil
}

func (r *parkingSpotRepository) ListByLot(ctx context.Context, lotID string) ([]domain.ParkingSpot, error) {
	return r.list(ctx, `SELECT `+spotColumns+` FROM parking_spots WHERE lot_id=$1 ORDER BY number`, lotID)
}

func (r *parkingSpotRepository) FirstAvailable(ctx context.Context, lotID string) (*domain.ParkingSpot, error) {
	const query = `
        SELECT ` + spotColumns + ` FROM parking_spots
        WHERE lot_id=$1 AND status=$2
        ORDER BY number ASC
        LIMIT 1
        FOR UPDATE SKIP LOCKED`
	spot, err := scanSpot(r.db.QueryRow(ctx, query, lotID, domain.SpotAvailable))
	if err != nil {
		return nil, mapError(err)
	}
	return spot, nil
}

func (r *parkingSpotRepository) AvailableForRemoval(ctx context.Context, lotID string, limit int) ([]domain.ParkingSpot, error) {
	const query = `
        SELECT ` + spotColumns + ` FROM parking_spots
        WHERE lot_id=$1 AND status=$2
        ORDER BY number DESC
        LIMIT $3
        FOR UPDATE`
	return r.list(ctx, query, lotID, domain.SpotAvailable, limit)
}

func (r *parkingSpotRepository) SetStatus(ctx context.Context, id string, from, to domain.SpotStatus) error {
	cmd, err := r.db.Exec(ctx, `UPDATE parking_spots SET status=$3 WHERE id=$1 AND status=$2`, id, from, to)
	if err != nil {
		return mapError(err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrStaleState
	}
	return nil
}

func (r *parkingSpotRepository) DeleteByIDs(ctx context.Context, ids []string) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	cmd, err := r.db.Exec(ctx, `DELETE FROM parking_spots WHERE id = ANY($1::uuid[])`, ids)
	if err != nil {
		return 0, mapError(err)
	}
	return int(cmd.RowsAffected()), nil
}

func (r *parkingSpotRepository) MaxNumber(ctx context.Context, lotID string) (int, error) {
	var highest int
	err := r.db.QueryRow(ctx, `SELECT COALESCE(MAX(number), 0) FROM parking_spots WHERE lot_id=$1`, lotID).Scan(&highest)
	return highest, mapError(err)
}

func (r *parkingSpotRepository) Occupancy(ctx context.Context, lotID string) (domain.Occupancy, error) {
	const query = `
        SELECT COUNT(*), COUNT(*) FILTER (WHERE status=$2)
        FROM parking_spots WHERE lot_id=$1`
	var occ domain.Occupancy
	err := r.db.QueryRow(ctx, query, lotID, domain.SpotOccupied).Scan(&occ.Total, &occ.Occupied)
	return occ, mapError(err)
}

func (r *parkingSpotRepository) OccupancyByLot(ctx context.Context) (map[string]domain.Occupancy, error) {
	const query = `
        SELECT lot_id, COUNT(*), COUNT(*) FILTER (WHERE status=$1)
        FROM parking_spots GROUP BY lot_id`
	rows, err := r.db.Query(ctx, query, domain.SpotOccupied)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	result := make(map[string]domain.Occupancy)
	for rows.Next() {
		var lotID string
		var occ domain.Occupancy
		if err := rows.Scan(&lotID, &occ.Total, &occ.Occupied); err != nil {
			return nil, mapError(err)
		}
		result[lotID] = occ
	}
	return result, mapError(rows.Err())
}

func (r *parkingSpotRepository) list(ctx context.Context, query string, args ...any) ([]domain.ParkingSpot, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var spots []domain.ParkingSpot
	for rows.Next() {
		spot, err := scanSpot(rows)
		if err != nil {
			return nil, mapError(err)
		}
		spots = append(spots, *spot)
	}
	return spots, mapError(rows.Err())
}

func scanSpot(row pgx.Row) (*domain.ParkingSpot, error) {
	var spot domain.ParkingSpot
	if err := row.Scan(&spot.ID, &spot.LotID, &spot.Number, &spot.Status); err != nil {
		return nil, err
	}
	return &spot, nil
}
