package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/parking-service/internal/domain"
)

type reservationRepository struct {
	db DBTX
}

// NewReservationRepository instantiates repository.
func NewReservationRepository(db DBTX) ReservationRepository {
	return &reservationRepository{db: db}
}

const reservationSelect = `
        SELECT r.id, r.spot_id, r.user_id, r.vehicle_number, r.parking_cost,
               r.parking_timestamp, r.leaving_timestamp, s.lot_id, s.number
        FROM reservations r
        JOIN parking_spots s ON s.id = r.spot_id`

func (r *reservationRepository) Create(ctx context.Context, res *domain.Reservation) error {
	const query = `
        INSERT INTO reservations (spot_id, user_id, vehicle_number, parking_cost, parking_timestamp)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id`
	err := r.db.QueryRow(ctx, query,
		res.SpotID,
		res.UserID,
		res.VehicleNumber,
		res.ParkingCost,
		res.ParkedAt,
	).Scan(&res.ID)
	return mapError(err)
}

func (r *reservationRepository) GetByID(ctx context.Context, id string, lock LockMode) (*domain.Reservation, error) {
	query := reservationSelect + ` WHERE r.id=$1`
	switch lock {
	case LockShare:
		query += ` FOR SHARE OF r`
	case LockUpdate:
		query += ` FOR UPDATE OF r`
	}
	res, err := scanReservation(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, mapError(err)
	}
	return res, nil
}

func (r *reservationRepository) Close(ctx context.Context, id string, leftAt time.Time) error {
	const query = `UPDATE reservations SET leaving_timestamp=$2 WHERE id=$1 AND leaving_timestamp IS NULL`
	cmd, err := r.db.Exec(ctx, query, id, leftAt)
	if err != nil {
		return mapError(err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrStaleState
	}
	return nil
}

func (r *reservationRepository) ListByUser(ctx context.Context, userID string) ([]domain.Reservation, error) {
	return r.list(ctx, reservationSelect+` WHERE r.user_id=$1 ORDER BY r.parking_timestamp DESC, r.id`, userID)
}

func (r *reservationRepository) ListActiveByLot(ctx context.Context, lotID string) ([]domain.Reservation, error) {
	return r.list(ctx, reservationSelect+` WHERE s.lot_id=$1 AND r.leaving_timestamp IS NULL ORDER BY s.number`, lotID)
}

func (r *reservationRepository) list(ctx context.Context, query string, args ...any) ([]domain.Reservation, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var result []domain.Reservation
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, mapError(err)
		}
		result = append(result, *res)
	}
	return result, mapError(rows.Err())
}

func scanReservation(row pgx.Row) (*domain.Reservation, error) {
	var res domain.Reservation
	if err := row.Scan(
		&res.ID,
		&res.SpotID,
		&res.UserID,
		&res.VehicleNumber,
		&res.ParkingCost,
		&res.ParkedAt,
		&res.LeftAt,
		&res.LotID,
		&res.SpotNumber,
	); err != nil {
		return nil, err
	}
	return &res, nil
}
