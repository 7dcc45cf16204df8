package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/parking-service/internal/domain"
)

type parkingLotRepository struct {
	db DBTX
}

// NewParkingLotRepository instantiates repository.
func NewParkingLotRepository(db DBTX) ParkingLotRepository {
	return &parkingLotRepository{db: db}
}

const lotColumns = `id, name, price, address, pin_code, maximum_number_of_spots, created_at, updated_at`

func (r *parkingLotRepository) Create(ctx context.Context, lot *domain.ParkingLot) error {
	const query = `
        INSERT INTO parking_lots (name, price, address, pin_code, maximum_number_of_spots)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, created_at, updated_at`
	err := r.db.QueryRow(ctx, query,
		lot.Name,
		lot.Price,
		lot.Address,
		lot.PinCode,
		lot.Capacity,
	).Scan(&lot.ID, &lot.CreatedAt, &lot.UpdatedAt)
	return mapError(err)
}

func (r *parkingLotRepository) Update(ctx context.Context, lot *domain.ParkingLot) error {
	const query = `
        UPDATE parking_lots SET name=$1, price=$2, address=$3, pin_code=$4, maximum_number_of_spots=$5, updated_at=NOW()
        WHERE id=$6
        RETURNING updated_at`
	err := r.db.QueryRow(ctx, query,
		lot.Name,
		lot.Price,
		lot.Address,
		lot.PinCode,
		lot.Capacity,
		lot.ID,
	).Scan(&lot.UpdatedAt)
	return mapError(err)
}

func (r *parkingLotRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.db.Exec(ctx, `DELETE FROM parking_lots WHERE id=$1`, id)
	if err != nil {
		return mapError(err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *parkingLotRepository) GetByID(ctx context.Context, id string, lock LockMode) (*domain.ParkingLot, error) {
	query := `SELECT ` + lotColumns + ` FROM parking_lots WHERE id=$1` + lockClause(lock)
	lot, err := scanLot(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, mapError(err)
	}
	return lot, nil
}

func (r *parkingLotRepository) List(ctx context.Context) ([]domain.ParkingLot, error) {
	rows, err := r.db.Query(ctx, `SELECT `+lotColumns+` FROM parking_lots ORDER BY created_at, name`)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var lots []domain.ParkingLot
	for rows.Next() {
		lot, err := scanLot(rows)
		if err != nil {
			return nil, mapError(err)
		}
		lots = append(lots, *lot)
	}
	return lots, mapError(rows.Err())
}

func scanLot(row pgx.Row) (*domain.ParkingLot, error) {
	var lot domain.ParkingLot
	if err := row.Scan(
		&lot.ID,
		&lot.Name,
		&lot.Price,
		&lot.Address,
		&lot.PinCode,
		&lot.Capacity,
		&lot.CreatedAt,
		&lot.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &lot, nil
}
