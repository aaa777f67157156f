package repository

import (
	"context"
	"time"

	"github.com/filaops/scheduler/backend/internal/domain"
)

func (r *Repository) GetAllMachines() ([]*domain.Machine, error) {
	query := `
		SELECT id, name, status, created_at, version
		FROM machines ORDER BY name
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	machines := make([]*domain.Machine, 0)
	for rows.Next() {
		machine := &domain.Machine{}
		dst := []any{&machine.ID, &machine.Name, &machine.Status, &machine.CreatedAt, &machine.Version}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		machines = append(machines, machine)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return machines, nil
}

func (r *Repository) GetMachineByID(id int64) (*domain.Machine, error) {
	query := `
		SELECT name, status, created_at, version
		FROM machines WHERE id = $1
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	machine := &domain.Machine{
		ID: id,
	}

	dst := []any{&machine.Name, &machine.Status, &machine.CreatedAt, &machine.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, id).Scan(dst...); err != nil {
		return nil, err
	}

	return machine, nil
}

func (r *Repository) CreateMachine(machine *domain.Machine) error {
	query := `
		INSERT INTO machines (name, status)
		VALUES ($1, $2)
		RETURNING id, created_at, version
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	if err := r.dbpool.QueryRowContext(ctx, query, machine.Name, machine.Status).Scan(&machine.ID, &machine.CreatedAt, &machine.Version); err != nil {
		return err
	}

	return nil
}

func (r *Repository) UpdateMachine(machine *domain.Machine) error {
	query := `
		UPDATE machines
		SET
			name = $1,
			status = $2,
			version = version + 1
		WHERE id = $3 AND version = $4
		RETURNING version
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	args := []any{machine.Name, machine.Status, machine.ID, machine.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&machine.Version); err != nil {
		return err
	}

	return nil
}

func (r *Repository) DeleteMachine(id int64) error {
	query := `
		DELETE FROM machines WHERE id = $1
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	if _, err := r.dbpool.ExecContext(ctx, query, id); err != nil {
		return err
	}

	return nil
}
