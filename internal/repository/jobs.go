package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/filaops/scheduler/backend/internal/domain"
)

const jobColumns = `
	j.id,
	j.name,
	j.order_ref,
	j.status,
	j.quantity,
	j.estimated_hours_per_unit,
	j.machine_id,
	j.scheduled_start,
	j.scheduled_end,
	j.created_at,
	j.version
`

func scanJobRows(rows *sql.Rows) ([]*domain.Job, error) {
	jobsMap := make(map[int64]*domain.Job)
	order := make([]int64, 0)

	for rows.Next() {
		var row struct {
			ID                    int64
			Name                  string
			OrderRef              string
			Status                domain.JobStatus
			Quantity              int32
			EstimatedHoursPerUnit sql.NullFloat64
			MachineID             sql.NullInt64
			ScheduledStart        sql.NullTime
			ScheduledEnd          sql.NullTime
			CreatedAt             time.Time
			Version               int32

			OpSequence     sql.NullInt32
			OpName         sql.NullString
			OpSetupMinutes sql.NullInt32
			OpRunMinutes   sql.NullInt32
		}

		dst := []any{
			&row.ID,
			&row.Name,
			&row.OrderRef,
			&row.Status,
			&row.Quantity,
			&row.EstimatedHoursPerUnit,
			&row.MachineID,
			&row.ScheduledStart,
			&row.ScheduledEnd,
			&row.CreatedAt,
			&row.Version,
			&row.OpSequence,
			&row.OpName,
			&row.OpSetupMinutes,
			&row.OpRunMinutes,
		}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}

		job, exists := jobsMap[row.ID]
		if !exists {
			job = &domain.Job{
				ID:         row.ID,
				Name:       row.Name,
				OrderRef:   row.OrderRef,
				Status:     row.Status,
				Quantity:   row.Quantity,
				Operations: []domain.JobOperation{},
				CreatedAt:  row.CreatedAt,
				Version:    row.Version,
			}
			if row.EstimatedHoursPerUnit.Valid {
				job.EstimatedHoursPerUnit = &row.EstimatedHoursPerUnit.Float64
			}
			if row.MachineID.Valid {
				job.MachineID = &row.MachineID.Int64
			}
			if row.ScheduledStart.Valid {
				job.ScheduledStart = &row.ScheduledStart.Time
			}
			if row.ScheduledEnd.Valid {
				job.ScheduledEnd = &row.ScheduledEnd.Time
			}
			jobsMap[row.ID] = job
			order = append(order, row.ID)
		}

		if row.OpSequence.Valid {
			job.Operations = append(job.Operations, domain.JobOperation{
				Sequence:     row.OpSequence.Int32,
				Name:         row.OpName.String,
				SetupMinutes: row.OpSetupMinutes.Int32,
				RunMinutes:   row.OpRunMinutes.Int32,
			})
		}
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	jobs := make([]*domain.Job, 0, len(order))
	for _, id := range order {
		jobs = append(jobs, jobsMap[id])
	}
	return jobs, nil
}

func (r *Repository) GetAllJobs(schedulableOnly bool) ([]*domain.Job, error) {
	query := `
		SELECT ` + jobColumns + `,
			op.sequence, op.name, op.setup_minutes, op.run_minutes
		FROM jobs j
		LEFT JOIN job_operations op ON j.id = op.job_id
	`
	if schedulableOnly {
		query += ` WHERE j.status IN ('pending', 'scheduled', 'in_progress')`
	}
	query += ` ORDER BY j.id, op.sequence`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanJobRows(rows)
}

func (r *Repository) GetJobByID(id int64) (*domain.Job, error) {
	query := `
		SELECT ` + jobColumns + `,
			op.sequence, op.name, op.setup_minutes, op.run_minutes
		FROM jobs j
		LEFT JOIN job_operations op ON j.id = op.job_id
		WHERE j.id = $1
		ORDER BY op.sequence
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	jobs, err := scanJobRows(rows)
	if err != nil {
		return nil, err
	}
	if len(jobs) == 0 {
		return nil, sql.ErrNoRows
	}
	return jobs[0], nil
}

func (r *Repository) CreateJob(job *domain.Job) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `
		INSERT INTO jobs (name, order_ref, status, quantity, estimated_hours_per_unit)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, version
	`

	args := []any{job.Name, job.OrderRef, job.Status, job.Quantity, job.EstimatedHoursPerUnit}
	if err := tx.QueryRowContext(ctx, query, args...).Scan(&job.ID, &job.CreatedAt, &job.Version); err != nil {
		return err
	}

	opQuery := `
		INSERT INTO job_operations (job_id, sequence, name, setup_minutes, run_minutes)
		VALUES ($1, $2, $3, $4, $5)
	`
	for _, op := range job.Operations {
		if _, err := tx.ExecContext(ctx, opQuery, job.ID, op.Sequence, op.Name, op.SetupMinutes, op.RunMinutes); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (r *Repository) UpdateJobStatus(job *domain.Job) error {
	query := `
		UPDATE jobs
		SET
			status = $1,
			version = version + 1
		WHERE id = $2 AND version = $3
		RETURNING version
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	if err := r.dbpool.QueryRowContext(ctx, query, job.Status, job.ID, job.Version).Scan(&job.Version); err != nil {
		return err
	}

	return nil
}

// ListScheduledByMachine returns the machine's scheduled, still-schedulable
// jobs ordered ascending by scheduled start. The arrangement engine depends
// on that ordering.
func (r *Repository) ListScheduledByMachine(ctx context.Context, machineID int64) ([]*domain.Job, error) {
	query := `
		SELECT ` + jobColumns + `,
			op.sequence, op.name, op.setup_minutes, op.run_minutes
		FROM jobs j
		LEFT JOIN job_operations op ON j.id = op.job_id
		WHERE j.machine_id = $1
			AND j.scheduled_start IS NOT NULL
			AND j.status IN ('pending', 'scheduled', 'in_progress')
		ORDER BY j.scheduled_start, j.id, op.sequence
	`

	ctx, cancel := context.WithTimeout(ctx, time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query, machineID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanJobRows(rows)
}

// Reschedule persists a resolved placement for one job. The optimistic
// version check means a concurrent edit fails this one move instead of
// silently overwriting it; the arrangement passes treat that like any other
// per-job persistence failure.
func (r *Repository) Reschedule(ctx context.Context, job *domain.Job, machineID int64, start, end time.Time) error {
	query := `
		UPDATE jobs
		SET
			machine_id = $1,
			scheduled_start = $2,
			scheduled_end = $3,
			status = CASE WHEN status = 'pending' THEN 'scheduled' ELSE status END,
			version = version + 1
		WHERE id = $4 AND version = $5
		RETURNING status, version
	`

	ctx, cancel := context.WithTimeout(ctx, time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	args := []any{machineID, start, end, job.ID, job.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&job.Status, &job.Version); err != nil {
		return err
	}

	job.MachineID = &machineID
	job.ScheduledStart = &start
	job.ScheduledEnd = &end

	return nil
}
