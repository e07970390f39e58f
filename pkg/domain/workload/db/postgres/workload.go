package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgtype"
	"github.com/jackc/pgx/v4"
	kpool "github.com/keti-strato/pms/pkg/conn/db/postgres/pool"
	"github.com/keti-strato/pms/pkg/domain"
	kdb "github.com/keti-strato/pms/pkg/domain/workload/db"
	xe "github.com/keti-strato/pms/pkg/errors"
)

// key of advisory lock serializing id reservations.
const reservationLockKey int64 = 0x706d735f726573 // "pms_res"

type pgWorkload struct {
	pool kpool.Pool
}

func New(pool kpool.Pool) kdb.WorkloadInterface {
	return &pgWorkload{pool: pool}
}

const columns = `"workload_id", "id", "name", "namespace", "description", "step_codes", "status", "user_id", "cluster_idx"`

func scanRecords(rows pgx.Rows) ([]domain.WorkloadRecord, error) {
	defer rows.Close()

	records := []domain.WorkloadRecord{}
	for rows.Next() {
		r := domain.WorkloadRecord{}
		codes := pgtype.JSONB{}
		if err := rows.Scan(
			&r.WorkloadId, &r.Id, &r.Name, &r.Namespace, &r.Description,
			&codes, &r.Status, &r.UserId, &r.ClusterIdx,
		); err != nil {
			return nil, err
		}
		if err := codes.AssignTo(&r.StepCodes); err != nil {
			return nil, err
		}
		if r.StepCodes == nil {
			r.StepCodes = []string{}
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

func ids(ctx context.Context, q kpool.Queryer) ([]string, error) {
	rows, err := q.Query(ctx, `select "workload_id" from "workload" order by "workload_id"`)
	if err != nil {
		return nil, storeError("list ids", err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, storeError("list ids", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, storeError("list ids", err)
	}
	return ids, nil
}

func upsert(ctx context.Context, q kpool.Queryer, r domain.WorkloadRecord) error {
	codes := pgtype.JSONB{}
	stepCodes := r.StepCodes
	if stepCodes == nil {
		stepCodes = []string{}
	}
	if err := codes.Set(stepCodes); err != nil {
		return xe.Wrap(err)
	}

	_, err := q.Exec(
		ctx,
		`
		insert into "workload" (`+columns+`)
		values ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		on conflict ("workload_id") do update set
			"id" = excluded."id",
			"name" = excluded."name",
			"namespace" = excluded."namespace",
			"description" = excluded."description",
			"step_codes" = excluded."step_codes",
			"status" = excluded."status",
			"user_id" = excluded."user_id",
			"cluster_idx" = excluded."cluster_idx",
			"updated_at" = now()
		`,
		r.WorkloadId, r.Id, r.Name, r.Namespace, r.Description,
		codes, r.Status, r.UserId, r.ClusterIdx,
	)
	return storeError("upsert "+r.WorkloadId, err)
}

func (p *pgWorkload) Ids(ctx context.Context) ([]string, error) {
	return ids(ctx, p.pool)
}

func (p *pgWorkload) Get(ctx context.Context, workloadId string) (domain.WorkloadRecord, error) {
	rows, err := p.pool.Query(
		ctx,
		`select `+columns+` from "workload" where "workload_id" = $1`,
		workloadId,
	)
	if err != nil {
		return domain.WorkloadRecord{}, storeError("get "+workloadId, err)
	}
	records, err := scanRecords(rows)
	if err != nil {
		return domain.WorkloadRecord{}, storeError("get "+workloadId, err)
	}
	if len(records) == 0 {
		return domain.WorkloadRecord{}, xe.Wrap(kdb.Missing{Table: "workload", Identity: workloadId})
	}
	return records[0], nil
}

func (p *pgWorkload) FindByName(ctx context.Context, name string) ([]domain.WorkloadRecord, error) {
	rows, err := p.pool.Query(
		ctx,
		`select `+columns+` from "workload" where "name" = $1 order by "workload_id"`,
		name,
	)
	if err != nil {
		return nil, storeError("find by name", err)
	}
	records, err := scanRecords(rows)
	if err != nil {
		return nil, storeError("find by name", err)
	}
	return records, nil
}

func (p *pgWorkload) List(ctx context.Context) ([]domain.WorkloadRecord, error) {
	rows, err := p.pool.Query(ctx, `select `+columns+` from "workload" order by "workload_id"`)
	if err != nil {
		return nil, storeError("list", err)
	}
	records, err := scanRecords(rows)
	if err != nil {
		return nil, storeError("list", err)
	}
	return records, nil
}

func (p *pgWorkload) Upsert(ctx context.Context, r domain.WorkloadRecord) error {
	return upsert(ctx, p.pool, r)
}

func (p *pgWorkload) Delete(ctx context.Context, workloadId string) (bool, error) {
	tag, err := p.pool.Exec(ctx, `delete from "workload" where "workload_id" = $1`, workloadId)
	if err != nil {
		return false, storeError("delete "+workloadId, err)
	}
	return tag.RowsAffected() != 0, nil
}

func (p *pgWorkload) DeleteByName(ctx context.Context, name string) ([]string, error) {
	rows, err := p.pool.Query(
		ctx,
		`delete from "workload" where "name" = $1 returning "workload_id"`,
		name,
	)
	if err != nil {
		return nil, storeError("delete by name", err)
	}
	defer rows.Close()

	deleted := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, storeError("delete by name", err)
		}
		deleted = append(deleted, id)
	}
	if err := rows.Err(); err != nil {
		return nil, storeError("delete by name", err)
	}
	return deleted, nil
}

func (p *pgWorkload) Sync(ctx context.Context, f func(kdb.Batch) error) error {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return storeError("begin sync", err)
	}
	defer tx.Rollback(ctx)

	if err := f(&pgBatch{tx: tx}); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return storeError("commit sync", err)
	}
	return nil
}

func (p *pgWorkload) Reserve(
	ctx context.Context, prefix string, ttl time.Duration, pick func([]string) (string, error),
) (string, error) {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return "", storeError("begin reservation", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `select pg_advisory_xact_lock($1)`, reservationLockKey); err != nil {
		return "", storeError("lock reservation", err)
	}
	if _, err := tx.Exec(ctx, `delete from "workload_reservation" where "expires_at" <= now()`); err != nil {
		return "", storeError("expire reservations", err)
	}

	rows, err := tx.Query(
		ctx,
		`
		select "workload_id" from "workload" where left("workload_id", length($1)) = $1
		union
		select "workload_id" from "workload_reservation" where left("workload_id", length($1)) = $1
		order by "workload_id"
		`,
		prefix,
	)
	if err != nil {
		return "", storeError("read taken ids", err)
	}
	taken := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return "", storeError("read taken ids", err)
		}
		taken = append(taken, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return "", storeError("read taken ids", err)
	}

	id, err := pick(taken)
	if err != nil {
		return "", err
	}

	if _, err := tx.Exec(
		ctx,
		`
		insert into "workload_reservation" ("workload_id", "expires_at")
		values ($1, now() + make_interval(secs => $2))
		on conflict ("workload_id") do update set "expires_at" = excluded."expires_at"
		`,
		id, ttl.Seconds(),
	); err != nil {
		return "", storeError("reserve "+id, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return "", storeError("commit reservation", err)
	}
	return id, nil
}

func (p *pgWorkload) Release(ctx context.Context, id string) error {
	_, err := p.pool.Exec(ctx, `delete from "workload_reservation" where "workload_id" = $1`, id)
	return storeError("release "+id, err)
}

type pgBatch struct {
	tx kpool.Tx
}

func (b *pgBatch) Ids(ctx context.Context) ([]string, error) {
	return ids(ctx, b.tx)
}

func (b *pgBatch) Upsert(ctx context.Context, r domain.WorkloadRecord) error {
	return upsert(ctx, b.tx, r)
}

func (b *pgBatch) Delete(ctx context.Context, workloadIds ...string) (int, error) {
	if len(workloadIds) == 0 {
		return 0, nil
	}
	tag, err := b.tx.Exec(
		ctx,
		`delete from "workload" where "workload_id" = any($1::varchar[])`,
		workloadIds,
	)
	if err != nil {
		return 0, storeError("delete", err)
	}
	return int(tag.RowsAffected()), nil
}

func (b *pgBatch) Try(ctx context.Context, f func(kdb.Batch) error) error {
	sp, err := b.tx.Begin(ctx)
	if err != nil {
		return storeError("savepoint", err)
	}
	if err := f(&pgBatch{tx: sp}); err != nil {
		if rerr := sp.Rollback(ctx); rerr != nil {
			return errors.Join(err, storeError("rollback to savepoint", rerr))
		}
		return err
	}
	if err := sp.Commit(ctx); err != nil {
		return storeError("release savepoint", err)
	}
	return nil
}
