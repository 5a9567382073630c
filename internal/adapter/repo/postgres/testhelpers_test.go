package postgres_test

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// stubCall records one statement sent to the stub.
type stubCall struct {
	sql  string
	args []any
}

// execResult is the scripted outcome of one Exec.
type execResult struct {
	tag string
	err error
}

// rowStub implements pgx.Row
type rowStub struct{ scan func(dest ...any) error }

func (r rowStub) Scan(dest ...any) error { return r.scan(dest...) }

func rowOf(vals ...any) rowStub {
	return rowStub{scan: func(dest ...any) error { return assign(dest, vals) }}
}

func rowErr(err error) rowStub {
	return rowStub{scan: func(_ ...any) error { return err }}
}

// rowsStub implements the pgx.Rows methods the repositories call.
type rowsStub struct {
	pgx.Rows
	data [][]any
	i    int
	err  error
}

func rowsOf(data ...[]any) *rowsStub { return &rowsStub{data: data, i: -1} }

func (r *rowsStub) Next() bool {
	r.i++
	return r.i < len(r.data)
}

func (r *rowsStub) Scan(dest ...any) error { return assign(dest, r.data[r.i]) }
func (r *rowsStub) Err() error             { return r.err }
func (r *rowsStub) Close()                 {}

// poolStub implements postgres.PgxPool for tests. Exec, QueryRow and Query
// results are consumed in order; statements issued inside a transaction share
// the same scripts.
type poolStub struct {
	execs    []execResult
	rows     []rowStub
	queries  []*rowsStub
	calls    []stubCall
	beginErr error
	tx       *txStub
}

func (p *poolStub) record(sql string, args []any) {
	p.calls = append(p.calls, stubCall{sql: sql, args: args})
}

func (p *poolStub) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	p.record(sql, args)
	if len(p.execs) == 0 {
		return pgconn.CommandTag{}, errors.New("no exec configured")
	}
	r := p.execs[0]
	p.execs = p.execs[1:]
	return pgconn.NewCommandTag(r.tag), r.err
}

func (p *poolStub) QueryRow(_ context.Context, sql string, args ...any) pgx.Row {
	p.record(sql, args)
	if len(p.rows) == 0 {
		return rowErr(errors.New("no row configured"))
	}
	r := p.rows[0]
	p.rows = p.rows[1:]
	return r
}

func (p *poolStub) Query(_ context.Context, sql string, args ...any) (pgx.Rows, error) {
	p.record(sql, args)
	if len(p.queries) == 0 {
		return nil, errors.New("no query configured")
	}
	r := p.queries[0]
	p.queries = p.queries[1:]
	return r, nil
}

func (p *poolStub) BeginTx(_ context.Context, _ pgx.TxOptions) (pgx.Tx, error) {
	if p.beginErr != nil {
		return nil, p.beginErr
	}
	p.tx = &txStub{pool: p}
	return p.tx, nil
}

// statements returns the recorded SQL, whitespace-collapsed.
func (p *poolStub) statements() []string {
	out := make([]string, len(p.calls))
	for i, c := range p.calls {
		out[i] = strings.Join(strings.Fields(c.sql), " ")
	}
	return out
}

// txStub implements the pgx.Tx methods the repositories call.
type txStub struct {
	pgx.Tx
	pool       *poolStub
	committed  bool
	rolledBack bool
}

func (t *txStub) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	return t.pool.Exec(ctx, sql, args...)
}

func (t *txStub) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return t.pool.QueryRow(ctx, sql, args...)
}

func (t *txStub) Commit(context.Context) error {
	if t.rolledBack {
		return pgx.ErrTxClosed
	}
	t.committed = true
	return nil
}

func (t *txStub) Rollback(context.Context) error {
	if t.committed {
		return pgx.ErrTxClosed
	}
	t.rolledBack = true
	return nil
}

// assign copies vals into the scan destinations, converting where needed.
func assign(dest []any, vals []any) error {
	if len(dest) != len(vals) {
		return fmt.Errorf("scan: %d destinations for %d values", len(dest), len(vals))
	}
	for i, d := range dest {
		dv := reflect.ValueOf(d).Elem()
		if vals[i] == nil {
			dv.Set(reflect.Zero(dv.Type()))
			continue
		}
		v := reflect.ValueOf(vals[i])
		switch {
		case v.Type().AssignableTo(dv.Type()):
			dv.Set(v)
		case v.Type().ConvertibleTo(dv.Type()):
			dv.Set(v.Convert(dv.Type()))
		default:
			return fmt.Errorf("scan: column %d: cannot assign %s to %s", i, v.Type(), dv.Type())
		}
	}
	return nil
}
