// Copyright 2023 Gustavo C. Viegas. All rights reserved.

package engine

import (
	"github.com/pkg/errors"

	"github.com/gviegas/hybrid/driver"
)

// QueryPool is a pool of acceleration structure
// compacted-size queries.
type QueryPool struct {
	qp driver.QueryPool
	n  int
}

// NewQueryPool creates a pool of count queries.
func NewQueryPool(ctx *Context, count int) (*QueryPool, error) {
	qp, err := ctx.gpu.NewQueryPool(driver.QCompactedSize, count)
	if err != nil {
		return nil, errors.Wrapf(err, "create query pool (%d queries)", count)
	}
	return &QueryPool{qp: qp, n: count}, nil
}

// Reset records a reset of every query.
// Queries must be reset before they are written.
func (q *QueryPool) Reset(cb driver.CmdBuffer) { cb.ResetQueries(q.qp, 0, q.n) }

// WriteCompactedSizes records writes of the compacted size
// of each structure in as, starting at query first.
func (q *QueryPool) WriteCompactedSizes(cb driver.CmdBuffer, as []driver.AccelStruct, first int) {
	cb.WriteCompactedSize(as, q.qp, first)
}

// Results returns the result of every query, in query
// order. The commands that write them must have completed.
func (q *QueryPool) Results() ([]uint64, error) {
	res := make([]uint64, q.n)
	if err := q.qp.Results(0, q.n, res); err != nil {
		return nil, errors.Wrap(err, "read query results")
	}
	return res, nil
}

// Count returns the number of queries.
func (q *QueryPool) Count() int { return q.n }

// Destroy destroys the query pool.
func (q *QueryPool) Destroy() {
	if q.qp != nil {
		q.qp.Destroy()
	}
	*q = QueryPool{}
}
