// Package worker validates table rows in parallel.
//
// A RowValidator turns the cells of one row into a validated
// model.Instance. Rows can be streamed through a long lived Pool, or
// validated in one call with a Batch, which keeps the results in row
// order:
//
//	b := worker.NewBatch(v, 4, worker.StopOnError(true))
//	res := b.Run(ctx, table.Rows)
//	for _, r := range res.Results {
//	    if r.Err != nil {
//	        // strict validation failed on r.Row
//	    }
//	}
package worker
