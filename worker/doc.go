// Package worker provides a worker pool for parallel batch validation.
//
// Validating a batch of HL7 v2 messages is embarrassingly parallel: each
// message gets its own parse tree and report, and the schema model and
// reference tables are shared read-only.
//
// Example usage:
//
//	pool := worker.NewPool(validator, 4)
//
//	for _, msg := range messages {
//	    pool.Submit(worker.NewJob(msg))
//	}
//
//	batch := pool.CloseAndWait()
//	for _, result := range batch.Results {
//	    if result.Err != nil {
//	        // message could not be validated at all
//	    }
//	    // inspect result.Report
//	}
package worker
