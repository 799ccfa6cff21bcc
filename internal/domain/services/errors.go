package services

import "errors"

// Precondition errors. Each stage checks that its predecessor actually
// produced output and fails loudly instead of returning an empty table.
var (
	ErrInvalidRecordCount = errors.New("record count must be positive")
	ErrNoEvents           = errors.New("no events to analyze: run generation first")
	ErrNoAnalysis         = errors.New("no analyzed events: run analysis first")
	ErrNoOperatorMetrics  = errors.New("no operator metrics: run aggregation first")
)
