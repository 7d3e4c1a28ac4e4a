package commonModels

import "errors"

// Failure classes shared by the pipelines, used to pick a job error code.
var (
	ErrUpstream = errors.New("upstream provider error")
	ErrStorage  = errors.New("vector storage error")
)
