package app

import "fmt"

// Stage names the query of a fetch cycle that failed.
type Stage string

const (
	StageRows        Stage = "rows"
	StageTotalCount  Stage = "total count"
	StageRecentCount Stage = "recent count"
)

// ErrConnection represents a database connection error.
type ErrConnection struct {
	Cause error
}

func (e *ErrConnection) Error() string {
	return fmt.Sprintf("connection error: %v", e.Cause)
}

func (e *ErrConnection) Unwrap() error {
	return e.Cause
}

// ErrQuery represents a failed query of the fetch cycle.
type ErrQuery struct {
	Stage Stage
	Cause error
}

func (e *ErrQuery) Error() string {
	return fmt.Sprintf("%s query failed: %v", e.Stage, e.Cause)
}

func (e *ErrQuery) Unwrap() error {
	return e.Cause
}

// ErrConfig represents a configuration error.
type ErrConfig struct {
	Cause error
}

func (e *ErrConfig) Error() string {
	return fmt.Sprintf("config error: %v", e.Cause)
}

func (e *ErrConfig) Unwrap() error {
	return e.Cause
}
