package apple

import (
	"context"
	"time"
)

// Bootstrapper obtains a storefront session cookie
type Bootstrapper interface {
	Bootstrap(ctx context.Context) (*Credential, error)
}

// AvailabilityChecker queries pickup availability for a selection
type AvailabilityChecker interface {
	CheckAvailability(ctx context.Context, cookie string, sel *Selection) ([]ModelAvailability, error)
}

// Notifier pushes check results to the user
type Notifier interface {
	// SendAvailability pushes the available-only report text
	SendAvailability(ctx context.Context, text string) error

	// SendFailure pushes a failed check
	SendFailure(ctx context.Context, err error) error
}

// MetricsRecorder receives check outcomes
type MetricsRecorder interface {
	ObserveCheck(country string, elapsed time.Duration, err error)
	SetAvailableStores(country, model string, stores int)
}

// ProductStatus is the last known pickup state of one model
type ProductStatus struct {
	ProductCode string    `json:"product_code"`
	ProductName string    `json:"product_name"`
	IsAvailable bool      `json:"is_available"`
	Stores      []Store   `json:"stores"`
	CheckTime   time.Time `json:"check_time"`
	ChangedAt   time.Time `json:"changed_at"`
}

// RunStatus summarizes the latest check
type RunStatus struct {
	RunID      string           `json:"run_id"`
	Country    string           `json:"country"`
	Zip        string           `json:"zip"`
	StartedAt  time.Time        `json:"started_at"`
	FinishedAt time.Time        `json:"finished_at"`
	Error      string           `json:"error,omitempty"`
	Products   []*ProductStatus `json:"products"`
}
