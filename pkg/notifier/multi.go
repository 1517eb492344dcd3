package notifier

import (
	"context"
	"errors"
)

// Sender delivers availability reports and failed checks
type Sender interface {
	SendAvailability(ctx context.Context, report string) error
	SendFailure(ctx context.Context, err error) error
}

// AvailabilityOnly wraps s so failed checks are not pushed through it
func AvailabilityOnly(s Sender) Sender {
	return availabilityOnly{s}
}

type availabilityOnly struct {
	Sender
}

func (availabilityOnly) SendFailure(ctx context.Context, err error) error {
	return nil
}

// Multi fans a notification out to every sender
type Multi []Sender

// SendAvailability sends to all senders and joins their errors
func (m Multi) SendAvailability(ctx context.Context, report string) error {
	var errs []error
	for _, s := range m {
		if err := s.SendAvailability(ctx, report); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// SendFailure sends to all senders and joins their errors
func (m Multi) SendFailure(ctx context.Context, err error) error {
	var errs []error
	for _, s := range m {
		if sendErr := s.SendFailure(ctx, err); sendErr != nil {
			errs = append(errs, sendErr)
		}
	}
	return errors.Join(errs...)
}
