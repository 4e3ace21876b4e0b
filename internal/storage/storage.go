package storage

import (
	"context"
	"errors"

	"stableDeploy/internal/model"
)

// Sink receives deployment records once their transaction is confirmed.
type Sink interface {
	PutRecords(ctx context.Context, records []model.DeploymentRecord) error
}

// Multi fans records out to every sink and joins their errors.
type Multi []Sink

func (m Multi) PutRecords(ctx context.Context, records []model.DeploymentRecord) error {
	var errs []error
	for _, sink := range m {
		if sink == nil {
			continue
		}
		if err := sink.PutRecords(ctx, records); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
