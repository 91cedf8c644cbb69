package infra

import (
	"context"
	"errors"

	"limites-harness/harness/domain"
)

// TeeSink repassa cada amostra para todos os sinks e junta os erros.
type TeeSink []domain.SampleSink

func (t TeeSink) Record(ctx context.Context, s domain.Sample) error {
	var errs []error
	for _, sink := range t {
		if sink == nil {
			continue
		}
		if err := sink.Record(ctx, s); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
