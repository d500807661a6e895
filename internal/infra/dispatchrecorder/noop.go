package dispatchrecorder

import (
	"context"

	"github.com/petfolio/reminder-dispatch/internal/domain"
)

type noopRecorder struct{}

func NewNoopRecorder() domain.DispatchRecorder {
	return &noopRecorder{}
}

func (n *noopRecorder) RecordTickResult(_ context.Context, _ domain.DispatchTickRecord) error {
	return nil
}

func (n *noopRecorder) Close() error {
	return nil
}
