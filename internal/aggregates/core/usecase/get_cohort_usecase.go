package usecase

import (
	"context"
	"errors"
	"time"

	"dashboard-aggregates-service/internal/aggregates/core/cohort"
	"dashboard-aggregates-service/internal/aggregates/core/domain"
	"dashboard-aggregates-service/internal/aggregates/core/ports"
)

const kindCohort = "cohort"

var ErrNilReader = errors.New("nil session event reader")

type GetCohortInput struct {
	From      time.Time
	To        time.Time
	MaxOffset int
}

type GetCohortUseCase struct {
	reader ports.SessionEventReaderPort
	cache  SnapshotCache[*domain.CohortMatrix]
	deps   Dependencies
}

func NewGetCohortUseCase(
	reader ports.SessionEventReaderPort,
	cache SnapshotCache[*domain.CohortMatrix],
	deps Dependencies,
) (*GetCohortUseCase, error) {
	if err := deps.init(); err != nil {
		return nil, err
	}
	if reader == nil {
		return nil, ErrNilReader
	}
	return &GetCohortUseCase{reader: reader, cache: cache, deps: deps}, nil
}

// Execute validates the window and returns its published matrix, computing
// it once per refresh interval. An empty window yields an empty matrix.
func (uc *GetCohortUseCase) Execute(ctx context.Context, in GetCohortInput) (*domain.CohortMatrix, error) {
	w := domain.NewWindow(in.From, in.To, in.MaxOffset)
	if err := w.Validate(); err != nil {
		return nil, err
	}

	m, err := uc.cache.GetOrCompute(ctx, w.Key(), func(ctx context.Context) (*domain.CohortMatrix, error) {
		return uc.compute(ctx, w)
	})
	if err != nil {
		return nil, uc.deps.upstream(kindCohort, err)
	}
	return m, nil
}

func (uc *GetCohortUseCase) compute(ctx context.Context, w domain.Window) (*domain.CohortMatrix, error) {
	events, err := uc.reader.ListSessionEvents(ctx, ports.CohortFilter(w))
	if err != nil {
		return nil, err
	}

	injector, err := uc.deps.newInjector()
	if err != nil {
		return nil, err
	}

	m := cohort.Build(events, w, injector)
	uc.deps.record(kindCohort, injector.Draws(), m.Malformed)
	return m, nil
}
