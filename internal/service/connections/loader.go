package connections

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"brain2-conceptmap/internal/domain/conceptmap"
	"brain2-conceptmap/internal/infrastructure/observability"
)

// minConcepts is the smallest group worth asking about.
const minConcepts = 2

// Result is the outcome of one sweep.
type Result struct {
	SweepID      string
	Connections  []conceptmap.Connection
	Queried      int
	FailedGroups []string
	Cancelled    bool
	Duration     time.Duration
}

// Loader runs connection sweeps over groups.
type Loader struct {
	suggester Suggester
	logger    *zap.Logger
	metrics   *observability.Collector
	tracer    trace.Tracer
}

// NewLoader creates a loader. metrics may be nil.
func NewLoader(suggester Suggester, logger *zap.Logger, metrics *observability.Collector) *Loader {
	return &Loader{
		suggester: suggester,
		logger:    logger.Named("connections"),
		metrics:   metrics,
		tracer:    otel.Tracer("brain2-conceptmap/connections"),
	}
}

// Sweep visits groups in order and accumulates their connections. It stops
// early only when ctx is cancelled, in which case Cancelled is set and the
// partial result must not be applied.
func (l *Loader) Sweep(ctx context.Context, groups []conceptmap.Group) Result {
	start := time.Now()
	result := Result{
		SweepID:     uuid.NewString(),
		Connections: []conceptmap.Connection{},
	}

	ctx, span := l.tracer.Start(ctx, "connections.Sweep", trace.WithAttributes(
		attribute.String("sweep.id", result.SweepID),
		attribute.Int("sweep.groups", len(groups)),
	))
	defer span.End()

	logger := l.logger.With(zap.String("sweep_id", result.SweepID))

	for _, g := range groups {
		if ctx.Err() != nil {
			result.Cancelled = true
			break
		}
		if len(g.Concepts) < minConcepts {
			continue
		}

		result.Queried++
		conns, err := l.LoadGroup(ctx, g)
		if err != nil {
			if ctx.Err() != nil {
				result.Cancelled = true
				break
			}
			result.FailedGroups = append(result.FailedGroups, g.NoteID)
			logger.Warn("Connection suggestion failed, skipping group",
				zap.String("note_id", g.NoteID),
				zap.Int("concepts", len(g.Concepts)),
				zap.Error(err),
			)
			continue
		}
		result.Connections = append(result.Connections, conns...)
	}

	result.Duration = time.Since(start)
	span.SetAttributes(
		attribute.Int("sweep.connections", len(result.Connections)),
		attribute.Int("sweep.failed_groups", len(result.FailedGroups)),
		attribute.Bool("sweep.cancelled", result.Cancelled),
	)
	if result.Cancelled {
		span.SetStatus(codes.Error, "cancelled")
		logger.Debug("Sweep cancelled", zap.Duration("duration", result.Duration))
	} else {
		logger.Info("Sweep finished",
			zap.Int("groups_queried", result.Queried),
			zap.Int("groups_failed", len(result.FailedGroups)),
			zap.Int("connections", len(result.Connections)),
			zap.Duration("duration", result.Duration),
		)
	}
	return result
}

// LoadGroup asks the suggester about one group and tags the answers with the
// group's note id.
func (l *Loader) LoadGroup(ctx context.Context, g conceptmap.Group) ([]conceptmap.Connection, error) {
	start := time.Now()
	suggestions, err := l.suggester.Suggest(ctx, g.Concepts)
	l.metrics.RecordSuggest(time.Since(start), err)
	if err != nil {
		return nil, err
	}

	conns := make([]conceptmap.Connection, 0, len(suggestions))
	for _, s := range suggestions {
		conns = append(conns, conceptmap.Connection{
			From:        s.From,
			To:          s.To,
			Explanation: s.Explanation,
			NoteID:      g.NoteID,
		})
	}
	return conns, nil
}
