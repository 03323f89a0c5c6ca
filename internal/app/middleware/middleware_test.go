package middleware_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"homestay/internal/app/commands"
	"homestay/internal/app/middleware"
	"homestay/internal/app/uow"
	"homestay/internal/infra/storage/memory"
)

type echoCommand struct {
	Value string
	IdKey string
}

func (c echoCommand) Key() string            { return "test.echo" }
func (c echoCommand) IdempotencyKey() string { return c.IdKey }
func (c echoCommand) ResultPrototype() any   { return &echoResult{} }

type echoResult struct {
	Value string `json:"value"`
	Calls int    `json:"calls"`
}

func newEchoBus(calls *int) *commands.InMemoryBus {
	bus := commands.NewInMemoryBus()
	commands.RegisterHandler(bus, echoCommand{}.Key(),
		commands.HandlerFunc[echoCommand, echoResult](func(_ context.Context, cmd echoCommand) (echoResult, error) {
			*calls++
			if cmd.Value == "boom" {
				return echoResult{}, errors.New("handler exploded")
			}
			return echoResult{Value: cmd.Value, Calls: *calls}, nil
		}))
	return bus
}

func TestIdempotencyReplaysStoredResult(t *testing.T) {
	var calls int
	bus := middleware.ChainCommands(newEchoBus(&calls),
		middleware.Idempotency(memory.NewIdempotencyStore(time.Hour), middleware.JSONResultCodec{}),
	)
	ctx := context.Background()

	first, err := commands.Dispatch[echoCommand, echoResult](ctx, bus, echoCommand{Value: "hi", IdKey: "k-1"})
	require.NoError(t, err)
	assert.Equal(t, 1, first.Calls)

	second, err := commands.Dispatch[echoCommand, echoResult](ctx, bus, echoCommand{Value: "hi", IdKey: "k-1"})
	require.NoError(t, err)
	assert.Equal(t, 1, second.Calls)
	assert.Equal(t, 1, calls)

	// a different key executes the handler again
	third, err := commands.Dispatch[echoCommand, echoResult](ctx, bus, echoCommand{Value: "hi", IdKey: "k-2"})
	require.NoError(t, err)
	assert.Equal(t, 2, third.Calls)
}

func TestIdempotencyReplaysFailures(t *testing.T) {
	var calls int
	bus := middleware.ChainCommands(newEchoBus(&calls),
		middleware.Idempotency(memory.NewIdempotencyStore(time.Hour), middleware.JSONResultCodec{}),
	)
	ctx := context.Background()

	_, err := commands.Dispatch[echoCommand, echoResult](ctx, bus, echoCommand{Value: "boom", IdKey: "k-1"})
	require.Error(t, err)

	_, err = commands.Dispatch[echoCommand, echoResult](ctx, bus, echoCommand{Value: "boom", IdKey: "k-1"})
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestIdempotencySkipsCommandsWithoutKey(t *testing.T) {
	var calls int
	bus := middleware.ChainCommands(newEchoBus(&calls),
		middleware.Idempotency(memory.NewIdempotencyStore(time.Hour), middleware.JSONResultCodec{}),
	)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := commands.Dispatch[echoCommand, echoResult](ctx, bus, echoCommand{Value: "hi"})
		require.NoError(t, err)
	}
	assert.Equal(t, 2, calls)
}

func TestIdempotencyRecordsExpire(t *testing.T) {
	var calls int
	bus := middleware.ChainCommands(newEchoBus(&calls),
		middleware.Idempotency(memory.NewIdempotencyStore(time.Nanosecond), middleware.JSONResultCodec{}),
	)
	ctx := context.Background()

	_, err := commands.Dispatch[echoCommand, echoResult](ctx, bus, echoCommand{Value: "hi", IdKey: "k-1"})
	require.NoError(t, err)
	time.Sleep(time.Millisecond)

	_, err = commands.Dispatch[echoCommand, echoResult](ctx, bus, echoCommand{Value: "hi", IdKey: "k-1"})
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

type unitAwareCommand struct{}

func (unitAwareCommand) Key() string { return "test.unit_aware" }

func TestTransactionInjectsUnitIntoContext(t *testing.T) {
	factory := memory.NewFactory()

	bus := commands.NewInMemoryBus()
	var sawUnit bool
	commands.RegisterHandler(bus, unitAwareCommand{}.Key(),
		commands.HandlerFunc[unitAwareCommand, struct{}](func(ctx context.Context, _ unitAwareCommand) (struct{}, error) {
			_, sawUnit = uow.FromContext(ctx)
			return struct{}{}, nil
		}))

	chained := middleware.ChainCommands(bus, middleware.Transaction(factory, nil))
	_, err := commands.Dispatch[unitAwareCommand, struct{}](context.Background(), chained, unitAwareCommand{})
	require.NoError(t, err)
	assert.True(t, sawUnit)
}

type spyOutbox struct {
	*memory.Outbox
	flushes int
}

func (s *spyOutbox) Flush(ctx context.Context) error {
	s.flushes++
	return s.Outbox.Flush(ctx)
}

func TestOutboxFlushRunsAfterSuccessOnly(t *testing.T) {
	box := &spyOutbox{Outbox: memory.NewOutbox()}
	var calls int
	bus := newEchoBus(&calls)
	chained := middleware.ChainCommands(bus, middleware.OutboxFlush(box))
	ctx := context.Background()

	_, err := commands.Dispatch[echoCommand, echoResult](ctx, chained, echoCommand{Value: "boom"})
	require.Error(t, err)
	assert.Zero(t, box.flushes)

	_, err = commands.Dispatch[echoCommand, echoResult](ctx, chained, echoCommand{Value: "hi"})
	require.NoError(t, err)
	assert.Equal(t, 1, box.flushes)
}
