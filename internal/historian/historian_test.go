package historian

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jason-s-yu/blanks/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// chanSource serves records from a channel.
type chanSource struct {
	ch chan models.GameActionRecord
}

func (s *chanSource) PopGameAction(ctx context.Context, timeout time.Duration) (models.GameActionRecord, bool, error) {
	select {
	case rec := <-s.ch:
		return rec, true, nil
	case <-ctx.Done():
		return models.GameActionRecord{}, false, ctx.Err()
	case <-time.After(timeout):
		return models.GameActionRecord{}, false, nil
	}
}

type mockSink struct {
	mock.Mock
	mu      sync.Mutex
	batches [][]models.GameActionRecord
}

func (m *mockSink) SaveGameActions(ctx context.Context, recs []models.GameActionRecord) error {
	args := m.Called(ctx, recs)
	if args.Error(0) == nil {
		m.mu.Lock()
		m.batches = append(m.batches, recs)
		m.mu.Unlock()
	}
	return args.Error(0)
}

func (m *mockSink) saved() [][]models.GameActionRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([][]models.GameActionRecord(nil), m.batches...)
}

func records(n int) []models.GameActionRecord {
	gameID := uuid.New()
	out := make([]models.GameActionRecord, n)
	for i := range out {
		out[i] = models.GameActionRecord{GameID: gameID, ActionIndex: i + 1, ActionType: "round_start"}
	}
	return out
}

func TestHistorianFlushesFullBatches(t *testing.T) {
	src := &chanSource{ch: make(chan models.GameActionRecord, 10)}
	sink := &mockSink{}
	sink.On("SaveGameActions", mock.Anything, mock.Anything).Return(nil)

	for _, rec := range records(6) {
		src.ch <- rec
	}
	svc := New(src, sink, Options{BatchSize: 3, FlushInterval: time.Hour, PopTimeout: 10 * time.Millisecond}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		svc.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool { return len(sink.saved()) == 2 }, time.Second, 5*time.Millisecond)
	cancel()
	<-done

	batches := sink.saved()
	require.Len(t, batches, 2)
	assert.Len(t, batches[0], 3)
	assert.Equal(t, 4, batches[1][0].ActionIndex)
}

func TestHistorianFlushesOnInterval(t *testing.T) {
	src := &chanSource{ch: make(chan models.GameActionRecord, 10)}
	sink := &mockSink{}
	sink.On("SaveGameActions", mock.Anything, mock.Anything).Return(nil)

	src.ch <- records(1)[0]
	svc := New(src, sink, Options{BatchSize: 100, FlushInterval: 30 * time.Millisecond, PopTimeout: 5 * time.Millisecond}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go svc.Run(ctx)

	require.Eventually(t, func() bool { return len(sink.saved()) == 1 }, time.Second, 5*time.Millisecond)
	assert.Len(t, sink.saved()[0], 1)
}

func TestHistorianFlushesRemainderOnStop(t *testing.T) {
	src := &chanSource{ch: make(chan models.GameActionRecord, 10)}
	sink := &mockSink{}
	sink.On("SaveGameActions", mock.Anything, mock.Anything).Return(nil)

	svc := New(src, sink, Options{BatchSize: 100, FlushInterval: time.Hour, PopTimeout: 5 * time.Millisecond}, nil)
	for _, rec := range records(2) {
		src.ch <- rec
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		svc.Run(ctx)
		close(done)
	}()
	require.Eventually(t, func() bool { return len(src.ch) == 0 }, time.Second, time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	cancel()
	<-done

	batches := sink.saved()
	require.Len(t, batches, 1)
	assert.Len(t, batches[0], 2)
}

func TestHistorianDropsFailedBatch(t *testing.T) {
	src := &chanSource{ch: make(chan models.GameActionRecord, 10)}
	sink := &mockSink{}
	sink.On("SaveGameActions", mock.Anything, mock.Anything).Return(errors.New("db down")).Once()
	sink.On("SaveGameActions", mock.Anything, mock.Anything).Return(nil)

	recs := records(2)
	svc := New(src, sink, Options{BatchSize: 1, FlushInterval: time.Hour, PopTimeout: 5 * time.Millisecond}, nil)
	src.ch <- recs[0]
	src.ch <- recs[1]

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go svc.Run(ctx)

	require.Eventually(t, func() bool { return len(sink.saved()) == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, 2, sink.saved()[0][0].ActionIndex)
	sink.AssertNumberOfCalls(t, "SaveGameActions", 2)
}

func TestNewDefaults(t *testing.T) {
	svc := New(nil, nil, Options{}, nil)
	assert.Equal(t, 20, svc.opts.BatchSize)
	assert.Equal(t, 500*time.Millisecond, svc.opts.FlushInterval)
	assert.Equal(t, time.Second, svc.opts.PopTimeout)
}

// stoppingSource hands out one record, then waits out the flush interval and
// cancels the run context before returning.
type stoppingSource struct {
	rec    models.GameActionRecord
	served bool
	delay  time.Duration
	cancel context.CancelFunc
}

func (s *stoppingSource) PopGameAction(ctx context.Context, timeout time.Duration) (models.GameActionRecord, bool, error) {
	if !s.served {
		s.served = true
		return s.rec, true, nil
	}
	time.Sleep(s.delay)
	s.cancel()
	return models.GameActionRecord{}, false, ctx.Err()
}

func TestHistorianKeepsPendingBatchForFinalFlush(t *testing.T) {
	sink := &mockSink{}
	sink.On("SaveGameActions", mock.MatchedBy(func(ctx context.Context) bool { return ctx.Err() != nil }), mock.Anything).
		Return(context.Canceled)
	sink.On("SaveGameActions", mock.Anything, mock.Anything).Return(nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	interval := 50 * time.Millisecond
	src := &stoppingSource{rec: records(1)[0], delay: interval + 20*time.Millisecond, cancel: cancel}
	svc := New(src, sink, Options{BatchSize: 100, FlushInterval: interval, PopTimeout: 5 * time.Millisecond}, nil)

	done := make(chan struct{})
	go func() {
		svc.Run(ctx)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("historian did not stop")
	}

	batches := sink.saved()
	require.Len(t, batches, 1)
	assert.Len(t, batches[0], 1)
	sink.AssertNumberOfCalls(t, "SaveGameActions", 1)
}
