package linear

import (
	"bytes"
	"errors"
	"log/slog"
	"runtime"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/kiosk/internal/logger"
)

func TestSpendConsumesOnce(t *testing.T) {
	tok := NewToken(nil, "loan")
	assert.False(t, tok.Consumed())

	require.NoError(t, tok.Spend(func() error { return nil }))
	assert.True(t, tok.Consumed())

	err := tok.Spend(func() error { return nil })
	assert.ErrorIs(t, err, ErrConsumed)
}

func TestSpendFailureReleasesToken(t *testing.T) {
	tok := NewToken(nil, "loan")
	boom := errors.New("boom")

	err := tok.Spend(func() error { return boom })
	assert.ErrorIs(t, err, boom)
	assert.False(t, tok.Consumed(), "failed spend must leave the token usable")

	require.NoError(t, tok.Spend(func() error { return nil }))
}

func TestLedgerTracksOutstanding(t *testing.T) {
	l := NewLedger()
	a := NewToken(l, "transfer-request")
	b := NewToken(l, "loan")

	assert.Len(t, l.Outstanding(), 2)
	err := l.Check()
	assert.ErrorIs(t, err, ErrLeaked)
	assert.Contains(t, err.Error(), a.ID().String())
	assert.Contains(t, err.Error(), "loan")

	require.NoError(t, a.Spend(func() error { return nil }))
	require.NoError(t, b.Spend(func() error { return nil }))

	assert.Empty(t, l.Outstanding())
	assert.NoError(t, l.Check())
}

func TestFailedSpendStaysOutstanding(t *testing.T) {
	l := NewLedger()
	tok := NewToken(l, "loan")

	_ = tok.Spend(func() error { return errors.New("wrong kiosk") })

	entries := l.Outstanding()
	require.Len(t, entries, 1)
	assert.Equal(t, tok.ID(), entries[0].ID)
}

func TestConcurrentSpendSucceedsOnce(t *testing.T) {
	tok := NewToken(nil, "purchase-cap")

	var wins atomic.Int32
	var wg sync.WaitGroup
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if tok.Spend(func() error { return nil }) == nil {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), wins.Load())
}

type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func captureLog(t *testing.T) *lockedBuffer {
	t.Helper()
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	var out lockedBuffer
	logger.Init(&out, slog.LevelInfo)
	return &out
}

//go:noinline
func issue(kind string, spend bool) {
	tok := NewToken(nil, kind)
	if spend {
		_ = tok.Spend(func() error { return nil })
	}
}

//go:noinline
func issueAffine(kind string) {
	_ = NewAffine(kind)
}

func collectUntil(t *testing.T, cond func() bool) {
	t.Helper()
	require.Eventually(t, func() bool {
		runtime.GC()
		return cond()
	}, 5*time.Second, 10*time.Millisecond)
}

func TestDroppedTokenIsReported(t *testing.T) {
	out := captureLog(t)

	issue("dropped-request", false)
	collectUntil(t, func() bool { return Dropped("dropped-request") == 1 })

	assert.Contains(t, out.String(), "[ERR] token dropped without being consumed")
	assert.Contains(t, out.String(), "kind=dropped-request")
}

func TestDroppedTokenWithLedger(t *testing.T) {
	captureLog(t)
	l := NewLedger()

	func() {
		_ = NewToken(l, "dropped-loan")
	}()
	collectUntil(t, func() bool { return Dropped("dropped-loan") == 1 })
	require.ErrorIs(t, l.Check(), ErrLeaked)
}

func TestSpentAndAffineTokensAreNotReported(t *testing.T) {
	out := captureLog(t)

	issue("spent-request", true)
	issueAffine("affine-cap")
	issue("marker", false)

	collectUntil(t, func() bool { return Dropped("marker") == 1 })
	runtime.GC()

	assert.Zero(t, Dropped("spent-request"))
	assert.Zero(t, Dropped("affine-cap"))
	assert.NotContains(t, out.String(), "kind=spent-request")
	assert.NotContains(t, out.String(), "kind=affine-cap")
}
