package device

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPendingResolvedByOtherActor(t *testing.T) {
	p := NewPending[string]()

	select {
	case <-p.Done():
		t.Fatal("pending must not be done before Resolve")
	default:
	}

	go func() {
		time.Sleep(10 * time.Millisecond)
		p.Resolve("signed", nil)
	}()

	got, err := p.Wait(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "signed", got)
}

func TestPendingFirstResolveWins(t *testing.T) {
	p := NewPending[int]()
	assert.True(t, p.Resolve(1, nil))
	assert.False(t, p.Resolve(2, errors.New("late")))

	got, err := p.Wait(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, got)
}

func TestPendingWaitHonoursContext(t *testing.T) {
	p := NewPending[int]()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := p.Wait(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	// 超时之后仍然可以完成并再次等待
	p.Resolve(7, nil)
	got, err := p.Wait(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 7, got)
}
