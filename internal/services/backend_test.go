package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDemoBackend_SignupIDs(t *testing.T) {
	b := NewDemoBackend(0)
	u1, h, err := b.Signup(context.Background(), "A", "a@example.com", "")
	require.NoError(t, err)
	u2, _, err := b.Signup(context.Background(), "B", "b@example.com", "")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(u1.ID, "user"))
	assert.Len(t, u1.ID, len("user")+12)
	assert.NotEqual(t, u1.ID, u2.ID)
	assert.NotNil(t, h)
	assert.Empty(t, h)
}

func TestDemoBackend_LatencyHonorsContext(t *testing.T) {
	b := NewDemoBackend(time.Hour)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, _, err := b.Login(ctx, "jane@example.com", "pw")
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), time.Minute)
}

func TestDemoBackend_LoginHistory(t *testing.T) {
	b := NewDemoBackend(time.Millisecond)
	u, h, err := b.Login(context.Background(), "jane@example.com", "pw")
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", u.Name)
	require.Len(t, h, 1)
	assert.Equal(t, 8.2, h[0].Total)
	assert.Equal(t, 3.4, h[0].Transportation)
}
