package cache

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestNilClientFailsSafe(t *testing.T) {
	var c *Client
	ctx := context.Background()

	data, err := c.Get(ctx, "results:x")
	assert.NoError(t, err)
	assert.Nil(t, data)

	assert.NoError(t, c.Set(ctx, "results:x", []byte("{}"), time.Minute))
	assert.NoError(t, c.Delete(ctx, "results:x"))
	assert.Error(t, c.Publish(ctx, "votes", []byte("{}")))
	assert.Error(t, c.Ping(ctx))
	assert.NoError(t, c.Close())
}

func TestUnreachableRedisReadsAsMiss(t *testing.T) {
	// nothing listens on port 1
	c := New("127.0.0.1:1", "", 0)
	defer c.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	data, err := c.Get(ctx, "results:x")
	assert.NoError(t, err)
	assert.Nil(t, data)
	assert.NoError(t, c.Set(ctx, "results:x", []byte("{}"), time.Minute))
}

func TestResultsKey(t *testing.T) {
	id := uuid.MustParse("6f1c3c1e-9a8e-4c55-9d3a-0c5f2f2d1b11")
	assert.Equal(t, "results:6f1c3c1e-9a8e-4c55-9d3a-0c5f2f2d1b11", ResultsKey(id))
}
