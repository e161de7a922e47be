package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codescope/backend/internal/index"
)

func newTestCache(t *testing.T) *QueryCache {
	t.Helper()
	c, err := New(time.Minute)
	require.NoError(t, err)
	t.Cleanup(c.Close)
	return c
}

func TestSetGetRoundTrip(t *testing.T) {
	c := newTestCache(t)

	results := []index.Result{{ID: "com.example.Widget", Name: "Widget", Kind: "CLASS"}}
	key := c.Key("p1", "search", "widget", "class")
	c.Set(key, results)
	c.Wait()

	cached, found := c.Get(key)
	require.True(t, found)
	assert.Equal(t, results, cached)
}

func TestGetMiss(t *testing.T) {
	c := newTestCache(t)

	_, found := c.Get(c.Key("p1", "search", "widget"))
	assert.False(t, found)
}

func TestKeyDistinguishesQueries(t *testing.T) {
	c := newTestCache(t)

	assert.NotEqual(t,
		c.Key("p1", "search", "widget", "class"),
		c.Key("p1", "search", "widget", "method"))
	assert.NotEqual(t,
		c.Key("p1", "search", "widget"),
		c.Key("p2", "search", "widget"))
	assert.NotEqual(t,
		c.Key("p1", "search", "widget"),
		c.Key("p1", "relation", "widget"))
}

func TestInvalidateRotatesKeys(t *testing.T) {
	c := newTestCache(t)

	before := c.Key("p1", "search", "widget")
	c.Set(before, []index.Result{{ID: "com.example.Widget"}})
	c.Wait()

	c.Invalidate("p1")

	after := c.Key("p1", "search", "widget")
	assert.NotEqual(t, before, after)

	_, found := c.Get(after)
	assert.False(t, found)

	// Other projects keep their keys.
	assert.Equal(t, c.Key("p2", "search", "widget"), c.Key("p2", "search", "widget"))
}

func TestCacheEmptyResults(t *testing.T) {
	c := newTestCache(t)

	key := c.Key("p1", "search", "nothing")
	c.Set(key, []index.Result{})
	c.Wait()

	cached, found := c.Get(key)
	require.True(t, found)
	assert.Empty(t, cached)
}
