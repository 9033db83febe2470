package series

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogRoundTrip(t *testing.T) {
	web := fill(5, time.Minute, func(i int) (bool, int32) { return i != 2, int32(i * 11) })
	load := fill(3, 30*time.Second, func(i int) (bool, int32) { return true, int32(-i) })

	out := NewCatalog()
	out.Register("WEB", web)
	out.Register("LOAD", load)

	var buf bytes.Buffer
	require.NoError(t, out.Save(&buf))

	webBack, loadBack := New(), New()
	in := NewCatalog()
	in.Register("LOAD", loadBack)
	in.Register("WEB", webBack)
	require.NoError(t, in.Load(&buf))

	assertSameItems(t, web, webBack)
	assertSameItems(t, load, loadBack)
}

func assertSameItems(t *testing.T, want, got *Series) {
	t.Helper()
	require.Equal(t, want.Len(), got.Len())
	for i := 0; i < want.Len(); i++ {
		w, _ := want.Get(i)
		g, _ := got.Get(i)
		assert.Equal(t, w.Time.UnixMilli(), g.Time.UnixMilli(), "time at %d", i)
		assert.Equal(t, w.Valid, g.Valid, "valid at %d", i)
		assert.Equal(t, w.Value, g.Value, "value at %d", i)
	}
}

func TestCatalogSaveFormat(t *testing.T) {
	s := New()
	s.Add(time.UnixMilli(1000), true, 42)
	s.Add(time.UnixMilli(2000), false, 0)

	c := NewCatalog()
	c.Register("REDIS", s)
	c.Register("EMPTY", New())

	var buf bytes.Buffer
	require.NoError(t, c.Save(&buf))
	assert.Equal(t, "[REDIS]\n1000\t1\t42\n2000\t0\t0\n", buf.String())
}

func TestCatalogSaveNothing(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewCatalog().Save(&buf))
	assert.Empty(t, buf.String())
}

func TestCatalogLoadIsTolerant(t *testing.T) {
	input := strings.Join([]string{
		"1000\t1\t5", // before any section
		"[OTHER]",
		"1000\t1\t99",
		"[WEB]",
		"1000\t1\t5",
		"garbage",
		"2000\t2\t5",
		"3000\t1\tnotanumber",
		"4000\t1\t99999999999",
		"5000\t0\t0\r",
		"",
		"6000\t1\t-3\textra",
		"7000\t1\t7",
	}, "\n")

	web := New()
	c := NewCatalog()
	c.Register("WEB", web)
	require.NoError(t, c.Load(strings.NewReader(input)))

	require.Equal(t, 3, web.Len())
	first, _ := web.Get(0)
	assert.Equal(t, int32(5), first.Value)
	second, _ := web.Get(1)
	assert.False(t, second.Valid)
	assert.Equal(t, int64(5000), second.Time.UnixMilli())
	third, _ := web.Get(2)
	assert.Equal(t, int32(7), third.Value)
}
