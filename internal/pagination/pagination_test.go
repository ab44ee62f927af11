package pagination

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCursorRoundTrip(t *testing.T) {
	at := time.Date(2025, 3, 1, 12, 30, 0, 123456000, time.FixedZone("CET", 3600))
	token := After(at, "0190a1b2-0000-7000-8000-000000000001").Encode()

	got, err := Decode(token)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, got.CreatedAt.Equal(at))
	assert.Equal(t, time.UTC, got.CreatedAt.Location())
	assert.Equal(t, "0190a1b2-0000-7000-8000-000000000001", got.ID)
}

func TestDecode(t *testing.T) {
	c, err := Decode("")
	assert.NoError(t, err)
	assert.Nil(t, c)

	for _, bad := range []string{"not base64!", "e30", "eyJ0IjoxfQ"} {
		_, err := Decode(bad)
		assert.ErrorIs(t, err, ErrInvalidCursor, bad)
	}
}

func TestNilCursorToken(t *testing.T) {
	var c *Cursor
	assert.Nil(t, c.Token())
	assert.NotNil(t, After(time.Now(), "x").Token())
}

func TestParseLimit(t *testing.T) {
	tests := map[string]int{
		"":     DefaultLimit,
		"abc":  DefaultLimit,
		"0":    DefaultLimit,
		"-5":   DefaultLimit,
		"1":    1,
		"20":   20,
		"100":  100,
		"500":  MaxLimit,
		" 42 ": 42,
	}
	for raw, want := range tests {
		assert.Equal(t, want, ParseLimit(raw), "limit %q", raw)
	}
}

func TestTrim(t *testing.T) {
	page, more := Trim([]int{1, 2, 3}, 2)
	assert.Equal(t, []int{1, 2}, page)
	assert.True(t, more)

	page, more = Trim([]int{1, 2}, 2)
	assert.Equal(t, []int{1, 2}, page)
	assert.False(t, more)
}
