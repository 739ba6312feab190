package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name               string
		page, size         int
		wantOffset, wantLn int
	}{
		{name: "first page", page: 1, size: 20, wantOffset: 0, wantLn: 20},
		{name: "third page", page: 3, size: 5, wantOffset: 10, wantLn: 5},
		{name: "page below one", page: 0, size: 5, wantOffset: 0, wantLn: 5},
		{name: "size too large", page: 2, size: 500, wantOffset: DefaultPageSize, wantLn: DefaultPageSize},
		{name: "size zero", page: 1, size: 0, wantOffset: 0, wantLn: DefaultPageSize},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			off, lim := Calculate(tt.page, tt.size)
			assert.Equal(t, tt.wantOffset, off)
			assert.Equal(t, tt.wantLn, lim)
		})
	}
}

func TestFromQuery(t *testing.T) {
	t.Parallel()

	off, lim := FromQuery("", "")
	assert.Zero(t, off)
	assert.Zero(t, lim)

	off, lim = FromQuery("2", "")
	assert.Equal(t, DefaultPageSize, off)
	assert.Equal(t, DefaultPageSize, lim)

	off, lim = FromQuery("abc", "3")
	assert.Equal(t, 0, off)
	assert.Equal(t, 3, lim)
}

func TestParseID(t *testing.T) {
	t.Parallel()

	id, err := ParseID("42")
	require.NoError(t, err)
	assert.EqualValues(t, 42, id)

	for _, bad := range []string{"", "0", "-1", "abc", "1.5"} {
		_, err := ParseID(bad)
		assert.Error(t, err, bad)
	}
}
