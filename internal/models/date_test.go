package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustDate(t *testing.T, s string) Date {
	t.Helper()
	d, err := ParseISODate(s)
	require.NoError(t, err)
	return d
}

func TestDateCompareIsCoarse(t *testing.T) {
	assert.Equal(t, 0, mustDate(t, "2021").Compare(mustDate(t, "2021-06")))
	assert.Equal(t, 0, mustDate(t, "2021-03").Compare(mustDate(t, "2021")))
	assert.False(t, mustDate(t, "2021-06").Before(mustDate(t, "2021")))
}

func TestDateOrderIsTotal(t *testing.T) {
	year, jan, mar, jun := mustDate(t, "2021"), mustDate(t, "2021-01"), mustDate(t, "2021-03"), mustDate(t, "2021-06")

	assert.Equal(t, -1, year.Order(jan))
	assert.Equal(t, -1, jan.Order(mar))
	assert.Equal(t, -1, mar.Order(jun))
	assert.Equal(t, 1, jun.Order(year))
	assert.Equal(t, 0, mar.Order(mustDate(t, "2021-03")))
}
