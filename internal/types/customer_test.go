package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCustomer_ComputeAge(t *testing.T) {
	now := time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		name  string
		birth time.Time
		want  int
	}{
		{"birthday already passed this year", time.Date(1990, 5, 20, 0, 0, 0, 0, time.UTC), 36},
		{"birthday later this year", time.Date(1990, 7, 1, 0, 0, 0, 0, time.UTC), 35},
		{"birthday today", time.Date(1990, 6, 15, 0, 0, 0, 0, time.UTC), 36},
		{"under one year old", time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC), 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := Customer{BirthDate: tc.birth}
			assert.Equal(t, tc.want, c.ComputeAge(now))
		})
	}
}
