package orders

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to Status
		ok       bool
	}{
		{StatusPending, StatusPaid, true},
		{StatusPending, StatusCancelled, true},
		{StatusPaid, StatusShipped, true},
		{StatusPaid, StatusCancelled, true},
		{StatusShipped, StatusCompleted, true},

		{StatusPending, StatusShipped, false},
		{StatusPending, StatusCompleted, false},
		{StatusShipped, StatusCancelled, false},
		{StatusCompleted, StatusPaid, false},
		{StatusCancelled, StatusPending, false},
		{StatusCompleted, StatusCompleted, false},
		{Status("UNKNOWN"), StatusPaid, false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.ok, CanTransition(tc.from, tc.to), "%s -> %s", tc.from, tc.to)
	}
}
