package turn

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmeshcher/san-gateway/internal/model"
)

func ptr(v int) *int {
	return &v
}

func TestRelativeStatus(t *testing.T) {
	tests := []struct {
		name    string
		myTurn  *int
		current *int
		want    Status
	}{
		{
			name: "both missing",
			want: Status{Kind: StatusCurrentTurn},
		},
		{
			name:    "already received",
			myTurn:  ptr(2),
			current: ptr(3),
			want:    Status{Kind: StatusAlreadyReceived},
		},
		{
			name:    "current turn",
			myTurn:  ptr(3),
			current: ptr(3),
			want:    Status{Kind: StatusCurrentTurn},
		},
		{
			name:    "turns remaining",
			myTurn:  ptr(5),
			current: ptr(3),
			want:    Status{Kind: StatusTurnsRemaining, Remaining: 2},
		},
		{
			name:   "rotation not started",
			myTurn: ptr(4),
			want:   Status{Kind: StatusTurnsRemaining, Remaining: 4},
		},
		{
			name:    "my turn missing",
			current: ptr(1),
			want:    Status{Kind: StatusAlreadyReceived},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RelativeStatus(tt.myTurn, tt.current))
		})
	}
}

func TestRelativeStatus_RemainingIsPositiveDifference(t *testing.T) {
	for m := 0; m <= 12; m++ {
		for c := 0; c <= 12; c++ {
			s := RelativeStatus(ptr(m), ptr(c))
			switch s.Kind {
			case StatusTurnsRemaining:
				require.Greater(t, s.Remaining, 0)
				require.Equal(t, m-c, s.Remaining)
			case StatusAlreadyReceived:
				require.Less(t, m, c)
				require.Zero(t, s.Remaining)
			case StatusCurrentTurn:
				require.Equal(t, m, c)
				require.Zero(t, s.Remaining)
			default:
				t.Fatalf("unexpected kind %q for m=%d c=%d", s.Kind, m, c)
			}
		}
	}
}

func TestProgress(t *testing.T) {
	assert.Equal(t, 0.0, Progress(nil, 10))
	assert.InDelta(t, 0.3, Progress(ptr(3), 10), 1e-9)
	assert.Equal(t, 1.0, Progress(ptr(10), 10))
	assert.Equal(t, 1.0, Progress(ptr(14), 10), "stale turn must be clamped")
	assert.Equal(t, 0.0, Progress(ptr(-2), 10))
	assert.Equal(t, 0.0, Progress(ptr(5), 0), "no division by zero")
	assert.Equal(t, 0.0, Progress(ptr(5), -3))
}

func TestProgress_Monotonic(t *testing.T) {
	for total := 1; total <= 15; total++ {
		prev := -1.0
		for c := 0; c <= total+5; c++ {
			got := Progress(ptr(c), total)
			require.GreaterOrEqual(t, got, prev)
			require.GreaterOrEqual(t, got, 0.0)
			require.LessOrEqual(t, got, 1.0)
			prev = got
		}
	}
}

func TestMemberBadges(t *testing.T) {
	tests := []struct {
		name    string
		member  model.SanMember
		current *int
		want    Badges
	}{
		{
			name:    "current and pending at once",
			member:  model.SanMember{Position: 3},
			current: ptr(3),
			want:    Badges{Payment: BadgePending, Current: true},
		},
		{
			name:    "paid and current",
			member:  model.SanMember{Position: 3, HasPaidCurrentTurn: true},
			current: ptr(3),
			want:    Badges{Payment: BadgePaid, Current: true},
		},
		{
			name:    "completed member",
			member:  model.SanMember{Position: 1, HasPaidCurrentTurn: true, HasReceivedMoney: true},
			current: ptr(3),
			want:    Badges{Payment: BadgePaid, Completed: true},
		},
		{
			name:   "missing current turn matches position zero only",
			member: model.SanMember{Position: 1},
			want:   Badges{Payment: BadgePending},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MemberBadges(tt.member, tt.current))
		})
	}
}

func TestNextPaymentAction(t *testing.T) {
	assert.Equal(t, ActionEarlyPayment, NextPaymentAction(ptr(2), ptr(2)))
	assert.Equal(t, ActionPayNow, NextPaymentAction(ptr(1), ptr(2)))
	assert.Equal(t, ActionEarlyPayment, NextPaymentAction(nil, nil))
	assert.Equal(t, ActionPayNow, NextPaymentAction(nil, ptr(1)))
}

func TestDueIn(t *testing.T) {
	assert.Equal(t, Due{Kind: DueUpcoming, Days: 4}, DueIn(4))
	assert.Equal(t, Due{Kind: DueToday}, DueIn(0))
	assert.Equal(t, Due{Kind: DueOverdue, Days: 2}, DueIn(-2))
}

func TestTurnLabel(t *testing.T) {
	assert.Equal(t, 1, TurnLabel(nil))
	assert.Equal(t, 4, TurnLabel(ptr(3)))
}
