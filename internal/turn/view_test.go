package turn

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmeshcher/san-gateway/internal/model"
)

func tenMemberSan(current, mine int) model.SanDetail {
	d := model.SanDetail{
		ID:           "san-1",
		SanName:      "SAN Básico",
		Amount:       1000,
		CurrentTurn:  ptr(current),
		MyTurn:       ptr(mine),
		TotalMembers: 10,
	}
	for pos := 1; pos <= 10; pos++ {
		d.Members = append(d.Members, model.SanMember{
			ID:                 string(rune('a' + pos)),
			Position:           pos,
			HasPaidCurrentTurn: pos%2 == 0,
			HasReceivedMoney:   pos < current,
		})
	}
	return d
}

func TestDescribeSan_CurrentTurnScenario(t *testing.T) {
	v := DescribeSan(tenMemberSan(3, 3))

	assert.Equal(t, Status{Kind: StatusCurrentTurn}, v.Status)
	assert.InDelta(t, 0.3, v.Progress, 1e-9)
	require.Len(t, v.Members, 10)

	third := v.Members[2]
	assert.Equal(t, 3, third.Position)
	assert.True(t, third.Badges.Current)
	assert.Equal(t, BadgePending, third.Badges.Payment)
	assert.False(t, third.Badges.Completed)

	first := v.Members[0]
	assert.True(t, first.Badges.Completed)
	assert.False(t, first.Badges.Current)
}

func TestDescribeSan_TurnsRemainingScenario(t *testing.T) {
	v := DescribeSan(tenMemberSan(3, 5))
	assert.Equal(t, Status{Kind: StatusTurnsRemaining, Remaining: 2}, v.Status)
}

func TestDescribeSan_NotStarted(t *testing.T) {
	v := DescribeSan(model.SanDetail{TotalMembers: 0})
	assert.Equal(t, Status{Kind: StatusCurrentTurn}, v.Status)
	assert.Equal(t, 0.0, v.Progress)
	assert.Empty(t, v.Members)
}

func TestDescribeAccount(t *testing.T) {
	a := model.Account{
		User:       model.UserAccount{Points: 150, PointsNeeded: 300},
		Statistics: model.Statistics{DaysUntilNextPayment: -3},
		NextPayments: []model.NextPayment{
			{ID: "1", CurrentTurn: ptr(2), LastPaidTurn: ptr(2)},
			{ID: "2", CurrentTurn: ptr(2), LastPaidTurn: ptr(1)},
		},
	}

	v := DescribeAccount(a)

	assert.Equal(t, Due{Kind: DueOverdue, Days: 3}, v.Due)
	assert.InDelta(t, 0.5, v.LevelProgress, 1e-9)
	require.Len(t, v.NextPayments, 2)
	assert.Equal(t, ActionEarlyPayment, v.NextPayments[0].Action)
	assert.Equal(t, ActionPayNow, v.NextPayments[1].Action)
	assert.Equal(t, 3, v.NextPayments[0].TurnLabel)
}
