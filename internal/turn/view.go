package turn

import "github.com/mmeshcher/san-gateway/internal/model"

// MemberView описывает участника SAN вместе с отметками.
type MemberView struct {
	model.SanMember
	Badges Badges `json:"badges"`
}

// SanView содержит данные экрана деталей SAN.
type SanView struct {
	Status   Status       `json:"status"`
	Progress float64      `json:"progress"`
	Members  []MemberView `json:"members"`
}

// DescribeSan собирает производное состояние SAN для экрана деталей.
func DescribeSan(d model.SanDetail) SanView {
	v := SanView{
		Status:   RelativeStatus(d.MyTurn, d.CurrentTurn),
		Progress: Progress(d.CurrentTurn, d.TotalMembers),
		Members:  make([]MemberView, 0, len(d.Members)),
	}
	for _, m := range d.Members {
		v.Members = append(v.Members, MemberView{
			SanMember: m,
			Badges:    MemberBadges(m, d.CurrentTurn),
		})
	}
	return v
}

// NextPaymentView содержит данные карточки ближайшего платежа.
type NextPaymentView struct {
	Action    Action `json:"action"`
	TurnLabel int    `json:"turnLabel"`
}

// DescribeNextPayment собирает производное состояние карточки платежа.
func DescribeNextPayment(np model.NextPayment) NextPaymentView {
	return NextPaymentView{
		Action:    NextPaymentAction(np.LastPaidTurn, np.CurrentTurn),
		TurnLabel: TurnLabel(np.CurrentTurn),
	}
}

// AccountView содержит производное состояние главного экрана.
type AccountView struct {
	Due           Due               `json:"due"`
	LevelProgress float64           `json:"levelProgress"`
	NextPayments  []NextPaymentView `json:"nextPayments"`
}

// DescribeAccount собирает производное состояние главного экрана.
func DescribeAccount(a model.Account) AccountView {
	v := AccountView{
		Due:           DueIn(a.Statistics.DaysUntilNextPayment),
		LevelProgress: Fraction(float64(a.User.Points), float64(a.User.PointsNeeded)),
		NextPayments:  make([]NextPaymentView, 0, len(a.NextPayments)),
	}
	for _, np := range a.NextPayments {
		v.NextPayments = append(v.NextPayments, DescribeNextPayment(np))
	}
	return v
}
