// Package turn вычисляет производное состояние ротации SAN: статус хода
// пользователя, прогресс группы, отметки участников и действие для платежа.
//
// Все функции чистые и тотальные: отсутствующие значения считаются нулём,
// некорректные данные сервера не приводят к ошибке.
package turn

import "github.com/mmeshcher/san-gateway/internal/model"

// StatusKind описывает положение хода пользователя относительно текущего хода группы.
type StatusKind string

const (
	StatusAlreadyReceived StatusKind = "ALREADY_RECEIVED"
	StatusCurrentTurn     StatusKind = "CURRENT_TURN"
	StatusTurnsRemaining  StatusKind = "TURNS_REMAINING"
)

// Status содержит результат RelativeStatus. Remaining > 0 только для StatusTurnsRemaining.
type Status struct {
	Kind      StatusKind `json:"kind"`
	Remaining int        `json:"remaining,omitempty"`
}

// PaymentBadge описывает отметку об оплате текущего хода.
type PaymentBadge string

const (
	BadgePaid    PaymentBadge = "PAID"
	BadgePending PaymentBadge = "PENDING"
)

// Badges содержит независимые отметки участника. Completed и Current могут сочетаться
// с любой PaymentBadge.
type Badges struct {
	Payment   PaymentBadge `json:"payment"`
	Completed bool         `json:"completed"`
	Current   bool         `json:"current"`
}

// Action описывает основное действие на карточке ближайшего платежа.
type Action string

const (
	ActionEarlyPayment Action = "EARLY_PAYMENT"
	ActionPayNow       Action = "PAY_NOW"
)

func value(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}

// RelativeStatus сравнивает ход пользователя с текущим ходом группы.
func RelativeStatus(myTurn, currentTurn *int) Status {
	m, c := value(myTurn), value(currentTurn)

	switch {
	case m < c:
		return Status{Kind: StatusAlreadyReceived}
	case m == c:
		return Status{Kind: StatusCurrentTurn}
	default:
		return Status{Kind: StatusTurnsRemaining, Remaining: m - c}
	}
}

// Fraction возвращает part/whole, ограниченное отрезком [0,1]. При whole <= 0 возвращает 0.
func Fraction(part, whole float64) float64 {
	if whole <= 0 || part <= 0 {
		return 0
	}
	if part >= whole {
		return 1
	}
	return part / whole
}

// Progress возвращает долю пройденных ходов для полосы прогресса.
func Progress(currentTurn *int, totalTurns int) float64 {
	return Fraction(float64(value(currentTurn)), float64(totalTurns))
}

// MemberBadges вычисляет отметки участника для текущего хода.
func MemberBadges(member model.SanMember, currentTurn *int) Badges {
	b := Badges{
		Payment:   BadgePending,
		Completed: member.HasReceivedMoney,
		Current:   member.Position == value(currentTurn),
	}
	if member.HasPaidCurrentTurn {
		b.Payment = BadgePaid
	}
	return b
}

// NextPaymentAction выбирает действие: если пользователь уже оплатил текущий ход,
// предлагается досрочный платёж.
func NextPaymentAction(lastPaidTurn, currentTurn *int) Action {
	if value(lastPaidTurn)+1 > value(currentTurn) {
		return ActionEarlyPayment
	}
	return ActionPayNow
}

// TurnLabel возвращает номер хода, отображаемый на карточке платежа.
func TurnLabel(currentTurn *int) int {
	return value(currentTurn) + 1
}

// DueKind описывает срочность ближайшего платежа на главном экране.
type DueKind string

const (
	DueUpcoming DueKind = "UPCOMING"
	DueToday    DueKind = "TODAY"
	DueOverdue  DueKind = "OVERDUE"
)

// Due содержит срочность платежа и модуль количества дней.
type Due struct {
	Kind DueKind `json:"kind"`
	Days int     `json:"days"`
}

// DueIn переводит знак daysUntilNextPayment в срочность.
func DueIn(days int) Due {
	switch {
	case days > 0:
		return Due{Kind: DueUpcoming, Days: days}
	case days == 0:
		return Due{Kind: DueToday}
	default:
		return Due{Kind: DueOverdue, Days: -days}
	}
}
