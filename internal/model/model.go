// Package model содержит доменные сущности шлюза SAN.
package model

// User представляет пользователя, полученного при входе в систему.
type User struct {
	ID       string `json:"_id"`
	Name     string `json:"name"`
	LastName string `json:"lastName,omitempty"`
	Photo    string `json:"photo,omitempty"`
	Email    string `json:"email"`
	Date     string `json:"date,omitempty"`
	Token    string `json:"token,omitempty"`
}

// UserAccount содержит уровень и баллы пользователя.
type UserAccount struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	Points       int    `json:"points"`
	Level        int    `json:"level"`
	PointsNeeded int    `json:"pointsNeeded"`
}

// Statistics содержит агрегированную статистику пользователя по SAN.
type Statistics struct {
	ActiveSansCount      int     `json:"activeSansCount"`
	CompletedSansCount   int     `json:"completedSansCount"`
	TotalSavings         float64 `json:"totalSavings"`
	TotalPayments        int     `json:"totalPayments"`
	OnTimePayments       int     `json:"onTimePayments"`
	DaysUntilNextPayment int     `json:"daysUntilNextPayment"`
}

// SanMin кратко описывает SAN, в котором состоит пользователь.
type SanMin struct {
	ID        string  `json:"id"`
	SanName   string  `json:"sanName"`
	Amount    float64 `json:"amount"`
	StartDate string  `json:"startDate"`
	Frequency string  `json:"frequency"`
	Position  int     `json:"position"`
}

// NextPayment описывает ближайший платёж пользователя для главного экрана.
type NextPayment struct {
	ID              string  `json:"id"`
	SanName         string  `json:"sanName"`
	SanAmount       float64 `json:"sanAmount"`
	PaymentAmount   float64 `json:"paymentAmount"`
	NextPaymentDate *string `json:"nextPaymentDate"`
	IsOwnTurn       bool    `json:"isOwnTurn"`
	CurrentTurn     *int    `json:"currentTurn"`
	LastPaidTurn    *int    `json:"lastPaidTurn"`
}

// Account представляет снимок аккаунта пользователя. Заменяется целиком после мутаций.
type Account struct {
	User         UserAccount   `json:"user"`
	Statistics   Statistics    `json:"statistics"`
	Sans         []SanMin      `json:"sans"`
	NextPayments []NextPayment `json:"nextPayments"`
}

// San описывает SAN, доступный для вступления.
type San struct {
	ID           string   `json:"_id"`
	Name         string   `json:"name"`
	Amount       float64  `json:"amount"`
	Frequency    string   `json:"frequency"`
	PaymentDates []string `json:"paymentDates"`
	IsActive     bool     `json:"isActive"`
	Active       bool     `json:"active"`
	Members      []string `json:"members"`
	CreatedAt    string   `json:"createdAt"`
	UpdatedAt    string   `json:"updatedAt"`
}

// SanMember описывает участника SAN с позицией в очереди и флагами оплаты.
type SanMember struct {
	ID                 string `json:"id"`
	Name               string `json:"name"`
	LastName           string `json:"lastName"`
	Photo              string `json:"photo"`
	Position           int    `json:"position"`
	HasPaidCurrentTurn bool   `json:"hasPaidCurrentTurn"`
	HasReceivedMoney   bool   `json:"hasReceivedMoney"`
}

// SanDetail содержит полное состояние ротации SAN.
type SanDetail struct {
	ID           string      `json:"id"`
	SanName      string      `json:"sanName"`
	Amount       float64     `json:"amount"`
	StartDate    *string     `json:"startDate"`
	Frequency    string      `json:"frequency"`
	IsActive     bool        `json:"isActive"`
	IsOpen       bool        `json:"isOpen"`
	CurrentTurn  *int        `json:"currentTurn"`
	MyTurn       *int        `json:"myTurn"`
	Members      []SanMember `json:"members"`
	TotalMembers int         `json:"totalMembers"`
	CreatedAt    string      `json:"createdAt"`
	UpdatedAt    *string     `json:"updatedAt"`
}

// Bank описывает банк-источник платежа.
type Bank struct {
	ID     string `json:"_id"`
	Name   string `json:"name"`
	Code   string `json:"code"`
	Active bool   `json:"active,omitempty"`
}

// TransactionStatus описывает статус проверки платежа.
type TransactionStatus string

const (
	TransactionStatusValidated TransactionStatus = "validated"
	TransactionStatusPending   TransactionStatus = "pending"
	TransactionStatusRejected  TransactionStatus = "rejected"
)

// PaymentTiming описывает своевременность платежа.
type PaymentTiming string

const (
	PaymentTimingEarly  PaymentTiming = "early"
	PaymentTimingOnTime PaymentTiming = "ontime"
	PaymentTimingLate   PaymentTiming = "late"
)

// TransactionSan ссылается на SAN внутри транзакции.
type TransactionSan struct {
	ID   string `json:"_id"`
	Name string `json:"name"`
}

// Transaction описывает запись истории платежей.
type Transaction struct {
	ID                 string            `json:"_id"`
	User               string            `json:"user"`
	San                TransactionSan    `json:"san"`
	Bank               Bank              `json:"bank"`
	Amount             float64           `json:"amount"`
	Date               string            `json:"date"`
	PointsEarned       int               `json:"pointsEarned"`
	PointsLost         int               `json:"pointsLost"`
	PaymentDateIndex   int               `json:"paymentDateIndex"`
	OperationReference int64             `json:"operationReference"`
	Status             TransactionStatus `json:"status"`
	PaymentStatus      PaymentTiming     `json:"paymentStatus"`
	Active             bool              `json:"active"`
	CreatedAt          string            `json:"createdAt"`
	UpdatedAt          string            `json:"updatedAt"`
	ValidatedBy        string            `json:"validatedBy,omitempty"`
	ValidationDate     string            `json:"validationDate,omitempty"`
}

// TransactionHistory содержит страницу истории транзакций.
type TransactionHistory struct {
	Transactions []Transaction `json:"transactions"`
	Total        int           `json:"total"`
	Page         int           `json:"page"`
	TotalPages   int           `json:"totalPages"`
}

// PaymentMethodKind описывает способ перевода средств.
type PaymentMethodKind string

const (
	PaymentMethodTransfer      PaymentMethodKind = "transferencia"
	PaymentMethodMobilePayment PaymentMethodKind = "pago_movil"
)

// PaymentMethod описывает сохранённый способ оплаты пользователя.
type PaymentMethod struct {
	ID            string            `json:"_id"`
	UserID        string            `json:"userId"`
	Title         string            `json:"title"`
	Bank          Bank              `json:"bank"`
	Method        PaymentMethodKind `json:"method"`
	IDNumber      string            `json:"idNumber"`
	AccountNumber string            `json:"accountNumber,omitempty"`
	AccountType   string            `json:"accountType,omitempty"`
	PhoneNumber   string            `json:"phoneNumber,omitempty"`
	Active        bool              `json:"active"`
	CreatedAt     string            `json:"createdAt"`
	UpdatedAt     string            `json:"updatedAt"`
}

// PaymentMethodInput содержит данные для создания или изменения способа оплаты.
type PaymentMethodInput struct {
	Title         string            `json:"title,omitempty"`
	Bank          string            `json:"bank,omitempty"`
	Method        PaymentMethodKind `json:"method,omitempty"`
	IDNumber      string            `json:"idNumber,omitempty"`
	AccountNumber string            `json:"accountNumber,omitempty"`
	AccountType   string            `json:"accountType,omitempty"`
	PhoneNumber   string            `json:"phoneNumber,omitempty"`
	Active        *bool             `json:"active,omitempty"`
}

// SanPayment описывает платёж за вступление в SAN или за очередной ход.
type SanPayment struct {
	San                string  `json:"san"`
	Bank               string  `json:"bank"`
	Amount             float64 `json:"amount"`
	OperationReference string  `json:"operationReference"`
	Date               string  `json:"date"`
}

// Credentials содержит данные для входа.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Registration содержит данные для регистрации.
type Registration struct {
	Name     string `json:"name"`
	LastName string `json:"lastName,omitempty"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Recovery содержит данные второго шага восстановления пароля.
type Recovery struct {
	Code    int    `json:"code"`
	Email   string `json:"email"`
	NewPass string `json:"newPass"`
}

// ProfileUpdate содержит изменяемые поля профиля.
type ProfileUpdate struct {
	Name     string `json:"name,omitempty"`
	LastName string `json:"lastName,omitempty"`
	Email    string `json:"email,omitempty"`
}

// Image представляет изображение для загрузки (фото профиля).
type Image struct {
	Data        []byte
	Filename    string
	ContentType string
	ImageType   string
}
