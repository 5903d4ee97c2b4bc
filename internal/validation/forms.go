package validation

import "github.com/mmeshcher/san-gateway/internal/model"

// LoginForm описывает форму входа.
type LoginForm struct {
	Email    string `json:"email" validate:"required,email_pattern"`
	Password string `json:"password" validate:"required,min=7"`
}

// RegisterForm описывает форму регистрации.
type RegisterForm struct {
	Name            string `json:"name" validate:"required"`
	LastName        string `json:"lastName"`
	Email           string `json:"email" validate:"required,email_pattern"`
	Password        string `json:"password" validate:"required,min=7"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=Password"`
}

// RecoveryRequestForm описывает первый шаг восстановления пароля.
type RecoveryRequestForm struct {
	Email string `json:"email" validate:"required,email_pattern"`
}

// RecoveryResetForm описывает второй шаг восстановления пароля.
type RecoveryResetForm struct {
	Email           string `json:"email" validate:"required,email_pattern"`
	Code            string `json:"code" validate:"required,len=6,numeric"`
	NewPassword     string `json:"newPass" validate:"required,min=7"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=NewPassword"`
}

// ProfileForm описывает изменение профиля.
type ProfileForm struct {
	Name     string `json:"name" validate:"required"`
	LastName string `json:"lastName"`
	Email    string `json:"email" validate:"omitempty,email_pattern"`
}

// PaymentForm описывает форму платежа за вступление или за ход.
type PaymentForm struct {
	San                string  `json:"san" validate:"required"`
	Bank               string  `json:"bank" validate:"required"`
	Amount             float64 `json:"amount" validate:"gt=0"`
	OperationReference string  `json:"operationReference" validate:"required,numeric"`
	Date               string  `json:"date" validate:"required,datetime=2006-01-02"`
}

// PaymentMethodForm описывает создание способа оплаты.
type PaymentMethodForm struct {
	Title         string `json:"title" validate:"required"`
	Bank          string `json:"bank" validate:"required"`
	Method        string `json:"method" validate:"required,oneof=transferencia pago_movil"`
	IDNumber      string `json:"idNumber" validate:"required,numeric"`
	AccountNumber string `json:"accountNumber" validate:"required_if=Method transferencia,omitempty,numeric"`
	AccountType   string `json:"accountType" validate:"required_if=Method transferencia"`
	PhoneNumber   string `json:"phoneNumber" validate:"required_if=Method pago_movil,omitempty,numeric"`
}

// Input переводит форму в данные запроса.
func (f PaymentMethodForm) Input() model.PaymentMethodInput {
	return model.PaymentMethodInput{
		Title:         f.Title,
		Bank:          f.Bank,
		Method:        model.PaymentMethodKind(f.Method),
		IDNumber:      f.IDNumber,
		AccountNumber: f.AccountNumber,
		AccountType:   f.AccountType,
		PhoneNumber:   f.PhoneNumber,
	}
}

// PaymentMethodUpdateForm описывает частичное изменение способа оплаты.
type PaymentMethodUpdateForm struct {
	Title         string `json:"title"`
	Bank          string `json:"bank"`
	Method        string `json:"method" validate:"omitempty,oneof=transferencia pago_movil"`
	IDNumber      string `json:"idNumber" validate:"omitempty,numeric"`
	AccountNumber string `json:"accountNumber" validate:"omitempty,numeric"`
	AccountType   string `json:"accountType"`
	PhoneNumber   string `json:"phoneNumber" validate:"omitempty,numeric"`
	Active        *bool  `json:"active"`
}

// Input переводит форму в данные запроса.
func (f PaymentMethodUpdateForm) Input() model.PaymentMethodInput {
	return model.PaymentMethodInput{
		Title:         f.Title,
		Bank:          f.Bank,
		Method:        model.PaymentMethodKind(f.Method),
		IDNumber:      f.IDNumber,
		AccountNumber: f.AccountNumber,
		AccountType:   f.AccountType,
		PhoneNumber:   f.PhoneNumber,
		Active:        f.Active,
	}
}
