package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_Login(t *testing.T) {
	tests := []struct {
		name string
		form LoginForm
		want Errors
	}{
		{
			name: "valid",
			form: LoginForm{Email: "ana@mail.com", Password: "1234567"},
		},
		{
			name: "empty",
			form: LoginForm{},
			want: Errors{"email": "auth.emailRequired", "password": "auth.passwordRequired"},
		},
		{
			name: "bad email and short password",
			form: LoginForm{Email: "ana@mail", Password: "123"},
			want: Errors{"email": "auth.emailInvalid", "password": "auth.passwordMinLength"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.form)
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			var got Errors
			require.ErrorAs(t, err, &got)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestValidate_RegisterMismatch(t *testing.T) {
	err := Validate(RegisterForm{
		Name:            "Ana",
		Email:           "ana@mail.com",
		Password:        "1234567",
		ConfirmPassword: "7654321",
	})

	var got Errors
	require.ErrorAs(t, err, &got)
	assert.Equal(t, Errors{"confirmPassword": "auth.passwordMismatchMessage"}, got)
}

func TestValidate_RecoveryCode(t *testing.T) {
	form := RecoveryResetForm{
		Email:           "ana@mail.com",
		Code:            "12a456",
		NewPassword:     "1234567",
		ConfirmPassword: "1234567",
	}

	var got Errors
	require.ErrorAs(t, Validate(form), &got)
	assert.Equal(t, "methodsForm.invalidValue", got["code"])

	form.Code = "123456"
	assert.NoError(t, Validate(form))
}

func TestValidate_Payment(t *testing.T) {
	valid := PaymentForm{
		San:                "san-1",
		Bank:               "bank-1",
		Amount:             50,
		OperationReference: "000123",
		Date:               "2024-05-01",
	}
	assert.NoError(t, Validate(valid))

	bad := valid
	bad.Amount = 0
	bad.OperationReference = "12-ab"
	bad.Date = "01/05/2024"

	var got Errors
	require.ErrorAs(t, Validate(bad), &got)
	assert.Equal(t, Errors{
		"amount":             "methodsForm.invalidValue",
		"operationReference": "methodsForm.invalidValue",
		"date":               "methodsForm.invalidValue",
	}, got)

	missing := valid
	missing.Bank = ""
	require.ErrorAs(t, Validate(missing), &got)
	assert.Equal(t, Errors{"bank": "methodsForm.requiredError"}, got)
}

func TestValidate_PaymentMethodConditional(t *testing.T) {
	transfer := PaymentMethodForm{
		Title:    "Nómina",
		Bank:     "bank-1",
		Method:   "transferencia",
		IDNumber: "12345678",
	}

	var got Errors
	require.ErrorAs(t, Validate(transfer), &got)
	assert.Equal(t, Errors{
		"accountNumber": "methodsForm.requiredError",
		"accountType":   "methodsForm.requiredError",
	}, got)

	transfer.AccountNumber = "01020304050607080910"
	transfer.AccountType = "corriente"
	assert.NoError(t, Validate(transfer))

	mobile := PaymentMethodForm{
		Title:    "Pago móvil",
		Bank:     "bank-1",
		Method:   "pago_movil",
		IDNumber: "12345678",
	}
	require.ErrorAs(t, Validate(mobile), &got)
	assert.Equal(t, Errors{"phoneNumber": "methodsForm.requiredError"}, got)

	mobile.PhoneNumber = "04141234567"
	assert.NoError(t, Validate(mobile))

	in := mobile.Input()
	assert.Equal(t, "pago_movil", string(in.Method))
	assert.Equal(t, "04141234567", in.PhoneNumber)
}

func TestErrors_Error(t *testing.T) {
	err := Errors{"b": "x", "a": "y"}
	assert.Equal(t, "validation failed: a: y, b: x", err.Error())
}
