package validation

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"payportal/internal/domain"
)

func TestStructRegisterMismatchedPasswords(t *testing.T) {
	err := Struct(domain.RegisterRequest{
		Name:            "Ada",
		Email:           "ada@example.com",
		Password:        "correct-horse",
		ConfirmPassword: "battery-staple",
	})

	require.Error(t, err)
	var ve *Error
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "confirm_password", ve.Field)
	assert.Equal(t, "passwords do not match", ve.Message)
}

func TestStructRequiredAndEmail(t *testing.T) {
	err := Struct(domain.LoginRequest{Email: "", Password: "pw"})
	require.Error(t, err)
	assert.Equal(t, "email: is required", err.Error())

	err = Struct(domain.LoginRequest{Email: "not-an-email", Password: "pw"})
	require.Error(t, err)
	assert.Equal(t, "email: must be a valid email address", err.Error())

	assert.NoError(t, Struct(domain.LoginRequest{Email: "good@x.com", Password: "pw"}))
}

func TestStructTransferRules(t *testing.T) {
	err := Struct(domain.TransferRequest{FromWalletID: "w1", ToWalletID: "w1", Amount: 5})
	require.Error(t, err)
	assert.Equal(t, "to_wallet_id: must differ from from_wallet_id", err.Error())

	err = Struct(domain.TransferRequest{FromWalletID: "w1", ToWalletID: "w2", Amount: 0})
	require.Error(t, err)
	assert.True(t, IsValidation(err))
	assert.Equal(t, "amount: must be greater than 0", err.Error())
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in      string
		want    float64
		wantErr string
	}{
		{in: "49.99", want: 49.99},
		{in: " 1,250.50 ", want: 1250.5},
		{in: "0.10", want: 0.1},
		{in: "100", want: 100},
		{in: "", wantErr: "amount: is required"},
		{in: "abc", wantErr: "amount: must be a number"},
		{in: "0", wantErr: "amount: must be greater than 0"},
		{in: "-5", wantErr: "amount: must be greater than 0"},
		{in: "1.999", wantErr: "amount: must have at most 2 decimal places"},
		{in: "1e400", wantErr: "amount: is too large"},
		{in: "1000000000.01", wantErr: "amount: is too large"},
		{in: "1000000000", want: 1e9},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseAmount(tt.in)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Equal(t, tt.wantErr, err.Error())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseAmountEncodesAsExactNumber(t *testing.T) {
	amount, err := ParseAmount("49.99")
	require.NoError(t, err)

	b, err := json.Marshal(map[string]float64{"amount": amount})
	require.NoError(t, err)
	assert.JSONEq(t, `{"amount": 49.99}`, string(b))
}
