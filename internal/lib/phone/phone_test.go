package phone

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mwalimuclement/theory-access/internal/models"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name  string
		phone string
		want  bool
	}{
		{"national with leading zero", "0788123456", true},
		{"bare nine digits", "788123456", true},
		{"country code", "250788123456", true},
		{"country code with plus", "+250788123456", true},
		{"inner whitespace", "0788 123 456", true},
		{"airtel prefix", "0720123456", true},
		{"leading digit out of range", "0688123456", false},
		{"too short", "078812345", false},
		{"too long", "07881234567", false},
		{"letters", "07881234ab", false},
		{"empty", "", false},
		{"wrong country code", "+254788123456", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Validate(tt.phone))
		})
	}
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "788123456", Normalize("0788123456"))
	assert.Equal(t, "788123456", Normalize("+250 788 123 456"))
	assert.Equal(t, "788123456", Normalize("788123456"))
	assert.Equal(t, "", Normalize("not-a-phone"))
}

func TestCarrier(t *testing.T) {
	tests := []struct {
		phone  string
		method models.PaymentMethod
		known  bool
	}{
		{"0788123456", models.MethodMTN, true},
		{"0798123456", models.MethodMTN, true},
		{"+250722123456", models.MethodAirtel, true},
		{"0730123456", models.MethodAirtel, true},
		{"0750123456", "", false},
		{"garbage", "", false},
	}

	for _, tt := range tests {
		got, ok := Carrier(tt.phone)
		assert.Equal(t, tt.known, ok, tt.phone)
		assert.Equal(t, tt.method, got, tt.phone)
	}
}
