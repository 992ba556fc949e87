// src/config/config_test.go
package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetLastInvoiceNumbers(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  map[int]int
	}{
		{"unset", "", map[int]int{}},
		{"single year", `{"2025": 263}`, map[int]int{2025: 263}},
		{"multiple years", `{"2024": 300, "2025": 263}`, map[int]int{2024: 300, 2025: 263}},
		{"invalid json ignored", `not json`, map[int]int{}},
		{"negative sequence skipped", `{"2025": -5, "2024": 10}`, map[int]int{2024: 10}},
		{"non-numeric year skipped", `{"veinticinco": 5, "2024": 10}`, map[int]int{2024: 10}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.value != "" {
				t.Setenv("LAST_INVOICE_NUMBERS", tt.value)
			}
			assert.Equal(t, tt.want, getLastInvoiceNumbers("LAST_INVOICE_NUMBERS"))
		})
	}
}

func TestGetEnv(t *testing.T) {
	t.Setenv("SOME_TEST_KEY", "valor")
	assert.Equal(t, "valor", getEnv("SOME_TEST_KEY", "fallback"))
	assert.Equal(t, "fallback", getEnv("SOME_TEST_KEY_UNSET", "fallback"))
}

func TestGetEnvAsList(t *testing.T) {
	t.Setenv("SOME_LIST_KEY", "http://localhost:3000, https://facturas.example.com ,")
	assert.Equal(t,
		[]string{"http://localhost:3000", "https://facturas.example.com"},
		getEnvAsList("SOME_LIST_KEY", ""))
	assert.Equal(t, []string{"a"}, getEnvAsList("SOME_LIST_KEY_UNSET", "a"))
}

func TestGetEnvAsDecimal(t *testing.T) {
	t.Setenv("SOME_DECIMAL_KEY", "0.21")
	assert.Equal(t, "0.21", getEnvAsDecimal("SOME_DECIMAL_KEY", "0").String())
	assert.Equal(t, "400", getEnvAsDecimal("SOME_DECIMAL_KEY_UNSET", "400.00").String())
}
