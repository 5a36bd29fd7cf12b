package utils_test

import (
	"testing"

	"github.com/jrsteele09/dca-console/internal/utils"
	"github.com/stretchr/testify/require"
)

func TestStripPrefixes(t *testing.T) {
	require.Equal(t, "Binance", utils.StripPrefixes("Accounts::Binance", "Accounts::", "Account::"))
	require.Equal(t, "Binance", utils.StripPrefixes("Account::Binance", "Accounts::", "Account::"))
	require.Equal(t, "Binance", utils.StripPrefixes("Binance"))
}

func TestPtr(t *testing.T) {
	p := utils.Ptr(true)
	require.NotNil(t, p)
	require.True(t, *p)
}
