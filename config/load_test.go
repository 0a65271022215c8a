package config

import (
	"os"
	"path/filepath"
	"testing"

	"lender/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `
app:
  admin: admin
  genesis: 1600000000
  reward_asset: gov
markets:
  - id: cUSDC
    asset_id: usdc
    collateral_factor: "0.75"
    rate_model:
      base_rate: "0.02"
      multiplier: "0.2"
`

func TestLoad(t *testing.T) {
	file := filepath.Join(t.TempDir(), "lender.yaml")
	require.Nil(t, os.WriteFile(file, []byte(sample), 0o600))

	var cfg core.Config
	require.Nil(t, Load(file, &cfg))
	assert.Equal(t, "admin", cfg.App.Admin)
	assert.Equal(t, int64(15), cfg.App.SecondsPerBlock)
	assert.Equal(t, "Local", cfg.App.Location)
	require.Len(t, cfg.Markets, 1)
	assert.Equal(t, "0.75", cfg.Markets[0].CollateralFactor)
	assert.Equal(t, "0.2", cfg.Markets[0].RateModel.Multiplier)
}

func TestLoadRequiresAdmin(t *testing.T) {
	file := filepath.Join(t.TempDir(), "lender.yaml")
	require.Nil(t, os.WriteFile(file, []byte("app:\n  genesis: 1\n"), 0o600))

	var cfg core.Config
	assert.NotNil(t, Load(file, &cfg))
}
