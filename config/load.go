package config

import (
	"lender/core"

	"github.com/asaskevich/govalidator"
	configUtil "github.com/fox-one/pkg/config"
)

// Load load config file, LENDER_* environment variables override it
func Load(configFile string, config *core.Config) error {
	configUtil.AutomaticLoadEnv("LENDER")
	if err := configUtil.LoadYaml(configFile, config); err != nil {
		return err
	}

	defaults(config)

	if _, err := govalidator.ValidateStruct(config); err != nil {
		return err
	}

	return nil
}

func defaults(cfg *core.Config) {
	if cfg.App.SecondsPerBlock <= 0 {
		cfg.App.SecondsPerBlock = 15
	}

	if cfg.App.Location == "" {
		cfg.App.Location = "Local"
	}
}
