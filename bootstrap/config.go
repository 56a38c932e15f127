package bootstrap

import (
	"github.com/kbukum/linguacast/config"
)

// Config is what NewApp needs from an application config: the embedded
// service section plus defaults and validation for the rest.
type Config interface {
	GetServiceConfig() *config.ServiceConfig
	ApplyDefaults()
	Validate() error
}
