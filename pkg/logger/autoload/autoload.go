// Package autoload initializes the global zerolog logger from LOG_* env
// vars as an import side effect, so main can opt in with a blank import.
package autoload

import (
	configx "github.com/ace139/healthmate/pkg/config"
	logx "github.com/ace139/healthmate/pkg/logger"
)

func init() {
	conf, err := configx.New[logx.Config]("LOG")
	if err != nil {
		conf = logx.DefaultConfig
	}
	logx.Init(*conf)
}
