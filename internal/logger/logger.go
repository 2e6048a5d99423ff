package logger

import (
	"go.uber.org/zap"

	"github.com/frello-ai/backend/config"
)

// New builds the application logger for the given environment. Production
// gets sampled JSON output, everything else a human-readable console log.
func New(env config.Environment) (*zap.Logger, error) {
	if env == config.Production {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
