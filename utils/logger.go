package utils

import (
	"os"

	"go.uber.org/zap"
)

var Log *zap.Logger

// InitLogger sets up the global structured logger. Production builds log
// JSON; everything else uses the human-readable development encoder.
func InitLogger() {
	var err error
	if os.Getenv("APP_ENV") == "production" {
		Log, err = zap.NewProduction()
	} else {
		Log, err = zap.NewDevelopment()
	}
	if err != nil {
		panic(err)
	}
	zap.ReplaceGlobals(Log)
}
