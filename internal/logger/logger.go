package logger

import (
	"go.uber.org/zap"
)

var Log *zap.Logger

func InitLogger() {
	var err error
	Log, err = zap.NewDevelopment()
	if err != nil {
		panic("Failed to init logger: " + err.Error())
	}
}

// InitTestLogger installs a no-op logger for package tests.
func InitTestLogger() {
	Log = zap.NewNop()
}

func SyncLogger() {
	_ = Log.Sync()
}
