package config

import (
	"github.com/MonkyMars/gecho"
)

var logger gecho.Logger

// InitializeLogger builds the process-wide logger used outside request scope
// (startup, shutdown, background sync).
func InitializeLogger() *gecho.Logger {
	logger = *gecho.NewDefaultLogger()
	return &logger
}

func GetLogger() *gecho.Logger {
	return &logger
}
