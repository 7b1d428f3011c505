package testutil

import (
	"io"

	"github.com/sirupsen/logrus"
)

func MakeNoopLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}
