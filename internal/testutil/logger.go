package testutil

import (
	"io"

	"github.com/meshvault/meshvault-server/internal/logger"
)

func MakeNoopLogger() *logger.Logger {
	return logger.NewWithWriter(0, io.Discard)
}
