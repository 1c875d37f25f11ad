package speech

import (
	"io"

	"github.com/hammamikhairi/voxcart/internal/logger"
)

// testLog returns a silent logger for tests.
func testLog() *logger.Logger {
	return logger.New(logger.LevelOff, io.Discard)
}
