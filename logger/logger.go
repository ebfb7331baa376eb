package logger

import (
	"io"
	"os"
	"sync"

	"github.com/sirupsen/logrus"
)

const projectName = "stagehand"

var (
	projectLogger *logrus.Logger
	once          sync.Once
)

// GetProjectLogger returns the shared logger tagged with the project name.
func GetProjectLogger() *logrus.Entry {
	once.Do(func() {
		projectLogger = logrus.New()
		projectLogger.SetOutput(os.Stderr)
		projectLogger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
		projectLogger.SetLevel(logrus.InfoLevel)
	})
	return projectLogger.WithField("name", projectName)
}

// SetLevel parses a level name such as "debug" or "warn" and applies it to the project logger.
func SetLevel(level string) error {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return err
	}
	GetProjectLogger().Logger.SetLevel(lvl)
	return nil
}

// SetOutput redirects the project logger, e.g. to a file while the console owns the terminal.
func SetOutput(w io.Writer) {
	GetProjectLogger().Logger.SetOutput(w)
}
