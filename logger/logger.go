package logger

import (
	"io"
	"sync"

	"github.com/sirupsen/logrus"
)

const projectName = "beatkeeper"

var (
	projectLogger *logrus.Entry
	once          sync.Once
)

// GetProjectLogger returns the shared logger used by every package in the project.
func GetProjectLogger() *logrus.Entry {
	once.Do(func() {
		l := logrus.New()
		l.SetLevel(logrus.InfoLevel)
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
		projectLogger = l.WithField("name", projectName)
	})
	return projectLogger
}

// SetLevel changes the level of the project logger.
func SetLevel(level logrus.Level) {
	GetProjectLogger().Logger.SetLevel(level)
}

// SetOutput redirects the project logger. The TUI owns the terminal, so logs go to a file while it runs.
func SetOutput(w io.Writer) {
	GetProjectLogger().Logger.SetOutput(w)
}
