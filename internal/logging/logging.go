// Package logging builds the logger shared by one installer run.
package logging

import (
	"io"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// New returns a logger writing text records to w. Every record carries
// the component name and a run id so the lines of one run can be grouped.
func New(w io.Writer, component string, verbose bool) *logrus.Entry {
	logger := logrus.New()
	logger.SetOutput(w)
	logger.SetFormatter(&logrus.TextFormatter{
		DisableTimestamp:       true,
		DisableLevelTruncation: true,
	})
	logger.SetLevel(logrus.InfoLevel)
	if verbose {
		logger.SetLevel(logrus.DebugLevel)
	}

	return logger.WithFields(logrus.Fields{
		"component": component,
		"run_id":    uuid.NewString(),
	})
}
