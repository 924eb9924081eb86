/*
* Copyright (c) 2025 FABRICATORS S.R.L.
* Licensed under the Fabricators Public Access License (FPAL) v1.0
* See https://github.com/fabricatorsltd/FPAL for details.
 */
package logger

import (
	"os"

	"github.com/sirupsen/logrus"
)

var log = logrus.New()

func init() {
	log.SetOutput(os.Stderr)
	log.SetFormatter(&logrus.TextFormatter{
		DisableTimestamp:       true,
		DisableLevelTruncation: true,
	})
}

// SetVerbose enables debug-level output.
func SetVerbose(verbose bool) {
	if verbose {
		log.SetLevel(logrus.DebugLevel)
	} else {
		log.SetLevel(logrus.InfoLevel)
	}
}

// Println logs a message at info level.
func Println(args ...interface{}) {
	log.Infoln(args...)
}

// Printf logs a formatted message at info level.
func Printf(format string, args ...interface{}) {
	log.Infof(format, args...)
}

// Debugf logs a formatted message at debug level; silent unless
// SetVerbose(true) has been called.
func Debugf(format string, args ...interface{}) {
	log.Debugf(format, args...)
}

// Errorf logs a formatted message at error level.
func Errorf(format string, args ...interface{}) {
	log.Errorf(format, args...)
}
