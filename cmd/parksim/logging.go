package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	logFileName = "parksim.log"
	maxLogSize  = 10 << 20 // Rotate past 10MB
)

var logDir = "logs"

// setupLogging routes logrus and the std logger to a rotated file when debug is set, otherwise discards output
// Terminal output stays clean for the viewer in both cases
func setupLogging(debug bool) *os.File {
	logrus.SetFormatter(&logrus.TextFormatter{DisableColors: true, FullTimestamp: true})

	if !debug {
		log.SetOutput(io.Discard)
		logrus.SetOutput(io.Discard)
		logrus.SetLevel(logrus.WarnLevel)
		return nil
	}

	if err := os.MkdirAll(logDir, 0755); err != nil {
		fmt.Fprintf(os.Stderr, "create log dir: %v\n", err)
		log.SetOutput(io.Discard)
		logrus.SetOutput(io.Discard)
		return nil
	}

	logPath := filepath.Join(logDir, logFileName)
	if info, err := os.Stat(logPath); err == nil && info.Size() > maxLogSize {
		rotated := filepath.Join(logDir, fmt.Sprintf("parksim_%s.log", time.Now().Format("20060102_150405")))
		if err := os.Rename(logPath, rotated); err != nil {
			fmt.Fprintf(os.Stderr, "rotate log: %v\n", err)
		}
	}

	f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open log: %v\n", err)
		log.SetOutput(io.Discard)
		logrus.SetOutput(io.Discard)
		return nil
	}

	log.SetOutput(f)
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)
	logrus.SetOutput(f)
	logrus.SetLevel(logrus.DebugLevel)
	return f
}
