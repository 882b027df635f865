package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"
)

var (
	errorLogger *log.Logger
	debugLogger *log.Logger
	// debugPacketDumpLen limits how many bytes of a message payload are
	// logged. A value of 0 dumps the entire payload.
	debugPacketDumpLen = 256
)

// openLog tees stderr into logs/replay/<kind>-<timestamp>.log. When the
// file cannot be created only stderr is used.
func openLog(kind string) io.Writer {
	dir := filepath.Join(baseDir, "logs", "replay")
	if err := os.MkdirAll(dir, 0755); err != nil {
		fmt.Fprintf(os.Stderr, "could not create log directory: %v\n", err)
		return os.Stderr
	}
	name := fmt.Sprintf("%s-%s.log", kind, time.Now().Format("20060102-150405"))
	f, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		fmt.Fprintf(os.Stderr, "could not create %s log: %v\n", kind, err)
		return os.Stderr
	}
	return io.MultiWriter(os.Stderr, f)
}

func setupLogging(debug bool) {
	w := openLog("error")
	errorLogger = log.New(w, "", log.LstdFlags)
	log.SetOutput(w)
	setDebugLogging(debug)
}

func setDebugLogging(enabled bool) {
	if !enabled {
		debugLogger = nil
		return
	}
	debugLogger = log.New(openLog("debug"), "", log.LstdFlags)
}

func logError(format string, v ...interface{}) {
	if errorLogger != nil {
		errorLogger.Printf(format, v...)
	}
}

func logDebug(format string, v ...interface{}) {
	if debugLogger != nil {
		debugLogger.Printf(format, v...)
	}
}

func logDebugPacket(prefix string, data []byte) {
	if debugLogger == nil {
		return
	}
	dump := data
	if debugPacketDumpLen > 0 && len(data) > debugPacketDumpLen {
		dump = data[:debugPacketDumpLen]
	}
	debugLogger.Printf("%s len=%d payload=% x", prefix, len(data), dump)
}

// fileLogger is handed to the map session replaying path. Its lines name
// the file so warnings from concurrent replays can be told apart.
func fileLogger(path string) *log.Logger {
	var w io.Writer = os.Stderr
	if errorLogger != nil {
		w = errorLogger.Writer()
	}
	return log.New(w, filepath.Base(path)+": ", log.LstdFlags|log.Lmsgprefix)
}
