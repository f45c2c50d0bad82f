package utils

import (
	"encoding/json"
	"io"
	"log"
	"os"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"
)

// LogOutput describes where application logs go
type LogOutput struct {
	Output     string // stdout, file, both
	FilePath   string
	MaxSize    int // MB
	MaxBackups int
	MaxAge     int // days
	Compress   bool
}

// SetupLogging points the standard logger at stdout and/or a rotating file.
// The returned closer flushes the rotating file, if any.
func SetupLogging(out LogOutput) io.Closer {
	log.SetFlags(0)

	if out.Output == "stdout" || out.Output == "" || out.FilePath == "" {
		log.SetOutput(os.Stdout)
		return io.NopCloser(nil)
	}

	rotator := &lumberjack.Logger{
		Filename:   out.FilePath,
		MaxSize:    out.MaxSize,
		MaxBackups: out.MaxBackups,
		MaxAge:     out.MaxAge,
		Compress:   out.Compress,
	}

	if out.Output == "both" {
		log.SetOutput(io.MultiWriter(os.Stdout, rotator))
	} else {
		log.SetOutput(rotator)
	}
	return rotator
}

// LogKV logs a structured JSON line with a level, message, and arbitrary fields.
func LogKV(level, msg string, fields map[string]any) {
	entry := map[string]any{
		"level": level,
		"ts":    time.Now().UTC().Format(time.RFC3339Nano),
		"msg":   msg,
	}
	for k, v := range fields {
		entry[k] = v
	}
	b, err := json.Marshal(entry)
	if err != nil {
		log.Printf(`{"level":"error","msg":"log marshal failed","error":%q}`, err.Error())
		return
	}
	log.Println(string(b))
}
