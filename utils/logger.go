package utils

import (
	"fmt"
	"time"
)

// ANSI colour codes for terminal output
const (
	reset  = "\033[0m"
	red    = "\033[31m"
	green  = "\033[32m"
	yellow = "\033[33m"
	blue   = "\033[34m"
)

func ts() string {
	return time.Now().Format("15:04:05")
}

func logf(colour, tag, format string, a ...any) {
	fmt.Printf("%s%s [%-5s] %s%s\n", colour, ts(), tag, fmt.Sprintf(format, a...), reset)
}

func Info(format string, a ...any) {
	logf(blue, "INFO", format, a...)
}

func Success(format string, a ...any) {
	logf(green, "OK", format, a...)
}

func Warn(format string, a ...any) {
	logf(yellow, "WARN", format, a...)
}

func Error(format string, a ...any) {
	logf(red, "ERROR", format, a...)
}
