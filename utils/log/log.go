package log

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// std : 애플리케이션 전역 로거
var std = newLogger(os.Stdout)

func newLogger(out io.Writer) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(out)
	l.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
	l.SetLevel(logrus.InfoLevel)
	return l
}

type Fields = logrus.Fields

// SetLevel : "debug", "info", "warn", "error" 등. 알 수 없는 값이면 info 유지
func SetLevel(level string) error {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return err
	}
	std.SetLevel(lvl)
	return nil
}

// SetOutput : 테스트에서 출력 버퍼를 바꿀 때 사용
func SetOutput(out io.Writer) {
	std.SetOutput(out)
}

func WithFields(fields Fields) *logrus.Entry {
	return std.WithFields(fields)
}

func Debugf(format string, args ...interface{}) { std.Debugf(format, args...) }
func Info(args ...interface{})                  { std.Info(args...) }
func Infof(format string, args ...interface{})  { std.Infof(format, args...) }
func Warn(args ...interface{})                  { std.Warn(args...) }
func Warnf(format string, args ...interface{})  { std.Warnf(format, args...) }
func Error(args ...interface{})                 { std.Error(args...) }
func Errorf(format string, args ...interface{}) { std.Errorf(format, args...) }
func Fatal(args ...interface{})                 { std.Fatal(args...) }
func Fatalf(format string, args ...interface{}) { std.Fatalf(format, args...) }
