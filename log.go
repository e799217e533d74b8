package main

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/sirupsen/logrus"
)

type Formatter struct{}

func (f *Formatter) Format(entry *logrus.Entry) ([]byte, error) {
	var prefix string
	switch entry.Level {
	case logrus.PanicLevel, logrus.FatalLevel:
		prefix = "FATAL"
	case logrus.ErrorLevel:
		prefix = "ERROR"
	case logrus.WarnLevel:
		prefix = "WARN"
	case logrus.InfoLevel:
		prefix = "INFO"
	default:
		prefix = "DEBUG"
	}

	var b bytes.Buffer
	fmt.Fprintf(&b, "%s %s", prefix, entry.Message)

	keys := make([]string, 0, len(entry.Data))
	for k := range entry.Data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, " %s=%v", k, entry.Data[k])
	}

	b.WriteByte('\n')
	return b.Bytes(), nil
}
