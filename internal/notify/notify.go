package notify

import (
	"github.com/sirupsen/logrus"
)

// Notifier is a one-way sink for user-facing error messages
type Notifier interface {
	Error(message string)
}

// LogNotifier writes messages to the log at error level
type LogNotifier struct {
	log logrus.FieldLogger
}

func NewLogNotifier(log logrus.FieldLogger) *LogNotifier {
	return &LogNotifier{log: log}
}

func (n *LogNotifier) Error(message string) {
	n.log.WithField("notification", true).Error(message)
}

type multi []Notifier

// Multi fans each message out to every non-nil notifier
func Multi(notifiers ...Notifier) Notifier {
	var m multi
	for _, n := range notifiers {
		if n != nil {
			m = append(m, n)
		}
	}
	return m
}

func (m multi) Error(message string) {
	for _, n := range m {
		n.Error(message)
	}
}
