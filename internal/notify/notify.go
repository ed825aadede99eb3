// Package notify — сток пользовательских сообщений об успехе/ошибке.
// Fire-and-forget: ядро отправляет и не ждёт результата.
package notify

import (
	"fmt"

	"go.uber.org/zap"
)

// Sink принимает готовые сообщения для пользователя.
type Sink interface {
	Success(userID int64, message string)
	Failure(userID int64, message string)
}

// LogSink пишет сообщения в журнал. Подмена на SSE/почту — дело
// внешнего слоя, ядру достаточно контракта Sink.
type LogSink struct {
	logger *zap.SugaredLogger
}

// NewLogSink создаёт сток поверх журнала.
func NewLogSink(logger *zap.SugaredLogger) *LogSink {
	return &LogSink{logger: logger}
}

func (s *LogSink) Success(userID int64, message string) {
	s.logger.Infow("notify", "user_id", userID, "message", message)
}

func (s *LogSink) Failure(userID int64, message string) {
	s.logger.Warnw("notify", "user_id", userID, "message", message)
}

var _ Sink = (*LogSink)(nil)

// Шаблоны сообщений, согласованные с текстами интерфейса.

func FileCreated(name string) string { return fmt.Sprintf("%s was created", name) }

func FileDeleted(name string) string { return fmt.Sprintf("%s has been deleted", name) }

func FileUpdated(name string) string { return fmt.Sprintf("%s has been updated", name) }

func FileRenamed(name string) string { return fmt.Sprintf("File has been renamed to %s", name) }

func FileMoved(name, dest string) string { return fmt.Sprintf("%s was moved to %s", name, dest) }

func FileShared(name string) string { return fmt.Sprintf("%s is now shared", name) }

func FileUnshared(name string) string { return fmt.Sprintf("%s is now unshared", name) }

func MemberAdded(group string) string { return fmt.Sprintf("You have been added to %s", group) }
