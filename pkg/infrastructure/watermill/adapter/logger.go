package adapter

import (
	"context"

	"github.com/ThreeDotsLabs/watermill"

	"github.com/mateusmacedo/go-schedule/pkg/application"
)

const loggerComponent = "watermill"

// queueLogger encaminha os logs dos publishers e subscribers para o AppLogger,
// marcando cada entrada com o componente de origem.
type queueLogger struct {
	appLogger application.AppLogger
	fields    watermill.LogFields
}

// NewWatermillLoggerAdapter direciona os logs do watermill para o AppLogger.
func NewWatermillLoggerAdapter(appLogger application.AppLogger) watermill.LoggerAdapter {
	return &queueLogger{
		appLogger: appLogger,
		fields:    watermill.LogFields{"component": loggerComponent},
	}
}

func (l *queueLogger) Error(msg string, err error, fields watermill.LogFields) {
	application.LogError(context.Background(), l.appLogger, msg, err, l.merge(fields))
}

func (l *queueLogger) Info(msg string, fields watermill.LogFields) {
	l.appLogger.Info(context.Background(), msg, l.merge(fields))
}

func (l *queueLogger) Debug(msg string, fields watermill.LogFields) {
	l.appLogger.Debug(context.Background(), msg, l.merge(fields))
}

// Trace do watermill é emitido a cada mensagem; fica no nível trace do AppLogger.
func (l *queueLogger) Trace(msg string, fields watermill.LogFields) {
	l.appLogger.Trace(context.Background(), msg, l.merge(fields))
}

func (l *queueLogger) With(fields watermill.LogFields) watermill.LoggerAdapter {
	return &queueLogger{appLogger: l.appLogger, fields: l.merge(fields)}
}

func (l *queueLogger) merge(fields watermill.LogFields) watermill.LogFields {
	merged := make(watermill.LogFields, len(l.fields)+len(fields))
	for k, v := range l.fields {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}
	return merged
}
