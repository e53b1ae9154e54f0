// Package log logrus 기반의 애플리케이션 공용 로거를 제공합니다.
//
// 패키지마다 고유한 component 이름을 정해 WithComponent로 Entry를 만들어 사용합니다.
//
//	applog.WithComponentAndFields("relay.worker", applog.Fields{"sender_id": id}).Info("알림 전송 완료")
package log

import (
	"io"

	"github.com/sirupsen/logrus"
)

// StandardLogger 전역 logrus 로거를 반환합니다.
func StandardLogger() *Logger {
	return logrus.StandardLogger()
}

// SetDebugMode debug가 true이면 Trace, 아니면 Info 레벨로 설정합니다.
func SetDebugMode(debug bool) {
	if debug {
		logrus.SetLevel(TraceLevel)
	} else {
		logrus.SetLevel(InfoLevel)
	}
}

// SetLevel 전역 로그 레벨을 변경합니다.
func SetLevel(level Level) {
	logrus.SetLevel(level)
}

// SetOutput 전역 로거의 출력 대상을 변경합니다. 주로 테스트에서 사용합니다.
func SetOutput(w io.Writer) {
	logrus.SetOutput(w)
}

// WithFields 필드가 포함된 Entry를 반환합니다.
func WithFields(fields Fields) *Entry {
	return logrus.WithFields(fields)
}

// WithComponent component 필드가 포함된 Entry를 반환합니다.
func WithComponent(component string) *Entry {
	return logrus.WithField("component", component)
}

// WithComponentAndFields component 필드와 추가 필드가 포함된 Entry를 반환합니다.
func WithComponentAndFields(component string, fields Fields) *Entry {
	return logrus.WithField("component", component).WithFields(fields)
}
