package log

import (
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// silentFormatter 아무런 동작도 하지 않는 포맷터입니다.
// 루트 로거의 출력은 io.Discard로 버려지지만 logrus는 포맷팅을 먼저 수행하므로, 그 비용을 없애기 위해 사용합니다.
// 실제 포맷팅은 hook에서 한 번만 수행됩니다.
type silentFormatter struct{}

func (f *silentFormatter) Format(_ *logrus.Entry) ([]byte, error) {
	return nil, nil
}

// newTextFormatter hook에서 파일/콘솔 출력에 사용할 TextFormatter를 생성합니다.
//
// 호출자 함수명이 prefix로 시작하면 해당 부분을 "..."으로 축약합니다.
// 예: "github.com/darkkaiser/watch-relay/internal/service/relay.(*Worker).handle" -> ".../watch-relay/internal/..."
func newTextFormatter(prefix string) *logrus.TextFormatter {
	return &logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339,
		CallerPrettyfier: func(frame *runtime.Frame) (function string, file string) {
			function = frame.Function + "(line:" + strconv.Itoa(frame.Line) + ")"
			if prefix != "" {
				if cut, found := strings.CutPrefix(function, prefix); found {
					function = "..." + cut
				}
			}
			return
		},
	}
}
