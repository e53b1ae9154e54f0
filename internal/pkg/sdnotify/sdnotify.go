// Package sdnotify systemd 서비스 관리자에게 프로세스 상태(READY, STOPPING, STATUS)를 알립니다.
//
// NOTIFY_SOCKET 환경변수가 없는 환경(개발 PC, 컨테이너 등)에서는 모든 호출이 아무 일도 하지 않습니다.
package sdnotify

import (
	"github.com/coreos/go-systemd/v22/daemon"
	applog "github.com/darkkaiser/watch-relay/pkg/log"
)

const component = "sdnotify"

// Notifier sd_notify 메시지를 전송합니다. nil 이어도 안전하게 호출할 수 있습니다.
type Notifier struct {
	send func(state string) (bool, error)
}

// New 실제 NOTIFY_SOCKET으로 전송하는 Notifier를 생성합니다.
func New() *Notifier {
	return &Notifier{
		send: func(state string) (bool, error) {
			return daemon.SdNotify(false, state)
		},
	}
}

// Ready 서비스 준비 완료를 알립니다.
func (n *Notifier) Ready() {
	n.notify(daemon.SdNotifyReady)
}

// Stopping 종료 절차 시작을 알립니다.
func (n *Notifier) Stopping() {
	n.notify(daemon.SdNotifyStopping)
}

// Status systemctl status에 표시될 한 줄 상태 문구를 갱신합니다.
func (n *Notifier) Status(text string) {
	n.notify("STATUS=" + text)
}

func (n *Notifier) notify(state string) {
	if n == nil || n.send == nil {
		return
	}

	sent, err := n.send(state)
	if err != nil {
		applog.WithComponentAndFields(component, applog.Fields{
			"state": state,
			"error": err,
		}).Warn("systemd 상태 알림 전송 실패")
		return
	}

	if sent {
		applog.WithComponentAndFields(component, applog.Fields{
			"state": state,
		}).Debug("systemd 상태 알림 전송")
	}
}
