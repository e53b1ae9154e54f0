package relay

import (
	apperrors "github.com/darkkaiser/watch-relay/internal/pkg/errors"
)

const component = "relay"

var (
	// ErrChannelClosed 워커가 종료되어 알림 채널의 수신 측이 닫혔을 때 Send가 반환합니다.
	ErrChannelClosed = apperrors.New(apperrors.Unavailable, "알림 워커가 종료되어 더 이상 명령을 받을 수 없습니다")

	// ErrAborted 종료 절차 중 두 번째 종료 신호를 받아 강제 종료되었을 때 Coordinator.Run이 반환합니다.
	ErrAborted = apperrors.New(apperrors.Internal, "종료 대기 중 두 번째 종료 신호를 받아 강제 종료되었습니다")
)
