package scheduler

import (
	"fmt"

	apperrors "github.com/darkkaiser/watch-relay/internal/pkg/errors"
)

var (
	// ErrStatsSourceNotInitialized 보고 대상(StatsSource)이 주어지지 않았을 때 반환됩니다.
	ErrStatsSourceNotInitialized = apperrors.New(apperrors.Internal, "StatsSource 객체가 초기화되지 않았습니다")
)

// NewErrInvalidCronSpec 보고 주기의 Cron 표현식이 올바르지 않을 때 반환하는 에러를 생성합니다.
func NewErrInvalidCronSpec(schedule string, cause error) error {
	return apperrors.Wrap(cause, apperrors.InvalidInput, fmt.Sprintf("스케줄 등록 실패: 잘못된 Cron 표현식입니다 (schedule='%s')", schedule))
}
