package api

import (
	apperrors "github.com/darkkaiser/watch-relay/internal/pkg/errors"
)

const component = "api.service"

var (
	// ErrStatusProviderRequired 상태 조회 대상(Coordinator)이 주어지지 않았을 때 반환됩니다.
	ErrStatusProviderRequired = apperrors.New(apperrors.Internal, "상태 조회 대상이 초기화되지 않았습니다")

	// ErrListenAddressRequired 상태 API가 활성화되었지만 수신 주소가 비어 있을 때 반환됩니다.
	ErrListenAddressRequired = apperrors.New(apperrors.InvalidInput, "상태 API 수신 주소가 설정되지 않았습니다")
)
