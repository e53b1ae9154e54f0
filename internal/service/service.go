// Package service 릴레이와 함께 실행되는 부가 서비스(상태 API, 통계 보고)의 공통 생명주기 인터페이스입니다.
package service

import (
	"context"
	"sync"
)

// Service serviceStopCtx가 취소될 때까지 실행되는 백그라운드 서비스입니다.
//
// Start는 즉시 반환하며, 호출 전에 serviceStopWG.Add(1)을 해야 합니다.
// 서비스는 종료가 끝나면(또는 Start가 에러를 반환하면) serviceStopWG.Done을 호출합니다.
type Service interface {
	Start(serviceStopCtx context.Context, serviceStopWG *sync.WaitGroup) error
}
