// Package middleware 상태 API용 Echo 미들웨어입니다.
//
//   - PanicRecovery: 핸들러 panic 복구 및 스택 로깅
//   - HTTPLogger: 요청/응답 구조화 로깅
//   - Logger: Echo 내부 로그를 애플리케이션 로거로 연결하는 어댑터
package middleware
