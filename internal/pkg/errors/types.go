package errors

//go:generate stringer -type=ErrorType

// ErrorType 에러의 성격을 분류합니다.
//
// 릴레이 프로세스에서는 주로 다음과 같이 사용됩니다.
//   - System, InvalidInput, Unauthorized: 기동 단계의 실패 (설정 파일, 세션 인증)
//   - Unavailable: 일시적인 외부 장애 (전송 API 5xx/429, 네트워크 오류, 종료된 알림 채널)
//   - ExecutionFailed, Forbidden, NotFound: 재시도해도 결과가 같은 전송 실패
type ErrorType int

const (
	// Unknown 분류되지 않은 에러
	Unknown ErrorType = iota

	// Internal 내부 로직 오류 (계약 위반, 복구된 panic 등)
	Internal

	// System 파일 시스템, 네트워크 등 실행 환경의 오류
	System

	// Unauthorized 인증 실패 (세션 로그인 실패, 잘못된 봇 토큰)
	Unauthorized

	// Forbidden 권한 없음 (봇이 차단되었거나 대화를 시작하지 않은 사용자)
	Forbidden

	// InvalidInput 잘못된 설정값 또는 요청
	InvalidInput

	// NotFound 대상 리소스를 찾을 수 없음
	NotFound

	// ExecutionFailed 외부 호출이 실패함
	ExecutionFailed

	// ParsingFailed 응답 데이터 해석 실패
	ParsingFailed

	// Timeout 작업 시간 초과
	Timeout

	// Unavailable 일시적으로 사용할 수 없음
	Unavailable
)
