// Package cronx 애플리케이션 전역에서 공유하는 Cron 표현식 파서와 검증 함수를 제공합니다.
package cronx

import "github.com/robfig/cron/v3"

// StandardParser 초 단위를 포함하는 6필드 Cron 파서를 반환합니다.
//
// 필드 순서는 [초] [분] [시] [일] [월] [요일]이며, @hourly, @every 1m 같은 Descriptor도 허용합니다.
// 5필드 표준 형식은 허용하지 않습니다.
//
//	"0 0 * * * *"   매시 정각
//	"*/30 * * * * *" 30초마다
func StandardParser() cron.Parser {
	return cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
}
