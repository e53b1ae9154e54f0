package relay

import (
	"fmt"
	"strings"
)

// linkTextReplacer 링크 텍스트를 끝내는 ']'만 모양이 같은 전각 문자로 바꿉니다.
// legacy Markdown은 엔티티 안의 '\' 이스케이프를 해석하지 않으므로 나머지 문자는 그대로 둡니다.
var linkTextReplacer = strings.NewReplacer(`]`, `］`)

// Render 알림으로 전송할 Markdown 문구를 생성합니다.
//
//	[홍길동](tg://user?id=111) send a [photo](https://t.me/c/1234567890/42) message
//
// u.Sender는 nil이 아니어야 합니다.
func Render(u Update) string {
	return fmt.Sprintf("[%s](tg://user?id=%d) send a [%s](https://t.me/c/%d/%d) message",
		linkText(u.Sender.Name), u.Sender.ID, u.Media.Tag(), u.ChatID, u.MessageID)
}

func linkText(s string) string {
	return linkTextReplacer.Replace(s)
}
