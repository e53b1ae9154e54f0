package relay

import "fmt"

// Command 알림 채널을 통해 워커에 전달되는 명령입니다.
// MessageCommand와 TerminateCommand 두 가지뿐입니다.
type Command interface {
	isCommand()
}

// MessageCommand 감시 대상 발신자의 활동 하나에 대한 알림 요청입니다.
type MessageCommand struct {
	SenderID int64

	// Timestamp 디스패처가 이벤트를 처리한 시각(Unix ms)입니다. 전달에 성공하면 ledger에 이 값이 기록됩니다.
	Timestamp int64

	Text string
}

// TerminateCommand 워커를 종료시킵니다. 이후의 명령은 처리되지 않습니다.
type TerminateCommand struct{}

func (MessageCommand) isCommand()   {}
func (TerminateCommand) isCommand() {}

func (c MessageCommand) String() string {
	return fmt.Sprintf("Message{sender=%d, ts=%d}", c.SenderID, c.Timestamp)
}
