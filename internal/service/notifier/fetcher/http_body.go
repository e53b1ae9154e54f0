package fetcher

import (
	"io"
	"sync"
)

// maxDrainBytes 커넥션 재사용을 위해 비우는 응답 본문의 최대 크기입니다. 이를 넘는 커넥션은 재사용되지 않습니다.
const maxDrainBytes = 64 * 1024

var drainBufPool = sync.Pool{
	New: func() any {
		b := make([]byte, 32*1024)
		return &b
	},
}

// drainAndCloseBody 응답 본문을 최대 maxDrainBytes까지 읽어 버리고 닫습니다.
func drainAndCloseBody(body io.ReadCloser) {
	if body == nil {
		return
	}
	defer body.Close()

	bufPtr := drainBufPool.Get().(*[]byte)
	defer drainBufPool.Put(bufPtr)

	_, _ = io.CopyBuffer(io.Discard, io.LimitReader(body, maxDrainBytes), *bufPtr)
}

// DrainAndClose 성공 응답을 다 사용한 호출자가 본문을 정리할 때 사용합니다.
func DrainAndClose(body io.ReadCloser) {
	drainAndCloseBody(body)
}
