// Package testutil 여러 패키지의 테스트에서 함께 쓰는 도우미입니다.
package testutil

import (
	"fmt"
	"net"
	"time"
)

// FreeListenAddress 루프백에서 사용 가능한 "127.0.0.1:포트" 주소를 반환합니다.
func FreeListenAddress() (string, error) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return "", err
	}
	defer l.Close()

	return l.Addr().String(), nil
}

// WaitForServer addr에서 연결을 받을 때까지 대기합니다.
func WaitForServer(addr string, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		conn, err := net.DialTimeout("tcp", addr, 100*time.Millisecond)
		if err == nil {
			conn.Close()
			return nil
		}
		time.Sleep(10 * time.Millisecond)
	}
	return fmt.Errorf("%s 주소의 서버가 %v 안에 시작되지 않았습니다", addr, timeout)
}
