package mtproto

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	apperrors "github.com/darkkaiser/watch-relay/internal/pkg/errors"
	"github.com/gotd/td/telegram/auth"
	"github.com/gotd/td/tg"
)

// TerminalAuthenticator 터미널에서 전화번호, 인증 코드, 2단계 비밀번호를 입력받습니다.
//
// 세션 파일이 유효하면 호출되지 않습니다. 신규 가입은 지원하지 않습니다.
type TerminalAuthenticator struct {
	// PhoneNumber 지정하면 전화번호를 묻지 않습니다.
	PhoneNumber string

	mu  sync.Mutex
	in  *bufio.Reader
	out io.Writer
}

var _ auth.UserAuthenticator = (*TerminalAuthenticator)(nil)

func NewTerminalAuthenticator(in io.Reader, out io.Writer, phone string) *TerminalAuthenticator {
	return &TerminalAuthenticator{
		PhoneNumber: phone,
		in:          bufio.NewReader(in),
		out:         out,
	}
}

func (a *TerminalAuthenticator) Phone(ctx context.Context) (string, error) {
	if a.PhoneNumber != "" {
		return a.PhoneNumber, nil
	}
	return a.prompt(ctx, "전화번호(국가 코드 포함, 예: +821012345678): ")
}

func (a *TerminalAuthenticator) Code(ctx context.Context, _ *tg.AuthSentCode) (string, error) {
	return a.prompt(ctx, "Telegram으로 받은 인증 코드: ")
}

func (a *TerminalAuthenticator) Password(ctx context.Context) (string, error) {
	return a.prompt(ctx, "2단계 인증 비밀번호: ")
}

// AcceptTermsOfService 신규 가입 과정에서만 호출되므로 항상 실패합니다.
func (a *TerminalAuthenticator) AcceptTermsOfService(_ context.Context, tos tg.HelpTermsOfService) error {
	return apperrors.Newf(apperrors.Unauthorized, "이용 약관 동의가 필요한 계정입니다: %s", tos.Text)
}

func (a *TerminalAuthenticator) SignUp(context.Context) (auth.UserInfo, error) {
	return auth.UserInfo{}, apperrors.New(apperrors.Unauthorized, "등록되지 않은 전화번호입니다. 신규 가입은 지원하지 않습니다")
}

func (a *TerminalAuthenticator) prompt(ctx context.Context, label string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if _, err := fmt.Fprint(a.out, label); err != nil {
		return "", apperrors.Wrap(err, apperrors.System, "입력 안내를 출력할 수 없습니다")
	}

	line, err := a.in.ReadString('\n')
	line = strings.TrimSpace(line)
	if err != nil && (err != io.EOF || line == "") {
		return "", apperrors.Wrap(err, apperrors.System, "터미널 입력을 읽을 수 없습니다")
	}
	if line == "" {
		return "", apperrors.New(apperrors.InvalidInput, "입력 값이 비어 있습니다")
	}
	return line, nil
}
