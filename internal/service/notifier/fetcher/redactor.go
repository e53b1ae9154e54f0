package fetcher

import (
	"net/http"
	"net/url"
	"regexp"
	"slices"
	"strings"
)

const redacted = "xxxxx"

var (
	// botTokenPath Bot API 경로(/bot{token}/method)의 토큰 부분입니다.
	botTokenPath = regexp.MustCompile(`/bot[0-9]+:[A-Za-z0-9_-]+`)

	// sensitiveExactKeys 대소문자 구분 없이 전체가 일치할 때만 마스킹하는 쿼리 키입니다.
	// "monkey"처럼 부분 일치로 오탐하지 않도록 접미사 목록과 나눠 둡니다.
	sensitiveExactKeys = []string{
		"token", "auth", "key", "secret", "pass", "password", "signature",
		"access_token", "api_key", "api_hash", "client_secret", "refresh_token",
	}

	sensitiveSuffixes = []string{"_token", "_secret", "_password", "_hash"}

	sensitiveHeaders = []string{"Authorization", "Proxy-Authorization", "Cookie", "Set-Cookie"}
)

// redactURL 사용자 정보, 봇 토큰 경로, 민감한 쿼리 값을 마스킹한 URL 문자열을 반환합니다.
// 원본 URL은 변경하지 않습니다.
//
//	https://api.telegram.org/bot123:ABC/sendMessage?token=t -> https://api.telegram.org/botxxxxx/sendMessage?token=xxxxx
func redactURL(u *url.URL) string {
	if u == nil {
		return ""
	}

	ru := *u

	if u.User != nil {
		if _, has := u.User.Password(); has {
			ru.User = url.UserPassword(u.User.Username(), redacted)
		} else if u.User.Username() != "" {
			ru.User = url.User(redacted)
		}
	}

	ru.Path = botTokenPath.ReplaceAllString(ru.Path, "/bot"+redacted)
	if ru.RawPath != "" {
		ru.RawPath = botTokenPath.ReplaceAllString(ru.RawPath, "/bot"+redacted)
	}

	if u.RawQuery != "" {
		query := ru.Query()
		for key := range query {
			if isSensitiveKey(key) {
				query.Set(key, redacted)
			}
		}
		ru.RawQuery = query.Encode()
	}

	return ru.String()
}

// redactHeaders 인증 관련 헤더 값을 마스킹한 복사본을 반환합니다.
func redactHeaders(h http.Header) http.Header {
	if h == nil {
		return nil
	}

	masked := h.Clone()
	for _, key := range sensitiveHeaders {
		if masked.Get(key) != "" {
			masked.Set(key, "***")
		}
	}
	return masked
}

func isSensitiveKey(key string) bool {
	lowerKey := strings.ToLower(key)

	if slices.Contains(sensitiveExactKeys, lowerKey) {
		return true
	}
	for _, suffix := range sensitiveSuffixes {
		if strings.HasSuffix(lowerKey, suffix) {
			return true
		}
	}
	return false
}
