package notifier

import (
	"bytes"
	"io"
	"mime"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html/charset"
)

// maxDescriptionLength HTML 오류 페이지에서 추출한 설명의 최대 길이(rune)입니다.
const maxDescriptionLength = 200

// toUTF8 Content-Type의 charset(없으면 본문 내용으로 추정)에 따라 본문을 UTF-8로 변환합니다.
// 변환할 수 없으면 원본을 그대로 반환합니다.
func toUTF8(body []byte, contentType string) []byte {
	if len(body) == 0 {
		return body
	}

	r, err := charset.NewReader(bytes.NewReader(body), contentType)
	if err != nil {
		return body
	}
	decoded, err := io.ReadAll(r)
	if err != nil {
		return body
	}
	return decoded
}

func isHTML(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mediaType == "text/html" || mediaType == "application/xhtml+xml"
}

// describeHTML 프록시나 게이트웨이가 돌려준 HTML 오류 페이지에서 사람이 읽을 수 있는 설명을 추출합니다.
// <title>, 첫 번째 <h1> 순으로 찾고, 없으면 빈 문자열입니다.
func describeHTML(body []byte) string {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return ""
	}

	for _, selector := range []string{"title", "h1"} {
		if text := normalizeSpace(doc.Find(selector).First().Text()); text != "" {
			return truncate(text, maxDescriptionLength)
		}
	}
	return ""
}

func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}
