package textutil

import (
	"net/url"
	"regexp"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
)

var whitespaceRe = regexp.MustCompile(`\s+`)

// 省略号标记，按顺序剥离
var ellipsisMarkers = []string{"...", "…"}

// CollapseWhitespace 将连续空白折叠为单个空格并去除首尾空白
func CollapseWhitespace(s string) string {
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(s, " "))
}

// CleanSnippet 清理搜索结果摘要
// 先剥离省略号再折叠空白，保证不会残留连续空格
func CleanSnippet(snippet string) string {
	if snippet == "" {
		return ""
	}
	for _, marker := range ellipsisMarkers {
		snippet = strings.ReplaceAll(snippet, marker, "")
	}
	return CollapseWhitespace(snippet)
}

// TruncateText 按字符数截断文本，在最后一个空格处断开并追加 "..."
func TruncateText(text string, maxLength int) string {
	if text == "" {
		return ""
	}
	runes := []rune(text)
	if len(runes) <= maxLength {
		return text
	}
	if maxLength < 0 {
		maxLength = 0
	}

	head := string(runes[:maxLength])
	if i := strings.LastIndex(head, " "); i >= 0 {
		head = head[:i]
	}
	return head + "..."
}

// ExtractDomain 从 URL 中提取主机部分（含端口）
func ExtractDomain(rawURL string) (string, bool) {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Host == "" {
		return "", false
	}
	return parsed.Host, true
}

// CleanHTML 去除 script/style 后提取纯文本
func CleanHTML(html string) string {
	if strings.TrimSpace(html) == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return CollapseWhitespace(html)
	}
	doc.Find("script, style").Remove()
	return CollapseWhitespace(doc.Text())
}

// IsBlank 判断字符串是否只包含空白字符
func IsBlank(s string) bool {
	return strings.IndexFunc(s, func(r rune) bool { return !unicode.IsSpace(r) }) < 0
}
