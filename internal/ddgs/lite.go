package ddgs

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// textLite 使用 lite.duckduckgo.com 搜索，只取第一页
func (c *Client) textLite(ctx context.Context, keywords, region string, maxResults int) ([]map[string]string, error) {
	body, err := c.get(ctx, c.liteURL, map[string]string{
		"q":  keywords,
		"kl": region,
	})
	if err != nil {
		return nil, fmt.Errorf("lite backend: %w", err)
	}

	items, err := parseLitePage(body)
	if err != nil {
		return nil, fmt.Errorf("lite backend: %w", err)
	}
	if maxResults > 0 && len(items) > maxResults {
		items = items[:maxResults]
	}
	return items, nil
}

// parseLitePage 解析 lite 版表格布局，摘要位于标题所在行之后
func parseLitePage(body []byte) ([]map[string]string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse HTML failed: %w", err)
	}

	var items []map[string]string
	doc.Find("a.result-link").Each(func(i int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		href = unwrapRedirect(href)
		title := strings.TrimSpace(a.Text())
		if href == "" || title == "" {
			return
		}

		snippet := a.Closest("tr").NextAllFiltered("tr").Find("td.result-snippet").First()
		items = append(items, item(title, href, strings.TrimSpace(snippet.Text())))
	})

	return items, nil
}
