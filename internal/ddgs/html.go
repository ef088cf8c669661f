package ddgs

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog/log"
)

// textHTML 使用 html.duckduckgo.com 搜索，按偏移量翻页
func (c *Client) textHTML(ctx context.Context, keywords, region string, maxResults int) ([]map[string]string, error) {
	var items []map[string]string
	seen := make(map[string]bool)
	offset := 0

	for page := 0; page < c.maxPages; page++ {
		params := map[string]string{
			"q":  keywords,
			"kl": region,
		}
		if offset > 0 {
			params["s"] = strconv.Itoa(offset)
			params["dc"] = strconv.Itoa(offset + 1)
		}

		body, err := c.get(ctx, c.htmlURL, params)
		if err != nil {
			if len(items) > 0 {
				log.Debug().Err(err).Int("page", page).Msg("ddgs html page failed, keeping collected items")
				break
			}
			return nil, fmt.Errorf("html backend: %w", err)
		}

		pageItems, err := parseHTMLPage(body)
		if err != nil {
			return nil, fmt.Errorf("html backend: %w", err)
		}

		added := 0
		for _, it := range pageItems {
			if seen[it["href"]] {
				continue
			}
			seen[it["href"]] = true
			items = append(items, it)
			added++
			if maxResults > 0 && len(items) >= maxResults {
				return items, nil
			}
		}

		if added == 0 || maxResults <= 0 {
			break
		}
		offset += len(pageItems)
	}

	return items, nil
}

// parseHTMLPage 解析 html 版结果页
func parseHTMLPage(body []byte) ([]map[string]string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse HTML failed: %w", err)
	}

	var items []map[string]string
	doc.Find(".result").Each(func(i int, s *goquery.Selection) {
		// 跳过广告
		if s.HasClass("result--ad") {
			return
		}

		linkEl := s.Find(".result__a").First()
		if linkEl.Length() == 0 {
			return
		}
		href, _ := linkEl.Attr("href")
		href = unwrapRedirect(href)
		title := strings.TrimSpace(linkEl.Text())
		if href == "" || title == "" {
			return
		}

		body := strings.TrimSpace(s.Find(".result__snippet").First().Text())
		items = append(items, item(title, href, body))
	})

	return items, nil
}

// unwrapRedirect 解析 //duckduckgo.com/l/?uddg= 跳转链接
func unwrapRedirect(href string) string {
	if !strings.Contains(href, "duckduckgo.com/l/") {
		return href
	}
	if strings.HasPrefix(href, "//") {
		href = "https:" + href
	}
	parsed, err := url.Parse(href)
	if err != nil {
		return ""
	}
	return parsed.Query().Get("uddg")
}
