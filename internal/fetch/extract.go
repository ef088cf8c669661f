package fetch

import (
	"bytes"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/JohannesKaufmann/html-to-markdown/plugin"
	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/cliffyan/go-web-search/internal/textutil"
)

// Page 提取出的页面内容
type Page struct {
	Title   string
	Content string
}

// boilerplate 与正文无关的元素
const boilerplate = "script, style, noscript, template, iframe, svg, canvas, form, button, input, select, textarea, " +
	"nav, header, footer, aside, [role=navigation], [role=banner], [role=contentinfo], [hidden], [aria-hidden=true]"

// contentSelectors 可能包含正文的容器，取文本最长的一个
var contentSelectors = []string{
	"article",
	"main",
	"[role=main]",
	"#content",
	".content",
	"#main",
	".post",
	".entry-content",
	".article-content",
}

var blankLines = regexp.MustCompile(`\n{3,}`)

// Extract 从 HTML 中提取标题和正文
func Extract(body []byte, base *url.URL, opts Options) (Page, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return Page{}, fmt.Errorf("parse HTML failed: %w", err)
	}

	title := extractTitle(doc)

	doc.Find(boilerplate).Remove()
	root := mainContent(doc)

	if opts.IncludeLinks {
		resolveAttr(root.Find("a[href]"), "href", base)
	} else {
		root.Find("a").Contents().Unwrap()
		root.Find("a").Remove()
	}
	if opts.IncludeImages {
		resolveAttr(root.Find("img[src]"), "src", base)
	} else {
		root.Find("img, picture").Remove()
	}

	var content string
	switch opts.Format {
	case FormatHTML:
		content, err = renderHTML(root)
	case FormatText:
		content = renderText(root)
	default:
		content, err = renderMarkdown(root, base)
	}
	if err != nil {
		return Page{}, err
	}

	return Page{Title: title, Content: strings.TrimSpace(content)}, nil
}

// extractTitle 依次尝试 og:title、<title>、第一个 h1
func extractTitle(doc *goquery.Document) string {
	if og, ok := doc.Find(`meta[property="og:title"]`).First().Attr("content"); ok {
		if t := textutil.CollapseWhitespace(og); t != "" {
			return t
		}
	}
	if t := textutil.CollapseWhitespace(doc.Find("title").First().Text()); t != "" {
		return t
	}
	return textutil.CollapseWhitespace(doc.Find("h1").First().Text())
}

// mainContent 选出正文容器，找不到时退回 body
func mainContent(doc *goquery.Document) *goquery.Selection {
	var best *goquery.Selection
	bestLen := 0
	for _, sel := range contentSelectors {
		doc.Find(sel).Each(func(_ int, s *goquery.Selection) {
			if n := len(strings.TrimSpace(s.Text())); n > bestLen {
				best, bestLen = s, n
			}
		})
	}
	if best != nil {
		return best
	}
	if body := doc.Find("body"); body.Length() > 0 {
		return body
	}
	return doc.Selection
}

// resolveAttr 把相对地址改写为绝对地址
func resolveAttr(s *goquery.Selection, attr string, base *url.URL) {
	if base == nil {
		return
	}
	s.Each(func(_ int, el *goquery.Selection) {
		raw, _ := el.Attr(attr)
		ref, err := url.Parse(strings.TrimSpace(raw))
		if err != nil {
			return
		}
		el.SetAttr(attr, base.ResolveReference(ref).String())
	})
}

func renderHTML(root *goquery.Selection) (string, error) {
	if goquery.NodeName(root) == "body" || goquery.NodeName(root) == "#document" {
		return root.Html()
	}
	return goquery.OuterHtml(root)
}

func renderMarkdown(root *goquery.Selection, base *url.URL) (string, error) {
	source, err := renderHTML(root)
	if err != nil {
		return "", err
	}

	domain := ""
	if base != nil {
		domain = base.Host
	}
	conv := md.NewConverter(domain, true, nil)
	conv.Use(plugin.Table())

	out, err := conv.ConvertString(source)
	if err != nil {
		return "", fmt.Errorf("convert to markdown failed: %w", err)
	}
	return out, nil
}

// blockElements 文本模式下独占一行的元素
var blockElements = map[string]bool{
	"address": true, "article": true, "blockquote": true, "br": true, "dd": true, "div": true,
	"dl": true, "dt": true, "figcaption": true, "figure": true, "h1": true, "h2": true,
	"h3": true, "h4": true, "h5": true, "h6": true, "hr": true, "li": true, "main": true,
	"ol": true, "p": true, "pre": true, "section": true, "table": true, "tr": true, "ul": true,
}

// renderText 生成纯文本，块级元素换行，表格单元格以制表符分隔
func renderText(root *goquery.Selection) string {
	var buf strings.Builder
	for _, n := range root.Nodes {
		writeText(&buf, n)
	}

	lines := strings.Split(buf.String(), "\n")
	for i, line := range lines {
		cells := strings.Split(line, "\t")
		for j, cell := range cells {
			cells[j] = textutil.CollapseWhitespace(cell)
		}
		lines[i] = strings.Trim(strings.Join(cells, "\t"), "\t")
	}
	return blankLines.ReplaceAllString(strings.TrimSpace(strings.Join(lines, "\n")), "\n\n")
}

func writeText(buf *strings.Builder, n *html.Node) {
	switch n.Type {
	case html.TextNode:
		buf.WriteString(n.Data)
		return
	case html.ElementNode:
		if n.Data == "td" || n.Data == "th" {
			buf.WriteString("\t")
		}
	}

	block := n.Type == html.ElementNode && blockElements[n.Data]
	if block {
		buf.WriteString("\n")
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		writeText(buf, c)
	}
	if block {
		buf.WriteString("\n")
	}
}
