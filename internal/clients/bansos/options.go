package bansos

import (
	"bytes"
	"fmt"
	"strings"

	"golang.org/x/net/html"

	"github.com/wilayah-id/crawler/internal/entities"
)

// parseOptions maps an HTML payload of <option> elements to region pairs.
// The remote pads its lists with placeholder entries (value "0" or a
// "===..." divider), which are dropped. A payload without any option
// elements is malformed; an empty or placeholder-only list is a valid empty
// result.
func parseOptions(body []byte) ([]entities.Region, error) {

	if len(bytes.TrimSpace(body)) == 0 {
		return []entities.Region{}, nil
	}

	doc, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	regions := []entities.Region{}
	sawOptions := false

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && (n.Data == "select" || n.Data == "option") {
			sawOptions = true
		}
		if n.Type == html.ElementNode && n.Data == "option" {
			value := attrValue(n, "value")
			if value != "" && value != "0" && !strings.HasPrefix(value, "===") {
				regions = append(regions, entities.Region{Code: value, Name: textContent(n)})
			}
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(doc)

	if !sawOptions {
		return nil, fmt.Errorf("no option elements in payload")
	}

	return regions, nil
}

func attrValue(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}

func textContent(n *html.Node) string {
	var sb strings.Builder
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		if child.Type == html.TextNode {
			sb.WriteString(child.Data)
		}
	}
	return strings.TrimSpace(sb.String())
}
