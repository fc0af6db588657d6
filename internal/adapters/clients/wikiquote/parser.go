package wikiquote

import (
	"html"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	xhtml "golang.org/x/net/html"

	"quotesuggest/internal/domain"
	"quotesuggest/internal/ports"
)

// quotesBlockName is the heading that opens the quote listing on English
// Wikiquote pages.
const quotesBlockName = "Quotes"

// extraBlockNames are highlighted sections whose content is not reliably
// attributable to the page's person.
var extraBlockNames = []string{"Disputed", "Misattributed", "Attributed"}

// citationPattern matches footnote anchors like [1] or [].
var citationPattern = regexp.MustCompile(`^\[\d*\]`)

// parsePage extracts all quotes from a rendered Wikiquote page. Pages whose
// title the classifier does not recognize as a person are skipped, since a
// title like "Friendship" would otherwise be attributed as an author.
func parsePage(title, body string, classifier ports.NameClassifier) ([]domain.Quote, error) {
	if !classifier.IsPerson(title) {
		return nil, nil
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return nil, err
	}

	root := doc.Find("div.mw-parser-output").First()
	if root.Length() == 0 {
		return nil, nil
	}

	stripLinkNoise(root)

	// Poem-style quotes live in their own divs and the list walk skips divs,
	// so collecting them first cannot double count.
	quotes := parsePoemBlocks(title, root)
	quotes = append(quotes, parseListBlocks(title, root)...)

	return quotes, nil
}

// stripLinkNoise drops footnote markers and superscripts, and flattens plain
// links into their text so anchors never end up inside quote text.
func stripLinkNoise(root *goquery.Selection) {
	root.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		text := a.Text()

		switch {
		case citationPattern.MatchString(text):
			a.Remove()
		case a.Children().Length() == 0 && text != "":
			a.ReplaceWithHtml(html.EscapeString(text))
		default:
			a.Remove()
		}
	})

	root.Find("sup").Remove()
}

// parsePoemBlocks extracts quotes rendered as poems. The poem's span, when
// present, carries the attribution line and becomes the description.
func parsePoemBlocks(title string, root *goquery.Selection) []domain.Quote {
	var quotes []domain.Quote

	root.Find("div.poem").Each(func(_ int, poem *goquery.Selection) {
		var description string

		span := poem.Find("span").First()
		if span.Length() > 0 {
			description = span.Text()
			span.Remove()
		}

		quote, err := domain.NewQuote(poem.Text(), title, description)
		if err != nil {
			return
		}

		quotes = append(quotes, quote)
	})

	return quotes
}

// parseListBlocks walks the siblings of the "Quotes" heading and extracts
// quotes from the list tags up to the next section heading.
func parseListBlocks(title string, root *goquery.Selection) []domain.Quote {
	removeExtraBlocks(root)

	heading := root.Find("span").FilterFunction(func(_ int, s *goquery.Selection) bool {
		return strings.Contains(s.Text(), quotesBlockName)
	}).First()
	if heading.Length() == 0 {
		return nil
	}

	var tags []*goquery.Selection

walk:
	for sib := heading.Parent().Next(); sib.Length() > 0; sib = sib.Next() {
		switch goquery.NodeName(sib) {
		case "h2":
			break walk
		case "h3", "h4", "dl", "p", "div":
			// Sub-headings, definition lists, and prose between the lists.
		default:
			tags = append(tags, sib)
		}
	}

	var quotes []domain.Quote

	for _, tag := range tags {
		text, description, ok := extractFromTag(tag)
		if !ok {
			continue
		}

		quote, err := domain.NewQuote(text, title, description)
		if err != nil {
			continue
		}

		quotes = append(quotes, quote)
	}

	return quotes
}

// removeExtraBlocks drops highlighted sections like Disputed or
// Misattributed so their content never gets attributed to the author.
func removeExtraBlocks(root *goquery.Selection) {
	for _, name := range extraBlockNames {
		root.Find("span, b, dt, h2, h3, h4").EachWithBreak(func(_ int, s *goquery.Selection) bool {
			if strings.TrimSpace(s.Text()) == name {
				s.Closest("div").Remove()
				return false
			}

			return true
		})
	}
}

// extractFromTag pulls quote text and an optional trailing description out
// of a single list tag. Returns ok=false for list shapes that cannot be
// parsed unambiguously.
func extractFromTag(tag *goquery.Selection) (text, description string, ok bool) {
	// Line breaks inside a quote become literal newlines.
	tag.Find("br").Each(func(_ int, br *goquery.Selection) {
		br.ReplaceWithHtml("\n")
	})

	switch goquery.NodeName(tag) {
	case "ul":
		return extractFromList(tag)
	case "li":
		return tag.Text(), "", true
	default:
		return "", "", false
	}
}

// extractFromList handles the common Wikiquote shape: a ul whose first li
// holds the quote, optionally followed by a nested attribution node.
func extractFromList(tag *goquery.Selection) (text, description string, ok bool) {
	first := tag.Find("li").First()
	if first.Length() == 0 {
		return "", "", false
	}

	contents := childNodes(first)

	if len(contents) < 3 {
		if len(contents) == 0 {
			return "", "", false
		}

		text = nodeText(contents[0])
		if len(contents) > 1 {
			description = nodeText(contents[1])
		}

		return text, description, true
	}

	if tag.Find("li").Length() == 1 {
		return tag.Text(), "", true
	}

	// The attribution is the last child of the first li. When that child is
	// bare text there is no way to tell quote from attribution, so the whole
	// tag is skipped.
	last := contents[len(contents)-1]
	if last.Type != xhtml.ElementNode {
		return "", "", false
	}

	last.Parent.RemoveChild(last)

	return tag.Text(), nodeText(last), true
}

// childNodes returns the direct child nodes, text nodes included, of the
// selection's first element.
func childNodes(sel *goquery.Selection) []*xhtml.Node {
	if len(sel.Nodes) == 0 {
		return nil
	}

	var nodes []*xhtml.Node
	for n := sel.Nodes[0].FirstChild; n != nil; n = n.NextSibling {
		nodes = append(nodes, n)
	}

	return nodes
}

// nodeText returns the concatenated text of a node and its descendants.
func nodeText(n *xhtml.Node) string {
	if n.Type == xhtml.TextNode {
		return n.Data
	}

	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		b.WriteString(nodeText(c))
	}

	return b.String()
}
