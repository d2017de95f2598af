package services

import (
	"net/url"
	"strings"
	"unicode"

	"github.com/custodia-labs/hilite-cli/internal/core/domain"
	"github.com/custodia-labs/hilite-cli/internal/core/ports/driven"
	"github.com/custodia-labs/hilite-cli/internal/core/ports/driving"
)

// Ensure QuoteService implements the interface.
var _ driving.QuoteService = (*QuoteService)(nil)

// Fragment-building policy.
const (
	// maxWholeQuoteWords is the longest quote embedded verbatim in a text
	// fragment. Longer quotes use a head,tail directive instead.
	maxWholeQuoteWords = 10

	// minSnippetWords / maxSnippetWords clamp the head and tail snippet
	// size of a two-part fragment.
	minSnippetWords = 4
	maxSnippetWords = 8
)

// QuoteService builds portable citations from live selections: the
// normalized text, an inline-Markdown rendering, and a text-fragment deep
// link. It reuses the matcher's context extraction and persists nothing.
type QuoteService struct {
	tree     driven.DocumentTree
	location string
	indexer  *Indexer
	matcher  *Matcher
}

// NewQuoteService creates a quote service for one document. The location
// prefixes generated fragment URLs and may be empty.
func NewQuoteService(tree driven.DocumentTree, location string) *QuoteService {
	return &QuoteService{
		tree:     tree,
		location: location,
		indexer:  NewIndexer(),
		matcher:  NewMatcher(),
	}
}

// Capture locates the selected occurrence of text and builds the citation.
func (q *QuoteService) Capture(text string, occurrence int) (*domain.Quote, error) {
	plain := domain.NormalizeText(text)
	if len([]rune(plain)) < domain.MinAnchorTextLength {
		return nil, domain.ErrEmptySelection
	}

	idx := q.indexer.Build(q.tree)
	foldStart, foldEnd, err := q.matcher.Locate(idx, plain, occurrence)
	if err != nil {
		return nil, err
	}
	start, end, err := idx.RawRange(foldStart, foldEnd)
	if err != nil {
		return nil, err
	}

	return &domain.Quote{
		PlainText:    plain,
		MarkdownText: markdownForRange(idx, start, end),
		FragmentURL:  q.location + BuildFragment(plain),
	}, nil
}

// BuildFragment builds a text-fragment directive for a normalized quote.
// Quotes of up to maxWholeQuoteWords words embed the whole text; longer
// quotes emit a head,tail pair of clamp(ceil(words/4), 4, 8) words each.
// Snippet edges are stripped of punctuation first: fragment matching is
// brittle at punctuation boundaries.
func BuildFragment(plain string) string {
	words := strings.Fields(plain)
	if len(words) <= maxWholeQuoteWords {
		return "#:~:text=" + fragmentEscape(plain)
	}

	size := (len(words) + 3) / 4
	if size < minSnippetWords {
		size = minSnippetWords
	}
	if size > maxSnippetWords {
		size = maxSnippetWords
	}

	head := trimPunct(strings.Join(words[:size], " "))
	tail := trimPunct(strings.Join(words[len(words)-size:], " "))
	return "#:~:text=" + fragmentEscape(head) + "," + fragmentEscape(tail)
}

// fragmentEscape percent-encodes a snippet for a text-fragment directive.
// Spaces encode as %20, and the directive delimiters (&#44; and friends)
// are never left bare because QueryEscape covers them.
func fragmentEscape(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

// trimPunct strips leading and trailing punctuation from a snippet.
func trimPunct(s string) string {
	return strings.TrimFunc(s, unicode.IsPunct)
}

// inlineStyle is the formatting in force over one run of quoted text.
type inlineStyle struct {
	bold   bool
	italic bool
	code   bool
	href   string
}

// styledRun is a run of quoted text sharing one inline style.
type styledRun struct {
	style inlineStyle
	text  string
}

// markdownForRange walks the selection's text nodes and emits inline
// Markdown for bold, italic, code and link formatting found on their
// ancestor chains. A selection with no rich formatting comes out as
// escaped plain text.
func markdownForRange(idx *domain.TextIndex, start, end int) string {
	var runs []styledRun
	for _, sl := range idx.SpansIn(start, end) {
		style := styleFor(sl.Span.Node)
		text := sl.Span.Node.Text()[sl.LocalStart:sl.LocalEnd]
		if len(runs) > 0 && runs[len(runs)-1].style == style {
			runs[len(runs)-1].text += text
			continue
		}
		runs = append(runs, styledRun{style: style, text: text})
	}

	var b strings.Builder
	for _, run := range runs {
		b.WriteString(renderRun(run))
	}
	return domain.NormalizeText(b.String())
}

// styleFor derives a text node's inline style from its ancestor chain.
func styleFor(n domain.Node) inlineStyle {
	var style inlineStyle
	for p := n.Parent(); p != nil; p = p.Parent() {
		switch p.Tag() {
		case "b", "strong":
			style.bold = true
		case "i", "em":
			style.italic = true
		case "code", "kbd", "samp":
			style.code = true
		case "a":
			if href, ok := p.Attr("href"); ok && style.href == "" {
				style.href = href
			}
		}
	}
	return style
}

// renderRun emits one styled run as Markdown. Leading and trailing
// whitespace stays outside the emphasis delimiters, where Markdown
// requires it.
func renderRun(run styledRun) string {
	body := strings.TrimSpace(run.text)
	if body == "" {
		return run.text
	}

	var lead, trail string
	if trimmed := strings.TrimLeft(run.text, " \t\n"); len(trimmed) < len(run.text) {
		lead = " "
	}
	if trimmed := strings.TrimRight(run.text, " \t\n"); len(trimmed) < len(run.text) {
		trail = " "
	}

	if run.style.code {
		body = "`" + body + "`"
	} else {
		body = escapeMarkdown(body)
		if run.style.bold {
			body = "**" + body + "**"
		}
		if run.style.italic {
			body = "*" + body + "*"
		}
	}
	if run.style.href != "" {
		body = "[" + body + "](" + run.style.href + ")"
	}
	return lead + body + trail
}

// escapeMarkdown backslash-escapes the inline Markdown metacharacters.
func escapeMarkdown(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '\\', '`', '*', '_', '[', ']':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
