// Package markdown converts raw model responses into typed content blocks the
// frontend renders directly. It understands the subset the chat UI displays:
// paragraphs with bold/italic spans, flat bullet lists, and fenced code.
// Headings, links, tables and nested lists degrade to plain paragraph text.
package markdown

import "strings"

const fence = "```"

// BlockKind tags the block variants.
type BlockKind string

const (
	BlockParagraph BlockKind = "paragraph"
	BlockList      BlockKind = "list"
	BlockCode      BlockKind = "code"
)

// SpanStyle tags inline emphasis within a paragraph.
type SpanStyle string

const (
	SpanPlain    SpanStyle = "plain"
	SpanEmphasis SpanStyle = "em"
	SpanStrong   SpanStyle = "strong"
)

// Span is a run of paragraph text with one style applied.
type Span struct {
	Style SpanStyle `json:"style"`
	Text  string    `json:"text"`
}

// Block is one displayable unit. Exactly one of the variant fields is
// populated, selected by Kind.
type Block struct {
	Kind     BlockKind `json:"kind"`
	Spans    []Span    `json:"spans,omitempty"`
	Items    []string  `json:"items,omitempty"`
	Language string    `json:"language,omitempty"`
	Code     string    `json:"code,omitempty"`
}

// Render parses content into an ordered block sequence. It is pure and
// deterministic; empty content yields no blocks.
func Render(content string) []Block {
	if content == "" {
		return nil
	}

	segments := strings.Split(content, fence)
	var blocks []Block
	for i, segment := range segments {
		// Odd segments sit between a fence pair, except a trailing
		// unterminated one, which stays plain text so nothing is lost.
		if i%2 == 1 && i != len(segments)-1 {
			blocks = append(blocks, codeBlock(segment))
			continue
		}
		blocks = append(blocks, textBlocks(segment)...)
	}
	return blocks
}

// codeBlock splits a fenced segment into its language tag (the first line,
// possibly empty) and the literal code, which is never reinterpreted.
func codeBlock(segment string) Block {
	language, code := "", segment
	if idx := strings.IndexByte(segment, '\n'); idx >= 0 {
		// The first line names the language; everything after is literal.
		language = strings.TrimSpace(segment[:idx])
		code = segment[idx+1:]
	}
	return Block{Kind: BlockCode, Language: language, Code: code}
}

// textBlocks turns a plain segment into paragraphs and lists. Consecutive
// bullet lines coalesce into one list; consecutive other lines join into one
// paragraph separated by line breaks; blank lines close whichever is open.
func textBlocks(segment string) []Block {
	var blocks []Block
	var items []string
	var paragraph []string

	flushParagraph := func() {
		if len(paragraph) > 0 {
			blocks = append(blocks, Block{
				Kind:  BlockParagraph,
				Spans: inlineSpans(strings.Join(paragraph, "\n")),
			})
			paragraph = nil
		}
	}
	flushList := func() {
		if len(items) > 0 {
			blocks = append(blocks, Block{Kind: BlockList, Items: items})
			items = nil
		}
	}

	for _, line := range strings.Split(segment, "\n") {
		trimmed := strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(trimmed, "- ") || strings.HasPrefix(trimmed, "* "):
			flushParagraph()
			items = append(items, trimmed[2:])
		case trimmed == "":
			flushParagraph()
			flushList()
		default:
			flushList()
			paragraph = append(paragraph, line)
		}
	}
	flushParagraph()
	flushList()
	return blocks
}

// inlineSpans tokenizes **strong** first, then *emphasis* inside the
// remaining plain runs, mirroring a two-pass substitution without the
// ordering fragility of chained replacements.
func inlineSpans(text string) []Span {
	var spans []Span
	for _, outer := range splitDelimited(text, "**") {
		if outer.marked {
			if outer.text != "" {
				spans = append(spans, Span{Style: SpanStrong, Text: outer.text})
			}
			continue
		}
		for _, inner := range splitDelimited(outer.text, "*") {
			if inner.text == "" {
				continue
			}
			style := SpanPlain
			if inner.marked {
				style = SpanEmphasis
			}
			spans = append(spans, Span{Style: style, Text: inner.text})
		}
	}
	return spans
}

type run struct {
	text   string
	marked bool
}

// splitDelimited cuts s into alternating plain and delimiter-enclosed runs.
// A delimiter without a closing partner is left in the plain text.
func splitDelimited(s, delim string) []run {
	var runs []run
	for {
		open := strings.Index(s, delim)
		if open < 0 {
			break
		}
		rest := s[open+len(delim):]
		end := strings.Index(rest, delim)
		if end < 0 {
			break
		}
		if open > 0 {
			runs = append(runs, run{text: s[:open]})
		}
		runs = append(runs, run{text: rest[:end], marked: true})
		s = rest[end+len(delim):]
	}
	if s != "" {
		runs = append(runs, run{text: s})
	}
	return runs
}
