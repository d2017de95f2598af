package domain

// Quote is a portable citation built from a live selection. Nothing about
// it is persisted; it is handed straight back to the caller.
type Quote struct {
	// PlainText is the whitespace-normalized selected text.
	PlainText string `json:"plain_text"`

	// MarkdownText carries the selection's inline formatting (bold,
	// italic, code, links) as Markdown, or escaped plain text when the
	// selection has no rich formatting.
	MarkdownText string `json:"markdown_text"`

	// FragmentURL is a text-fragment deep link (#:~:text=...) that scrolls
	// a fragment-aware renderer directly to the quoted text.
	FragmentURL string `json:"fragment_url"`
}
