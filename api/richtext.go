package api

import "strings"

type Annotations struct {
	Bold          bool   `json:"bold" mapstructure:"bold"`
	Italic        bool   `json:"italic" mapstructure:"italic"`
	Strikethrough bool   `json:"strikethrough" mapstructure:"strikethrough"`
	Underline     bool   `json:"underline" mapstructure:"underline"`
	Code          bool   `json:"code" mapstructure:"code"`
	Color         string `json:"color" mapstructure:"color"`
}

func (a Annotations) toMap() map[string]any {
	color := strings.TrimSpace(a.Color)
	if color == "" {
		color = "default"
	}
	return map[string]any{
		"bold":          a.Bold,
		"italic":        a.Italic,
		"strikethrough": a.Strikethrough,
		"underline":     a.Underline,
		"code":          a.Code,
		"color":         color,
	}
}

// FormatRichText wraps text in a single element rich text array. An empty link
// renders as null.
func FormatRichText(text string, annotations Annotations, link string) []any {
	var linkValue any
	if link = strings.TrimSpace(link); link != "" {
		linkValue = map[string]any{"url": link}
	}
	return []any{
		map[string]any{
			"type": "text",
			"text": map[string]any{
				"content": text,
				"link":    linkValue,
			},
			"annotations": annotations.toMap(),
		},
	}
}

// PlainRichText is FormatRichText without annotations or link.
func PlainRichText(text string) []any {
	return FormatRichText(text, Annotations{}, "")
}

const (
	BlockParagraph = "paragraph"
	BlockHeading1  = "heading_1"
	BlockHeading2  = "heading_2"
	BlockHeading3  = "heading_3"
)

// CreateTextBlock builds a paragraph or heading block. Unknown types fall back
// to paragraph.
func CreateTextBlock(text string, blockType string) map[string]any {
	switch blockType {
	case BlockParagraph, BlockHeading1, BlockHeading2, BlockHeading3:
	default:
		blockType = BlockParagraph
	}
	return map[string]any{
		"type": blockType,
		blockType: map[string]any{
			"rich_text": PlainRichText(text),
		},
	}
}
