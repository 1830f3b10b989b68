package domain

// BlockType tags one node of a post body. The set is open-ended on the
// wire; anything outside the known set renders as unsupported.
type BlockType string

const (
	BlockParagraph        BlockType = "paragraph"
	BlockHeading1         BlockType = "heading_1"
	BlockHeading2         BlockType = "heading_2"
	BlockHeading3         BlockType = "heading_3"
	BlockBulletedListItem BlockType = "bulleted_list_item"
	BlockNumberedListItem BlockType = "numbered_list_item"
	BlockCode             BlockType = "code"
	BlockQuote            BlockType = "quote"
	BlockCallout          BlockType = "callout"
	BlockDivider          BlockType = "divider"
	BlockImage            BlockType = "image"
	BlockToggle           BlockType = "toggle"
	BlockUnsupported      BlockType = "unsupported"
)

// RichTextRun is one annotated span of text inside a block.
type RichTextRun struct {
	PlainText     string `json:"plain_text"`
	Bold          bool   `json:"bold,omitempty"`
	Italic        bool   `json:"italic,omitempty"`
	Strikethrough bool   `json:"strikethrough,omitempty"`
	Underline     bool   `json:"underline,omitempty"`
	Code          bool   `json:"code,omitempty"`
	Color         string `json:"color,omitempty"`
	Href          string `json:"href,omitempty"`
}

// Block is one node of a post body. Children is populated only when
// HasChildren and the tree has been resolved; nodes are built complete,
// never patched after construction.
type Block struct {
	ID          string    `json:"id"`
	Type        BlockType `json:"type"`
	HasChildren bool      `json:"has_children,omitempty"`

	// Type-specific payload. Only the fields relevant to Type are set.
	RichText []RichTextRun `json:"rich_text,omitempty"`
	Language string        `json:"language,omitempty"`  // code blocks
	Icon     string        `json:"icon,omitempty"`      // callout blocks
	ImageURL string        `json:"image_url,omitempty"` // image blocks
	Caption  []RichTextRun `json:"caption,omitempty"`

	Children []Block `json:"children,omitempty"`
}

// PlainText concatenates the block's rich text runs.
func (b *Block) PlainText() string {
	var s string
	for _, rt := range b.RichText {
		s += rt.PlainText
	}
	return s
}
