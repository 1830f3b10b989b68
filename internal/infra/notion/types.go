package notion

import (
	"encoding/json"
	"time"
)

// Wire types for the content API. Properties are decoded once, at this
// boundary, into the tagged Property union; nothing downstream does
// string-keyed dynamic lookups into raw JSON.

// Page is one raw database record.
type Page struct {
	Object         string              `json:"object"`
	ID             string              `json:"id"`
	CreatedTime    time.Time           `json:"created_time"`
	LastEditedTime time.Time           `json:"last_edited_time"`
	Cover          *FileRef            `json:"cover"`
	Properties     map[string]Property `json:"properties"`
	URL            string              `json:"url"`
}

// PropertyType tags the known external property shapes.
type PropertyType string

const (
	PropertyTitle       PropertyType = "title"
	PropertyRichText    PropertyType = "rich_text"
	PropertySelect      PropertyType = "select"
	PropertyMultiSelect PropertyType = "multi_select"
	PropertyDate        PropertyType = "date"
	PropertyFiles       PropertyType = "files"
	PropertyNumber      PropertyType = "number"
	PropertyURL         PropertyType = "url"
	PropertyUnknown     PropertyType = "unknown"
)

// Property is the tagged union of property payloads. Only the field
// matching Type is populated.
type Property struct {
	ID   string
	Type PropertyType

	Title       []RichTextItem
	RichText    []RichTextItem
	Select      *SelectOption
	MultiSelect []SelectOption
	Date        *DateValue
	Files       []FileRef
	Number      *float64
	URL         string
}

// propertyWire mirrors the raw JSON shape before tagging.
type propertyWire struct {
	ID          string          `json:"id"`
	Type        string          `json:"type"`
	Title       []RichTextItem  `json:"title"`
	RichText    []RichTextItem  `json:"rich_text"`
	Select      *SelectOption   `json:"select"`
	MultiSelect []SelectOption  `json:"multi_select"`
	Date        *DateValue      `json:"date"`
	Files       []FileRef       `json:"files"`
	Number      *float64        `json:"number"`
	URL         json.RawMessage `json:"url"`
}

// UnmarshalJSON decodes one raw property into the union. Shapes outside
// the known set decode to PropertyUnknown rather than failing the page.
func (p *Property) UnmarshalJSON(data []byte) error {
	var w propertyWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	p.ID = w.ID
	switch PropertyType(w.Type) {
	case PropertyTitle:
		p.Type = PropertyTitle
		p.Title = w.Title
	case PropertyRichText:
		p.Type = PropertyRichText
		p.RichText = w.RichText
	case PropertySelect:
		p.Type = PropertySelect
		p.Select = w.Select
	case PropertyMultiSelect:
		p.Type = PropertyMultiSelect
		p.MultiSelect = w.MultiSelect
	case PropertyDate:
		p.Type = PropertyDate
		p.Date = w.Date
	case PropertyFiles:
		p.Type = PropertyFiles
		p.Files = w.Files
	case PropertyNumber:
		p.Type = PropertyNumber
		p.Number = w.Number
	case PropertyURL:
		p.Type = PropertyURL
		var u *string
		if len(w.URL) > 0 {
			if err := json.Unmarshal(w.URL, &u); err != nil {
				return err
			}
		}
		if u != nil {
			p.URL = *u
		}
	default:
		p.Type = PropertyUnknown
	}
	return nil
}

// RichTextItem is one raw annotated text run.
type RichTextItem struct {
	Type        string      `json:"type"`
	PlainText   string      `json:"plain_text"`
	Href        *string     `json:"href"`
	Annotations Annotations `json:"annotations"`
}

// Annotations carries the styling flags of a rich text run.
type Annotations struct {
	Bold          bool   `json:"bold"`
	Italic        bool   `json:"italic"`
	Strikethrough bool   `json:"strikethrough"`
	Underline     bool   `json:"underline"`
	Code          bool   `json:"code"`
	Color         string `json:"color"`
}

// SelectOption is one choice of a select or multi-select property.
type SelectOption struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

// DateValue is a raw date property payload. Start may be a bare date or a
// full timestamp.
type DateValue struct {
	Start string  `json:"start"`
	End   *string `json:"end"`
}

// FileRef is a raw file reference, either externally hosted or hosted by
// the source itself.
type FileRef struct {
	Type     string        `json:"type"`
	Name     string        `json:"name,omitempty"`
	External *ExternalFile `json:"external,omitempty"`
	File     *HostedFile   `json:"file,omitempty"`
}

// ExternalFile points at an externally hosted asset.
type ExternalFile struct {
	URL string `json:"url"`
}

// HostedFile points at a source-hosted asset with an expiring URL.
type HostedFile struct {
	URL        string     `json:"url"`
	ExpiryTime *time.Time `json:"expiry_time,omitempty"`
}

// Block is one raw body node. The payload pointer matching Type is set.
type Block struct {
	Object      string `json:"object"`
	ID          string `json:"id"`
	Type        string `json:"type"`
	HasChildren bool   `json:"has_children"`

	Paragraph        *RichTextPayload `json:"paragraph,omitempty"`
	Heading1         *RichTextPayload `json:"heading_1,omitempty"`
	Heading2         *RichTextPayload `json:"heading_2,omitempty"`
	Heading3         *RichTextPayload `json:"heading_3,omitempty"`
	BulletedListItem *RichTextPayload `json:"bulleted_list_item,omitempty"`
	NumberedListItem *RichTextPayload `json:"numbered_list_item,omitempty"`
	Quote            *RichTextPayload `json:"quote,omitempty"`
	Toggle           *RichTextPayload `json:"toggle,omitempty"`
	Code             *CodePayload     `json:"code,omitempty"`
	Callout          *CalloutPayload  `json:"callout,omitempty"`
	Image            *ImagePayload    `json:"image,omitempty"`
}

// RichTextPayload is the common rich-text-bearing block payload.
type RichTextPayload struct {
	RichText []RichTextItem `json:"rich_text"`
	Color    string         `json:"color,omitempty"`
}

// CodePayload carries a code block's text and language tag.
type CodePayload struct {
	RichText []RichTextItem `json:"rich_text"`
	Caption  []RichTextItem `json:"caption,omitempty"`
	Language string         `json:"language"`
}

// CalloutPayload carries a callout's text and icon.
type CalloutPayload struct {
	RichText []RichTextItem `json:"rich_text"`
	Icon     *Icon          `json:"icon,omitempty"`
	Color    string         `json:"color,omitempty"`
}

// Icon is an emoji or file icon attached to a callout.
type Icon struct {
	Type     string        `json:"type"`
	Emoji    string        `json:"emoji,omitempty"`
	External *ExternalFile `json:"external,omitempty"`
	File     *HostedFile   `json:"file,omitempty"`
}

// ImagePayload carries an image block's source and caption.
type ImagePayload struct {
	Type     string         `json:"type"`
	External *ExternalFile  `json:"external,omitempty"`
	File     *HostedFile    `json:"file,omitempty"`
	Caption  []RichTextItem `json:"caption,omitempty"`
}

// QueryRequest is the database query body: filter, fixed sorts, cursor
// pagination.
type QueryRequest struct {
	Filter      *Filter `json:"filter,omitempty"`
	Sorts       []Sort  `json:"sorts,omitempty"`
	PageSize    int     `json:"page_size,omitempty"`
	StartCursor string  `json:"start_cursor,omitempty"`
}

// Filter is either one property condition or an AND compound.
type Filter struct {
	Property    string             `json:"property,omitempty"`
	Select      *EqualsFilter      `json:"select,omitempty"`
	RichText    *EqualsFilter      `json:"rich_text,omitempty"`
	MultiSelect *MultiSelectFilter `json:"multi_select,omitempty"`
	And         []Filter           `json:"and,omitempty"`
}

// EqualsFilter matches a select or rich-text property exactly.
type EqualsFilter struct {
	Equals string `json:"equals"`
}

// MultiSelectFilter matches multi-select membership.
type MultiSelectFilter struct {
	Contains string `json:"contains"`
}

// Sort orders query results by one property.
type Sort struct {
	Property  string `json:"property"`
	Direction string `json:"direction"`
}

const (
	SortAscending  = "ascending"
	SortDescending = "descending"
)

// QueryResponse is one page of database query results. NextCursor and
// HasMore come back verbatim from the source.
type QueryResponse struct {
	Object     string  `json:"object"`
	Results    []Page  `json:"results"`
	NextCursor *string `json:"next_cursor"`
	HasMore    bool    `json:"has_more"`
}

// BlockChildrenResponse is one page of a parent's child blocks.
type BlockChildrenResponse struct {
	Object     string  `json:"object"`
	Results    []Block `json:"results"`
	NextCursor *string `json:"next_cursor"`
	HasMore    bool    `json:"has_more"`
}
