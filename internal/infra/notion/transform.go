package notion

import (
	"fmt"
	"log/slog"

	"github.com/vietddude/inkwell/internal/core/domain"
	"github.com/vietddude/inkwell/internal/metrics"
)

// TransformPage assembles one domain post from one raw page.
//
// Required properties (title, status, slug) are validated twice: key
// presence first, then non-emptiness of the extracted value, so a missing
// key and a present-but-empty value produce distinct diagnostics. Optional
// properties degrade to zero values. The cover falls back from the
// dedicated property to the page-level cover attribute only when the
// property key is absent.
func TransformPage(page *Page) (post *domain.Post, err error) {
	defer func() {
		if r := recover(); r != nil {
			post = nil
			err = &TransformError{
				Message: fmt.Sprintf("page transform failed: %v", r),
				Raw:     page,
			}
		}
	}()

	props := page.Properties

	titleProp, ok := props["title"]
	if !ok {
		return nil, &TransformError{Message: "missing required property: title", Field: "title", Raw: page}
	}
	statusProp, ok := props["status"]
	if !ok {
		return nil, &TransformError{Message: "missing required property: status", Field: "status", Raw: page}
	}
	slugProp, ok := props["slug"]
	if !ok {
		return nil, &TransformError{Message: "missing required property: slug", Field: "slug", Raw: page}
	}

	title := ExtractTitle(titleProp)
	status := ExtractSelect(statusProp)
	slug := ExtractRichText(slugProp)

	if title == "" {
		return nil, &TransformError{Message: "title is empty", Field: "title", Raw: page}
	}
	if status == "" {
		return nil, &TransformError{Message: "status is not set", Field: "status", Raw: page}
	}
	if slug == "" {
		return nil, &TransformError{Message: "slug is empty", Field: "slug", Raw: page}
	}

	post = &domain.Post{
		ID:          page.ID,
		Title:       title,
		Slug:        slug,
		Description: ExtractRichText(props["description"]),
		Categories:  ExtractMultiSelect(props["category"]),
		Tags:        ExtractMultiSelect(props["tags"]),
		Status:      domain.PostStatus(status),
		PublishedAt: ExtractDate(props["published"]),
		CreatedAt:   page.CreatedTime,
		UpdatedAt:   page.LastEditedTime,
	}

	if coverProp, ok := props["cover"]; ok {
		post.CoverURL = ExtractFileURL(coverProp)
	} else {
		post.CoverURL = ExtractPageCover(page)
	}

	return post, nil
}

// TransformPages maps TransformPage over a batch. A single page's failure
// is logged with its identifier and excluded; the batch never fails
// wholesale for one malformed record.
func TransformPages(pages []Page) []*domain.Post {
	posts := make([]*domain.Post, 0, len(pages))
	failed := 0

	for i := range pages {
		post, err := TransformPage(&pages[i])
		if err != nil {
			failed++
			metrics.TransformFailuresTotal.Inc()
			slog.Warn("Dropping page that failed to transform",
				"page_id", pages[i].ID,
				"error", err)
			continue
		}
		posts = append(posts, post)
	}

	if failed > 0 {
		slog.Warn("Batch transform completed with failures",
			"total", len(pages),
			"failed", failed)
	}
	return posts
}

// TransformBlock builds one domain block from a raw node, attaching the
// already-resolved children at construction time.
func TransformBlock(raw *Block, children []domain.Block) domain.Block {
	b := domain.Block{
		ID:          raw.ID,
		HasChildren: raw.HasChildren,
		Children:    children,
	}

	switch domain.BlockType(raw.Type) {
	case domain.BlockParagraph:
		b.Type = domain.BlockParagraph
		b.RichText = transformRichText(payloadRichText(raw.Paragraph))
	case domain.BlockHeading1:
		b.Type = domain.BlockHeading1
		b.RichText = transformRichText(payloadRichText(raw.Heading1))
	case domain.BlockHeading2:
		b.Type = domain.BlockHeading2
		b.RichText = transformRichText(payloadRichText(raw.Heading2))
	case domain.BlockHeading3:
		b.Type = domain.BlockHeading3
		b.RichText = transformRichText(payloadRichText(raw.Heading3))
	case domain.BlockBulletedListItem:
		b.Type = domain.BlockBulletedListItem
		b.RichText = transformRichText(payloadRichText(raw.BulletedListItem))
	case domain.BlockNumberedListItem:
		b.Type = domain.BlockNumberedListItem
		b.RichText = transformRichText(payloadRichText(raw.NumberedListItem))
	case domain.BlockQuote:
		b.Type = domain.BlockQuote
		b.RichText = transformRichText(payloadRichText(raw.Quote))
	case domain.BlockToggle:
		b.Type = domain.BlockToggle
		b.RichText = transformRichText(payloadRichText(raw.Toggle))
	case domain.BlockCode:
		b.Type = domain.BlockCode
		if raw.Code != nil {
			b.RichText = transformRichText(raw.Code.RichText)
			b.Caption = transformRichText(raw.Code.Caption)
			b.Language = raw.Code.Language
		}
	case domain.BlockCallout:
		b.Type = domain.BlockCallout
		if raw.Callout != nil {
			b.RichText = transformRichText(raw.Callout.RichText)
			if raw.Callout.Icon != nil {
				b.Icon = raw.Callout.Icon.Emoji
			}
		}
	case domain.BlockImage:
		b.Type = domain.BlockImage
		if raw.Image != nil {
			b.ImageURL = fileURL(FileRef{External: raw.Image.External, File: raw.Image.File})
			b.Caption = transformRichText(raw.Image.Caption)
		}
	case domain.BlockDivider:
		b.Type = domain.BlockDivider
	default:
		b.Type = domain.BlockUnsupported
	}

	return b
}

func payloadRichText(p *RichTextPayload) []RichTextItem {
	if p == nil {
		return nil
	}
	return p.RichText
}

func transformRichText(items []RichTextItem) []domain.RichTextRun {
	if len(items) == 0 {
		return nil
	}
	runs := make([]domain.RichTextRun, 0, len(items))
	for _, it := range items {
		run := domain.RichTextRun{
			PlainText:     it.PlainText,
			Bold:          it.Annotations.Bold,
			Italic:        it.Annotations.Italic,
			Strikethrough: it.Annotations.Strikethrough,
			Underline:     it.Annotations.Underline,
			Code:          it.Annotations.Code,
			Color:         it.Annotations.Color,
		}
		if it.Href != nil {
			run.Href = *it.Href
		}
		runs = append(runs, run)
	}
	return runs
}
