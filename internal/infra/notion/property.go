package notion

import (
	"time"
)

// Property extractors. Each handles exactly one property shape and never
// fails: absent data yields the type's natural zero value.

// ExtractTitle concatenates a title property's plain text runs.
func ExtractTitle(p Property) string {
	return joinPlainText(p.Title)
}

// ExtractRichText concatenates a rich-text property's plain text runs.
func ExtractRichText(p Property) string {
	return joinPlainText(p.RichText)
}

// ExtractSelect returns the chosen option's name, or "" if none.
func ExtractSelect(p Property) string {
	if p.Select == nil {
		return ""
	}
	return p.Select.Name
}

// ExtractMultiSelect returns the chosen option names in source order.
func ExtractMultiSelect(p Property) []string {
	if len(p.MultiSelect) == 0 {
		return []string{}
	}
	names := make([]string, 0, len(p.MultiSelect))
	for _, opt := range p.MultiSelect {
		names = append(names, opt.Name)
	}
	return names
}

// ExtractDate parses the start bound of a date property. Unparseable or
// absent dates yield nil.
func ExtractDate(p Property) *time.Time {
	if p.Date == nil || p.Date.Start == "" {
		return nil
	}
	return parseDate(p.Date.Start)
}

// ExtractFileURL returns the URL of a files property's first file,
// preferring whichever of the external/hosted variants is populated.
func ExtractFileURL(p Property) string {
	if len(p.Files) == 0 {
		return ""
	}
	return fileURL(p.Files[0])
}

// ExtractPageCover returns the page-level cover URL, or "".
func ExtractPageCover(page *Page) string {
	if page.Cover == nil {
		return ""
	}
	return fileURL(*page.Cover)
}

func fileURL(f FileRef) string {
	if f.External != nil && f.External.URL != "" {
		return f.External.URL
	}
	if f.File != nil && f.File.URL != "" {
		return f.File.URL
	}
	return ""
}

func joinPlainText(runs []RichTextItem) string {
	var s string
	for _, rt := range runs {
		s += rt.PlainText
	}
	return s
}

// parseDate accepts both bare dates and full timestamps.
func parseDate(s string) *time.Time {
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}
