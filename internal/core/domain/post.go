package domain

import "time"

// PostStatus is the literal select label the content source uses.
type PostStatus string

const (
	StatusDraft     PostStatus = "📝 초안"
	StatusPublished PostStatus = "✅ 발행됨"
)

// Post is the transformed, validated representation of one content record.
// Content is nil until blocks are explicitly fetched.
type Post struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Slug        string     `json:"slug"`
	Description string     `json:"description,omitempty"`
	Categories  []string   `json:"categories"`
	Tags        []string   `json:"tags"`
	Status      PostStatus `json:"status"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
	CoverURL    string     `json:"cover_url,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	Content     []Block    `json:"content,omitempty"`
}

// Published reports whether the post carries the published status label.
func (p *Post) Published() bool {
	return p.Status == StatusPublished
}
