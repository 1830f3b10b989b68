package content

import (
	"context"
	"fmt"

	"github.com/vietddude/inkwell/internal/core/domain"
	"github.com/vietddude/inkwell/internal/infra/notion"
)

// GetBlocks returns the fully materialized block tree of one post body.
// The source's own pagination is followed per parent, and every block
// flagged as having children is resolved recursively before returning, so
// nothing is left to lazy-fetch at render time. Children are attached
// when each node is built, never patched onto an already returned value.
func (s *Service) GetBlocks(ctx context.Context, parentID string) ([]domain.Block, error) {
	cacheKey := "blocks:" + parentID
	var cached []domain.Block
	if s.cacheGet(ctx, cacheKey, &cached, "get_blocks") {
		return cached, nil
	}

	blocks, err := s.resolveBlocks(ctx, parentID, 0)
	if err != nil {
		return nil, err
	}

	s.cacheSet(ctx, cacheKey, blocks)
	return blocks, nil
}

func (s *Service) resolveBlocks(ctx context.Context, parentID string, depth int) ([]domain.Block, error) {
	if depth >= s.cfg.MaxBlockDepth {
		return nil, &notion.APIError{
			Message: fmt.Sprintf("block tree under %s exceeds max depth %d", parentID, s.cfg.MaxBlockDepth),
			Code:    notion.CodeInvalidRequest,
			Context: "resolve blocks",
		}
	}

	var raw []notion.Block
	cursor := ""
	for {
		cur := cursor
		resp, err := call(ctx, s, "list_block_children", func(ctx context.Context) (*notion.BlockChildrenResponse, error) {
			return s.client.ListBlockChildren(ctx, parentID, cur)
		})
		if err != nil {
			return nil, err
		}

		for _, b := range resp.Results {
			if b.Type == "" {
				continue
			}
			raw = append(raw, b)
		}

		if !resp.HasMore || resp.NextCursor == nil {
			break
		}
		cursor = *resp.NextCursor
	}

	blocks := make([]domain.Block, 0, len(raw))
	for i := range raw {
		var children []domain.Block
		if raw[i].HasChildren {
			var err error
			children, err = s.resolveBlocks(ctx, raw[i].ID, depth+1)
			if err != nil {
				return nil, err
			}
		}
		blocks = append(blocks, notion.TransformBlock(&raw[i], children))
	}
	return blocks, nil
}
