package services

import (
	"context"

	"github.com/desertthunder/spotilytics/internal/models"
)

// Chunk splits items into consecutive slices of at most size elements.
func Chunk[T any](items []T, size int) [][]T {
	if len(items) == 0 {
		return nil
	}
	if size <= 0 {
		return [][]T{items}
	}

	chunks := make([][]T, 0, (len(items)+size-1)/size)
	for start := 0; start < len(items); start += size {
		end := min(start+size, len(items))
		chunks = append(chunks, items[start:end])
	}
	return chunks
}

// FetchAllPages walks an offset-paginated listing until a short page or the reported total.
//
// Items keep provider order and are not deduplicated. Any page error aborts the walk.
func FetchAllPages[T any](ctx context.Context, pageSize int, fetchPage func(ctx context.Context, offset, limit int) (models.Page[T], error)) ([]T, error) {
	if pageSize <= 0 {
		pageSize = 50
	}

	all := []T{}
	for offset := 0; ; offset += pageSize {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		page, err := fetchPage(ctx, offset, pageSize)
		if err != nil {
			return nil, err
		}
		all = append(all, page.Items...)

		if len(page.Items) < pageSize {
			break
		}
		if page.Total > 0 && len(all) >= page.Total {
			break
		}
	}
	return all, nil
}
