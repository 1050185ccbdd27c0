package lockmail

import (
	"context"
	"runtime"

	"github.com/bradenaw/juniper/parallel"
)

const maxPageSize = 150

// fetchPaged fetches all pages of a paginated endpoint concurrently and
// joins the results in page order.
func fetchPaged[T any](ctx context.Context, total, pageSize int, fn func(ctx context.Context, page, pageSize int) ([]T, error)) ([]T, error) {
	pages := total / pageSize

	if total%pageSize != 0 {
		pages++
	}

	res := make([][]T, pages)

	if err := parallel.DoContext(ctx, runtime.NumCPU(), pages, func(ctx context.Context, page int) error {
		items, err := fn(ctx, page, pageSize)
		if err != nil {
			return err
		}

		res[page] = items

		return nil
	}); err != nil {
		return nil, err
	}

	var out []T

	for _, page := range res {
		out = append(out, page...)
	}

	return out, nil
}
