package productive

import (
	"context"
	"net/url"
	"strconv"
)

// DefaultPageSize is the page size requested from every collection endpoint.
const DefaultPageSize = 200

// PageFetcher performs one page request. params already carry page[number] and page[size].
type PageFetcher interface {
	FetchPage(ctx context.Context, endpoint string, params url.Values) (*Document, error)
}

// PageFetcherFunc adapts a function to PageFetcher.
type PageFetcherFunc func(ctx context.Context, endpoint string, params url.Values) (*Document, error)

func (f PageFetcherFunc) FetchPage(ctx context.Context, endpoint string, params url.Values) (*Document, error) {
	return f(ctx, endpoint, params)
}

// FetchAll walks every page of a collection and returns the primary records.
func FetchAll(ctx context.Context, f PageFetcher, endpoint string, params url.Values, pageSize int) ([]Resource, error) {
	data, _, err := FetchAllWithIncluded(ctx, f, endpoint, params, pageSize)
	return data, err
}

// FetchAllWithIncluded walks every page until a short page and accumulates primary and
// sideloaded records. Any page failure discards what was gathered so far.
func FetchAllWithIncluded(ctx context.Context, f PageFetcher, endpoint string, params url.Values, pageSize int) ([]Resource, []Resource, error) {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	var data, included []Resource
	for page := 1; ; page++ {
		if err := ctx.Err(); err != nil {
			return nil, nil, &UpstreamFetchError{Endpoint: endpoint, Page: page, Err: err}
		}

		q := cloneValues(params)
		q.Set("page[number]", strconv.Itoa(page))
		q.Set("page[size]", strconv.Itoa(pageSize))

		doc, err := f.FetchPage(ctx, endpoint, q)
		if err != nil {
			if IsUpstream(err) {
				return nil, nil, err
			}
			return nil, nil, &UpstreamFetchError{Endpoint: endpoint, Page: page, Err: err}
		}
		if doc == nil {
			return nil, nil, &UpstreamFetchError{Endpoint: endpoint, Page: page, Err: ErrMalformedResponse}
		}

		data = append(data, doc.Data...)
		included = append(included, doc.Included...)

		if len(doc.Data) < pageSize {
			break
		}
	}
	return data, included, nil
}

func cloneValues(v url.Values) url.Values {
	out := make(url.Values, len(v)+2)
	for k, vals := range v {
		out[k] = append([]string(nil), vals...)
	}
	return out
}
