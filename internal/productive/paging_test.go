package productive

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"testing"
)

func pagesOf(sizes ...int) PageFetcherFunc {
	return func(ctx context.Context, endpoint string, params url.Values) (*Document, error) {
		page, _ := strconv.Atoi(params.Get("page[number]"))
		if page < 1 || page > len(sizes) {
			return &Document{}, nil
		}
		doc := &Document{}
		for i := 0; i < sizes[page-1]; i++ {
			doc.Data = append(doc.Data, Resource{ID: fmt.Sprintf("%d-%d", page, i), Type: "tasks"})
		}
		doc.Included = []Resource{{ID: strconv.Itoa(page), Type: "people"}}
		return doc, nil
	}
}

func TestFetchAll_Termination(t *testing.T) {
	tests := []struct {
		name      string
		sizes     []int
		wantCalls int
		wantCount int
	}{
		{"three pages with short tail", []int{200, 200, 37}, 3, 437},
		{"empty first page", []int{0}, 1, 0},
		{"single short page", []int{5}, 1, 5},
		{"exact multiple needs trailing empty page", []int{200, 0}, 2, 200},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			src := pagesOf(tt.sizes...)
			counting := PageFetcherFunc(func(ctx context.Context, endpoint string, params url.Values) (*Document, error) {
				calls++
				if got := params.Get("page[size]"); got != "200" {
					t.Errorf("Expected page[size]=200, got %q", got)
				}
				return src(ctx, endpoint, params)
			})

			got, err := FetchAll(context.Background(), counting, "tasks", url.Values{"filter[task_list_id]": {"9"}}, DefaultPageSize)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if calls != tt.wantCalls {
				t.Errorf("Expected %d page requests, got %d", tt.wantCalls, calls)
			}
			if len(got) != tt.wantCount {
				t.Errorf("Expected %d records, got %d", tt.wantCount, len(got))
			}
		})
	}
}

func TestFetchAllWithIncluded_AccumulatesIncluded(t *testing.T) {
	data, included, err := FetchAllWithIncluded(context.Background(), pagesOf(200, 200, 1), "tasks", nil, DefaultPageSize)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(data) != 401 {
		t.Errorf("Expected 401 records, got %d", len(data))
	}
	if len(included) != 3 {
		t.Errorf("Expected one included record per page (3), got %d", len(included))
	}
	if data[0].ID != "1-0" || data[400].ID != "3-0" {
		t.Errorf("Records out of page order: first=%s last=%s", data[0].ID, data[400].ID)
	}
}

func TestFetchAll_FailsWithoutPartialResult(t *testing.T) {
	boom := errors.New("connection reset")
	src := PageFetcherFunc(func(ctx context.Context, endpoint string, params url.Values) (*Document, error) {
		if params.Get("page[number]") == "2" {
			return nil, boom
		}
		return pagesOf(200)(ctx, endpoint, params)
	})

	got, err := FetchAll(context.Background(), src, "time_entries", nil, DefaultPageSize)
	if got != nil {
		t.Errorf("Expected no records on failure, got %d", len(got))
	}

	var fe *UpstreamFetchError
	if !errors.As(err, &fe) {
		t.Fatalf("Expected UpstreamFetchError, got %v", err)
	}
	if fe.Page != 2 || fe.Endpoint != "time_entries" {
		t.Errorf("Expected failure on time_entries page 2, got %s page %d", fe.Endpoint, fe.Page)
	}
	if !errors.Is(err, boom) {
		t.Error("Expected the cause to be preserved")
	}
}

func TestFetchAll_DoesNotMutateParams(t *testing.T) {
	params := url.Values{"filter[project_id]": {"4"}}
	if _, err := FetchAll(context.Background(), pagesOf(1), "boards", params, DefaultPageSize); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if params.Has("page[number]") {
		t.Error("caller params were modified")
	}
}

func TestFetchAll_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := FetchAll(ctx, pagesOf(200, 200), "tasks", nil, DefaultPageSize)
	if !IsUpstream(err) || !errors.Is(err, context.Canceled) {
		t.Errorf("Expected upstream error wrapping context.Canceled, got %v", err)
	}
}
