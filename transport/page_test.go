package transport_test

import (
	"encoding/json"
	"net/url"
	"testing"

	"github.com/jrsteele09/etokisana-client/transport"
	"github.com/stretchr/testify/require"
)

func TestListParams_Values(t *testing.T) {
	require.Empty(t, transport.ListParams{}.Values())

	v := transport.ListParams{Search: "riz", Limit: 10, Page: 2, Extra: url.Values{"isStocker": {"true"}}}.Values()
	require.Equal(t, "isStocker=true&limit=10&page=2&search=riz", v.Encode())
}

type named struct {
	Name string `json:"name"`
}

func TestPage_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		names []string
		total int
		page  int
	}{
		{"bare array", `[{"name":"a"},{"name":"b"}]`, []string{"a", "b"}, 0, 0},
		{"data envelope", `{"data":[{"name":"a"}],"total":12,"page":2,"limit":1,"totalPages":12}`, []string{"a"}, 12, 2},
		{"mongoose docs", `{"docs":[{"name":"a"},{"name":"b"}],"totalDocs":40,"page":1}`, []string{"a", "b"}, 40, 1},
		{"nested", `{"success":true,"data":{"docs":[{"name":"c"}],"totalDocs":3,"page":3}}`, []string{"c"}, 3, 3},
		{"empty", `{"data":[]}`, []string{}, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var page transport.Page[named]
			require.NoError(t, json.Unmarshal([]byte(tt.body), &page))

			names := []string{}
			for _, item := range page.Data {
				names = append(names, item.Name)
			}
			require.Equal(t, tt.names, names)
			require.Equal(t, tt.page, page.Page)
			if tt.total > 0 {
				require.Equal(t, tt.total, page.Total)
			}
		})
	}
}
