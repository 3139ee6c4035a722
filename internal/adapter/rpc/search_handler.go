package rpc

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"connectrpc.com/connect"
	"github.com/sienaindigoandlavender/festivals-in-morocco/internal/entity"
)

// SearchEventsPath is the public read endpoint backing the catalog's
// search experience. Registered as a public procedure so it bypasses the
// JWT authn middleware.
const SearchEventsPath = "/api/v1/search/events"

// NewSearchHandler exposes entity.SearchClient.Query as a public GET
// endpoint. The search projection synchronizer is the only writer to the
// collection; this handler only ever reads it.
func NewSearchHandler(client entity.SearchClient) func(opts ...connect.HandlerOption) (string, http.Handler) {
	return func(_ ...connect.HandlerOption) (string, http.Handler) {
		return SearchEventsPath, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			q := entity.SearchQuery{
				Q:        r.URL.Query().Get("q"),
				FilterBy: r.URL.Query().Get("filter_by"),
				SortBy:   r.URL.Query().Get("sort_by"),
			}
			if qb := r.URL.Query().Get("query_by"); qb != "" {
				q.QueryBy = strings.Split(qb, ",")
			}
			if fb := r.URL.Query().Get("facet_by"); fb != "" {
				q.FacetBy = strings.Split(fb, ",")
			}
			if page, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil {
				q.Page = page
			}
			if perPage, err := strconv.Atoi(r.URL.Query().Get("per_page")); err == nil {
				q.PerPage = perPage
			}

			result, err := client.Query(r.Context(), q)
			if err != nil {
				writeJSONError(w, http.StatusInternalServerError, err)
				return
			}

			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(result)
		})
	}
}
