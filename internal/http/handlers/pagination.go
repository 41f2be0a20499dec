// README: Page/size/sort query parsing and X-Total-Count / Link response headers.
package handlers

import (
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"propertyapi/internal/types"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 2000
)

type invalidSortError struct {
	property string
}

func (e invalidSortError) Error() string {
	return fmt.Sprintf("no sortable property %q", e.property)
}

// ParsePageable reads page (zero-based), size and repeated sort=prop[,prop...][,asc|desc]
// parameters. Malformed numbers fall back to defaults; unknown sort properties are rejected.
func ParsePageable(c *gin.Context, sortable func(string) bool) (types.Pageable, error) {
	p := types.Pageable{Page: 0, Size: DefaultPageSize}

	if page, err := strconv.Atoi(c.Query("page")); err == nil && page > 0 {
		p.Page = page
	}
	if size, err := strconv.Atoi(c.Query("size")); err == nil && size > 0 {
		p.Size = min(size, MaxPageSize)
	}
	// page*size and page+1 must stay within int.
	p.Page = min(p.Page, math.MaxInt/p.Size-1)

	for _, raw := range c.QueryArray("sort") {
		tokens := strings.Split(raw, ",")
		dir := types.Asc
		if last := strings.ToLower(strings.TrimSpace(tokens[len(tokens)-1])); last == "asc" || last == "desc" {
			dir = types.Direction(last)
			tokens = tokens[:len(tokens)-1]
		}
		for _, t := range tokens {
			prop := strings.TrimSpace(t)
			if prop == "" {
				continue
			}
			if sortable != nil && !sortable(prop) {
				return types.Pageable{}, invalidSortError{property: prop}
			}
			p.Sort = append(p.Sort, types.Order{Property: prop, Direction: dir})
		}
	}
	return p, nil
}

// PaginationHeaders sets X-Total-Count and a Link header with next, prev, last
// and first relations for baseURL.
func PaginationHeaders[T any](header http.Header, page types.Page[T], baseURL string) {
	header.Set("X-Total-Count", strconv.FormatInt(page.Total, 10))

	size := page.Pageable.Size
	number := page.Number()
	totalPages := page.TotalPages()

	var link strings.Builder
	if number+1 < totalPages {
		fmt.Fprintf(&link, "<%s>; rel=\"next\",", pageURI(baseURL, number+1, size))
	}
	if number > 0 {
		fmt.Fprintf(&link, "<%s>; rel=\"prev\",", pageURI(baseURL, number-1, size))
	}
	lastPage := 0
	if totalPages > 0 {
		lastPage = totalPages - 1
	}
	fmt.Fprintf(&link, "<%s>; rel=\"last\",", pageURI(baseURL, lastPage, size))
	fmt.Fprintf(&link, "<%s>; rel=\"first\"", pageURI(baseURL, 0, size))
	header.Set("Link", link.String())
}

func pageURI(baseURL string, page, size int) string {
	return baseURL + "?page=" + strconv.Itoa(page) + "&size=" + strconv.Itoa(size)
}
