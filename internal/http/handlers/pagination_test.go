package handlers

import (
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"propertyapi/internal/types"
)

func contextFor(rawQuery string) *gin.Context {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/api/property-monies?"+rawQuery, nil)
	return c
}

func allowAll(string) bool { return true }

func TestParsePageableDefaults(t *testing.T) {
	p, err := ParsePageable(contextFor(""), allowAll)
	require.NoError(t, err)
	assert.Equal(t, types.Pageable{Page: 0, Size: DefaultPageSize}, p)
}

func TestParsePageableClampsAndIgnoresGarbage(t *testing.T) {
	cases := []struct {
		query    string
		wantPage int
		wantSize int
	}{
		{"page=3&size=50", 3, 50},
		{"page=-1&size=0", 0, DefaultPageSize},
		{"page=x&size=y", 0, DefaultPageSize},
		{"size=100000", 0, MaxPageSize},
	}
	for _, tc := range cases {
		p, err := ParsePageable(contextFor(tc.query), allowAll)
		require.NoError(t, err, tc.query)
		assert.Equal(t, tc.wantPage, p.Page, tc.query)
		assert.Equal(t, tc.wantSize, p.Size, tc.query)
	}
}

func TestParsePageableBoundsHugePage(t *testing.T) {
	p, err := ParsePageable(contextFor("page=461168601842738791&size=20"), allowAll)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, p.Offset(), 0)
	assert.Equal(t, math.MaxInt/20-1, p.Page)

	h := http.Header{}
	PaginationHeaders(h, types.Page[int]{Total: 3, Pageable: p}, "/api/property-monies")
	assert.Equal(t, "3", h.Get("X-Total-Count"))
	assert.NotContains(t, h.Get("Link"), "page=-")
	assert.Contains(t, h.Get("Link"), `</api/property-monies?page=0&size=20>; rel="last"`)
}

func TestParsePageableSort(t *testing.T) {
	p, err := ParsePageable(contextFor("sort=amount,desc&sort=currency&sort=id,propertyId,ASC"), allowAll)
	require.NoError(t, err)
	assert.Equal(t, []types.Order{
		{Property: "amount", Direction: types.Desc},
		{Property: "currency", Direction: types.Asc},
		{Property: "id", Direction: types.Asc},
		{Property: "propertyId", Direction: types.Asc},
	}, p.Sort)
}

func TestParsePageableRejectsUnknownSort(t *testing.T) {
	_, err := ParsePageable(contextFor("sort=secret"), func(p string) bool { return p == "id" })
	require.Error(t, err)
	assert.Contains(t, err.Error(), "secret")
}

func TestPaginationHeadersFirstPage(t *testing.T) {
	h := http.Header{}
	page := types.Page[int]{Content: []int{1, 2}, Total: 5, Pageable: types.Pageable{Page: 0, Size: 2}}

	PaginationHeaders(h, page, "/api/property-monies")

	assert.Equal(t, "5", h.Get("X-Total-Count"))
	assert.Equal(t,
		`</api/property-monies?page=1&size=2>; rel="next",`+
			`</api/property-monies?page=2&size=2>; rel="last",`+
			`</api/property-monies?page=0&size=2>; rel="first"`,
		h.Get("Link"))
}

func TestPaginationHeadersLastPage(t *testing.T) {
	h := http.Header{}
	page := types.Page[int]{Content: []int{5}, Total: 5, Pageable: types.Pageable{Page: 2, Size: 2}}

	PaginationHeaders(h, page, "/api/property-monies")

	assert.Equal(t,
		`</api/property-monies?page=1&size=2>; rel="prev",`+
			`</api/property-monies?page=2&size=2>; rel="last",`+
			`</api/property-monies?page=0&size=2>; rel="first"`,
		h.Get("Link"))
}

func TestHeaderUtilAlerts(t *testing.T) {
	hu := NewHeaderUtil("ledgerApp")
	h := http.Header{}

	hu.EntityCreationAlert(h, "propertyMoney", "12")
	assert.Equal(t, "ledgerApp.propertyMoney.created", h.Get("X-ledgerApp-alert"))
	assert.Equal(t, "12", h.Get("X-ledgerApp-params"))

	h = http.Header{}
	hu.FailureAlert(h, "propertyMoney", "idnull")
	assert.Equal(t, "error.idnull", h.Get("X-ledgerApp-error"))
	assert.Equal(t, "propertyMoney", h.Get("X-ledgerApp-params"))
	assert.Empty(t, h.Get("X-ledgerApp-alert"))

	assert.Contains(t, hu.ExposedHeaders(), "X-ledgerApp-alert")
	assert.Contains(t, hu.ExposedHeaders(), "X-Total-Count")
}
