package pagination

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"api_commerce/internal/apperror"
)

func TestOffset(t *testing.T) {
	assert.Equal(t, 0, Pagination{Page: 1, PerPage: 10}.Offset())
	assert.Equal(t, 20, Pagination{Page: 3, PerPage: 10}.Offset())
}

func TestValidate(t *testing.T) {
	assert.NoError(t, Pagination{Page: 1, PerPage: 100}.Validate(100))

	err := Pagination{Page: 0, PerPage: 10}.Validate(100)
	require.Error(t, err)
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))

	assert.Error(t, Pagination{Page: 1, PerPage: 0}.Validate(100))
	assert.Error(t, Pagination{Page: 1, PerPage: 101}.Validate(100))
	assert.NoError(t, Pagination{Page: 1, PerPage: 1000}.Validate(0))
}

// For N items and page size P there are ceil(N/P) pages and page k holds
// min(P, N-(k-1)*P) items, zero past the last page.
func TestWindowCounts(t *testing.T) {
	for _, n := range []int{0, 1, 7, 10, 23} {
		all := make([]int, n)
		for i := range all {
			all[i] = i
		}
		for _, per := range []int{1, 3, 10} {
			pages := (n + per - 1) / per
			for k := 1; k <= pages+1; k++ {
				p := Pagination{Page: k, PerPage: per}
				res := NewResult(p, n, Window(all, p))

				want := 0
				if rest := n - (k-1)*per; rest > 0 {
					want = min(per, rest)
				}
				name := strconv.Itoa(n) + "/" + strconv.Itoa(per) + "/" + strconv.Itoa(k)
				assert.Equal(t, want, res.ItemsCount, name)
				assert.Equal(t, len(res.Items), res.ItemsCount, name)
				assert.Equal(t, n, res.TotalItems, name)
				assert.Equal(t, pages, res.TotalPages(), name)
				assert.Equal(t, k, res.CurrentPage, name)
				assert.Equal(t, per, res.PerPage, name)
			}
		}
	}
}

func TestEmptyResultKeepsWindow(t *testing.T) {
	res := Empty[string](Pagination{Page: 4, PerPage: 25}, 0)
	assert.NotNil(t, res.Items)
	assert.Empty(t, res.Items)
	assert.Equal(t, 4, res.CurrentPage)
	assert.Equal(t, 25, res.PerPage)
}

func TestMap(t *testing.T) {
	res := NewResult(Pagination{Page: 2, PerPage: 2}, 5, []int{3, 4})
	mapped := Map(res, strconv.Itoa)

	assert.Equal(t, []string{"3", "4"}, mapped.Items)
	assert.Equal(t, 2, mapped.ItemsCount)
	assert.Equal(t, 5, mapped.TotalItems)
	assert.Equal(t, 2, mapped.CurrentPage)
}
