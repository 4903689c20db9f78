package handling

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBundleListOptionsEmptyQuery(t *testing.T) {
	r := httptest.NewRequest("GET", "/campaign-bundles", nil)

	opts, err := ParseBundleListOptions(r)
	require.NoError(t, err)
	assert.Zero(t, opts.Page)
	assert.Zero(t, opts.PageSize)
	assert.Nil(t, opts.IsActive)
	assert.Nil(t, opts.Tags)
}

func TestParseBundleListOptionsAllParams(t *testing.T) {
	r := httptest.NewRequest("GET", "/campaign-bundles?page=2&page_size=25&target_audience=local"+
		"&budget_range=starter&is_active=true&is_featured=false&search=affiche"+
		"&min_price=1000&max_price=50000&min_popularity=7&tags=textile,%20goodies%20&sort_by=popularity&sort_direction=desc", nil)

	opts, err := ParseBundleListOptions(r)
	require.NoError(t, err)

	assert.Equal(t, 2, opts.Page)
	assert.Equal(t, 25, opts.PageSize)
	assert.Equal(t, "local", opts.TargetAudience)
	assert.Equal(t, "starter", opts.BudgetRange)
	require.NotNil(t, opts.IsActive)
	assert.True(t, *opts.IsActive)
	require.NotNil(t, opts.IsFeatured)
	assert.False(t, *opts.IsFeatured)
	assert.Equal(t, "affiche", opts.SearchTerm)
	require.NotNil(t, opts.MinPrice)
	assert.Equal(t, 1000.0, *opts.MinPrice)
	require.NotNil(t, opts.MaxPrice)
	assert.Equal(t, 50000.0, *opts.MaxPrice)
	require.NotNil(t, opts.MinPopularity)
	assert.Equal(t, 7, *opts.MinPopularity)
	assert.Equal(t, []string{"textile", "goodies"}, opts.Tags)
	assert.Equal(t, "popularity", opts.SortBy)
	assert.Equal(t, "DESC", opts.SortDirection)
}

func TestParseBundleListOptionsBadValues(t *testing.T) {
	for _, query := range []string{
		"page=abc",
		"page_size=abc",
		"is_active=maybe",
		"is_featured=2x",
		"min_price=cheap",
		"max_price=free",
		"min_popularity=high",
	} {
		r := httptest.NewRequest("GET", "/campaign-bundles?"+query, nil)
		_, err := ParseBundleListOptions(r)
		assert.Error(t, err, query)
	}
}

func TestParseProductListOptions(t *testing.T) {
	r := httptest.NewRequest("GET", "/products?page=3&page_size=10&category=textile"+
		"&is_active=false&search=tshirt&min_price=5&max_price=200&sort_by=name&sort_direction=asc", nil)

	opts, err := ParseProductListOptions(r)
	require.NoError(t, err)

	assert.Equal(t, 3, opts.Page)
	assert.Equal(t, 10, opts.PageSize)
	assert.Equal(t, "textile", opts.Category)
	require.NotNil(t, opts.IsActive)
	assert.False(t, *opts.IsActive)
	assert.Equal(t, "tshirt", opts.SearchTerm)
	assert.Equal(t, "ASC", opts.SortDirection)
}

func TestParseProductListOptionsBadValues(t *testing.T) {
	for _, query := range []string{"page=x", "is_active=x", "min_price=x"} {
		r := httptest.NewRequest("GET", "/products?"+query, nil)
		_, err := ParseProductListOptions(r)
		assert.Error(t, err, query)
	}
}

func TestSplitAndTrim(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, splitAndTrim(" a, b ,c"))
	assert.Nil(t, splitAndTrim(""))
}
