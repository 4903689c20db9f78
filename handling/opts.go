package handling

import (
	"net/http"
	"ns2po_server/services"
	"strconv"
	"strings"
)

// ParseBundleListOptions parses HTTP query parameters into BundleListOptions
func ParseBundleListOptions(r *http.Request) (*services.BundleListOptions, error) {
	query := r.URL.Query()

	// Early return if no query params
	if len(query) == 0 {
		return &services.BundleListOptions{}, nil
	}

	opts := &services.BundleListOptions{}
	var err error
	var valInt int
	var valFloat float64
	var valBool bool

	// Parse pagination parameters
	if page := query.Get("page"); page != "" {
		if valInt, err = strconv.Atoi(page); err != nil {
			return nil, err
		}
		opts.Page = valInt
	}

	if pageSize := query.Get("page_size"); pageSize != "" {
		if valInt, err = strconv.Atoi(pageSize); err != nil {
			return nil, err
		}
		opts.PageSize = valInt
	}

	// Parse enum filters
	if audience := query.Get("target_audience"); audience != "" {
		opts.TargetAudience = audience
	}

	if budgetRange := query.Get("budget_range"); budgetRange != "" {
		opts.BudgetRange = budgetRange
	}

	// Parse boolean filters
	if isActive := query.Get("is_active"); isActive != "" {
		if valBool, err = strconv.ParseBool(isActive); err != nil {
			return nil, err
		}
		opts.IsActive = &valBool
	}

	if isFeatured := query.Get("is_featured"); isFeatured != "" {
		featured, err := strconv.ParseBool(isFeatured)
		if err != nil {
			return nil, err
		}
		opts.IsFeatured = &featured
	}

	if searchTerm := query.Get("search"); searchTerm != "" {
		opts.SearchTerm = searchTerm
	}

	// Parse price and popularity filters
	if minPrice := query.Get("min_price"); minPrice != "" {
		if valFloat, err = strconv.ParseFloat(minPrice, 64); err != nil {
			return nil, err
		}
		opts.MinPrice = &valFloat
	}

	if maxPrice := query.Get("max_price"); maxPrice != "" {
		maxVal, err := strconv.ParseFloat(maxPrice, 64)
		if err != nil {
			return nil, err
		}
		opts.MaxPrice = &maxVal
	}

	if minPopularity := query.Get("min_popularity"); minPopularity != "" {
		popularity, err := strconv.Atoi(minPopularity)
		if err != nil {
			return nil, err
		}
		opts.MinPopularity = &popularity
	}

	if tags := query.Get("tags"); tags != "" {
		opts.Tags = splitAndTrim(tags)
	}

	// Parse sorting parameters
	if sortBy := query.Get("sort_by"); sortBy != "" {
		opts.SortBy = sortBy
	}

	if sortDirection := query.Get("sort_direction"); sortDirection != "" {
		opts.SortDirection = strings.ToUpper(sortDirection)
	}

	return opts, nil
}

// ParseProductListOptions parses HTTP query parameters into ProductListOptions
func ParseProductListOptions(r *http.Request) (*services.ProductListOptions, error) {
	query := r.URL.Query()

	if len(query) == 0 {
		return &services.ProductListOptions{}, nil
	}

	opts := &services.ProductListOptions{}

	if page := query.Get("page"); page != "" {
		valInt, err := strconv.Atoi(page)
		if err != nil {
			return nil, err
		}
		opts.Page = valInt
	}

	if pageSize := query.Get("page_size"); pageSize != "" {
		valInt, err := strconv.Atoi(pageSize)
		if err != nil {
			return nil, err
		}
		opts.PageSize = valInt
	}

	if category := query.Get("category"); category != "" {
		opts.Category = category
	}

	if isActive := query.Get("is_active"); isActive != "" {
		valBool, err := strconv.ParseBool(isActive)
		if err != nil {
			return nil, err
		}
		opts.IsActive = &valBool
	}

	if searchTerm := query.Get("search"); searchTerm != "" {
		opts.SearchTerm = searchTerm
	}

	if minPrice := query.Get("min_price"); minPrice != "" {
		valFloat, err := strconv.ParseFloat(minPrice, 64)
		if err != nil {
			return nil, err
		}
		opts.MinPrice = &valFloat
	}

	if maxPrice := query.Get("max_price"); maxPrice != "" {
		valFloat, err := strconv.ParseFloat(maxPrice, 64)
		if err != nil {
			return nil, err
		}
		opts.MaxPrice = &valFloat
	}

	if sortBy := query.Get("sort_by"); sortBy != "" {
		opts.SortBy = sortBy
	}

	if sortDirection := query.Get("sort_direction"); sortDirection != "" {
		opts.SortDirection = strings.ToUpper(sortDirection)
	}

	return opts, nil
}

// splitAndTrim splits a comma-separated string and trims whitespace efficiently
func splitAndTrim(s string) []string {
	if s == "" {
		return nil
	}

	parts := strings.Split(s, ",")
	// Trim in place to avoid extra allocations
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}
