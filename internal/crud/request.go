package crud

import (
	"context"
	"net/url"
	"strconv"
)

// Query parameter names read from the ambient request.
const (
	ParamColumn = "column"
	ParamOrder  = "order"
	ParamSearch = "search"
	ParamPage   = "page"
)

type requestValuesKey struct{}

// WithRequestValues attaches the query values of the current request to ctx.
func WithRequestValues(ctx context.Context, values url.Values) context.Context {
	return context.WithValue(ctx, requestValuesKey{}, values)
}

// RequestValues returns the values attached by WithRequestValues, or an empty set.
func RequestValues(ctx context.Context) url.Values {
	if values, ok := ctx.Value(requestValuesKey{}).(url.Values); ok && values != nil {
		return values
	}
	return url.Values{}
}

func requestSortOptions(ctx context.Context) (SortOptions, bool) {
	values := RequestValues(ctx)
	if !values.Has(ParamColumn) || !values.Has(ParamOrder) {
		return SortOptions{}, false
	}
	return SortOptions{Column: values.Get(ParamColumn), Order: values.Get(ParamOrder)}, true
}

func requestPage(ctx context.Context) int {
	page, err := strconv.Atoi(RequestValues(ctx).Get(ParamPage))
	if err != nil || page < 1 {
		return 1
	}
	return page
}

func requestSearch(ctx context.Context) string {
	return RequestValues(ctx).Get(ParamSearch)
}
