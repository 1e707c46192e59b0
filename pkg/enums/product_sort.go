package enums

import (
	"fmt"
	"strings"
)

// ProductSortField enumerates the catalog sort keys.
type ProductSortField string

const (
	ProductSortName   ProductSortField = "name"
	ProductSortPrice  ProductSortField = "price"
	ProductSortRating ProductSortField = "rating"
)

var validProductSortFields = []ProductSortField{
	ProductSortName,
	ProductSortPrice,
	ProductSortRating,
}

func (f ProductSortField) String() string {
	return string(f)
}

func (f ProductSortField) IsValid() bool {
	for _, candidate := range validProductSortFields {
		if candidate == f {
			return true
		}
	}
	return false
}

// ParseProductSortField converts raw input, defaulting to name when empty.
func ParseProductSortField(value string) (ProductSortField, error) {
	value = strings.ToLower(strings.TrimSpace(value))
	if value == "" {
		return ProductSortName, nil
	}
	for _, candidate := range validProductSortFields {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid sort field %q", value)
}

// SortDirection is asc or desc.
type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

func (d SortDirection) String() string {
	return string(d)
}

func (d SortDirection) IsValid() bool {
	return d == SortAsc || d == SortDesc
}

// ParseSortDirection converts raw input, defaulting to asc when empty.
func ParseSortDirection(value string) (SortDirection, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", string(SortAsc):
		return SortAsc, nil
	case string(SortDesc):
		return SortDesc, nil
	}
	return "", fmt.Errorf("invalid sort order %q", value)
}
