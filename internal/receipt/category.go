package receipt

import (
	"fmt"
	"strings"
)

// Category is the product family a receipt is issued for.
type Category string

const (
	CategoryMF   Category = "MF"
	CategoryFD   Category = "FD"
	CategoryINS  Category = "INS"
	CategoryBOND Category = "BOND"
	CategoryNCD  Category = "NCD"
	CategoryIPO  Category = "IPO"
)

// Categories lists every category in display order.
var Categories = []Category{CategoryMF, CategoryFD, CategoryINS, CategoryBOND, CategoryNCD, CategoryIPO}

// ParseCategory accepts a category tag in any case.
func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToUpper(strings.TrimSpace(s)))
	if c.Valid() {
		return c, nil
	}
	return "", fmt.Errorf("unknown product category %q", s)
}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Label is the issuer category printed on the receipt.
func (c Category) Label() string {
	switch c {
	case CategoryMF:
		return "Mutual Fund"
	case CategoryFD:
		return "Fixed Deposit"
	case CategoryINS:
		return "Insurance"
	case CategoryBOND:
		return "Bonds"
	case CategoryNCD:
		return "NCD"
	case CategoryIPO:
		return "IPO"
	}
	return string(c)
}

// UsesMFCatalog reports whether issuers for c come from the mutual fund catalog.
// Insurance has its own three-level catalog; everything else shares the non-MF list.
func (c Category) UsesMFCatalog() bool {
	return c == CategoryMF
}
