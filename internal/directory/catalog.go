package directory

import (
	"fmt"

	"github.com/sangkips/ecs-receipts/internal/receipt"
)

// Issuers returns the issuer names offered for a category, in catalog order.
func (d *Directory) Issuers(c receipt.Category) []string {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if c == receipt.CategoryINS {
		out := make([]string, 0, len(d.insurance))
		for _, ins := range d.insurance {
			out = append(out, ins.Company)
		}
		return out
	}
	list := d.nonMF
	if c.UsesMFCatalog() {
		list = d.mf
	}
	out := make([]string, 0, len(list))
	for _, is := range list {
		out = append(out, is.Company)
	}
	return out
}

// Schemes returns the schemes of an MF or non-MF issuer. Unknown issuers yield nil.
func (d *Directory) Schemes(c receipt.Category, issuer string) []string {
	d.mu.RLock()
	defer d.mu.RUnlock()

	list := d.nonMF
	if c.UsesMFCatalog() {
		list = d.mf
	}
	for _, is := range list {
		if is.Company == issuer {
			return append([]string(nil), is.Schemes...)
		}
	}
	return nil
}

// InsuranceCategories returns the categories of an insurer.
func (d *Directory) InsuranceCategories(issuer string) []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	for _, ins := range d.insurance {
		if ins.Company == issuer {
			out := make([]string, 0, len(ins.Subsections))
			for _, s := range ins.Subsections {
				out = append(out, s.Name)
			}
			return out
		}
	}
	return nil
}

// InsuranceProducts returns the products of one insurer category.
func (d *Directory) InsuranceProducts(issuer, category string) []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	for _, ins := range d.insurance {
		if ins.Company != issuer {
			continue
		}
		for _, s := range ins.Subsections {
			if s.Name == category {
				return append([]string(nil), s.Products...)
			}
		}
	}
	return nil
}

// CheckIssuer reports ErrUnknownIssuer when issuer is not offered for c.
func (d *Directory) CheckIssuer(c receipt.Category, issuer string) error {
	if contains(d.Issuers(c), issuer) {
		return nil
	}
	return fmt.Errorf("%w: %s %q", ErrUnknownIssuer, c, issuer)
}

// CheckScheme reports ErrUnknownScheme when scheme is not offered by issuer.
func (d *Directory) CheckScheme(c receipt.Category, issuer, scheme string) error {
	if contains(d.Schemes(c, issuer), scheme) {
		return nil
	}
	return fmt.Errorf("%w: %q / %q", ErrUnknownScheme, issuer, scheme)
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
