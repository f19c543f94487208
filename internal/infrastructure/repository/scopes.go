package repository

import (
	"strings"

	domainRepo "github.com/sangkips/ecs-receipts/internal/domain/repository"
	"gorm.io/gorm"
)

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern builds a case-folded LIKE pattern matching s anywhere.
// Wildcards typed by the user match literally; pair it with ESCAPE '\'.
func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(s)) + "%"
}

// receiptSortColumns maps public sort keys to columns.
var receiptSortColumns = map[string]string{
	"date":       "receipt_date",
	"created_at": "created_at",
	"amount":     "investment_amount",
	"receipt_no": "receipt_no",
	"emp_code":   "emp_code",
	"category":   "product_category",
	"issuer":     "issuer_company",
	"investor":   "investor_name",
}

// ReceiptScope applies the filter conditions shared by listings and exports.
func ReceiptScope(f domainRepo.ReceiptFilter) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if f.IncludeDeleted {
			db = db.Unscoped()
		}
		if f.From != "" {
			db = db.Where("receipt_date >= ?", f.From)
		}
		if f.To != "" {
			db = db.Where("receipt_date <= ?", f.To)
		}
		if f.Category != "" {
			db = db.Where("product_category = ?", strings.ToUpper(f.Category))
		}
		if f.Issuer != "" {
			db = db.Where(`LOWER(issuer_company) LIKE ? ESCAPE '\'`, containsPattern(f.Issuer))
		}
		if f.EmpCode != "" {
			db = db.Where("emp_code = ?", strings.ToUpper(f.EmpCode))
		}
		if f.Status != nil {
			db = db.Where("status = ?", *f.Status)
		}
		return db
	}
}

// StatsScope restricts aggregates to the requested window and employee.
func StatsScope(f domainRepo.StatsFilter) func(db *gorm.DB) *gorm.DB {
	return ReceiptScope(domainRepo.ReceiptFilter{From: f.From, To: f.To, EmpCode: f.EmpCode})
}

// SortOrder turns "field:dir" into an ORDER BY clause. Unknown fields fall
// back to newest first.
func SortOrder(sort string) string {
	field, dir, _ := strings.Cut(strings.TrimSpace(sort), ":")
	col, ok := receiptSortColumns[strings.ToLower(field)]
	if !ok {
		return "created_at DESC"
	}
	if strings.EqualFold(dir, "asc") {
		return col + " ASC"
	}
	return col + " DESC"
}
