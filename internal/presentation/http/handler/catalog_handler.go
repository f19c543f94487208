package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/sangkips/ecs-receipts/internal/directory"
	"github.com/sangkips/ecs-receipts/internal/presentation/http/dto/response"
	"github.com/sangkips/ecs-receipts/internal/receipt"
	"github.com/sangkips/ecs-receipts/pkg/apperror"
)

// CatalogHandler exposes the reference data the wizard is driven by.
type CatalogHandler struct {
	dir *directory.Directory
}

func NewCatalogHandler(dir *directory.Directory) *CatalogHandler {
	return &CatalogHandler{dir: dir}
}

// Employee looks up an employee code. A miss is a 404 with empty fields.
func (h *CatalogHandler) Employee(c *gin.Context) {
	emp, ok := h.dir.LookupEmployee(c.Param("code"))
	if !ok {
		response.NotFound(c, "No match for that code.")
		return
	}
	response.OK(c, "Employee found", gin.H{
		"emp_code":     emp.Code,
		"employeeName": emp.Name,
		"branch":       emp.Branch,
	})
}

// Categories lists the product categories.
func (h *CatalogHandler) Categories(c *gin.Context) {
	response.OK(c, "Categories retrieved successfully", receipt.Categories)
}

// Issuers lists the issuers of a category.
func (h *CatalogHandler) Issuers(c *gin.Context) {
	cat, ok := queryCategory(c)
	if !ok {
		return
	}
	response.OK(c, "Issuers retrieved successfully", nonNil(h.dir.Issuers(cat)))
}

// Schemes lists what an issuer offers in a category. For insurance the
// optional ins_category narrows the list to one subsection's products.
func (h *CatalogHandler) Schemes(c *gin.Context) {
	cat, ok := queryCategory(c)
	if !ok {
		return
	}
	issuer := c.Query("issuer")

	if cat == receipt.CategoryINS {
		if insCat := c.Query("ins_category"); insCat != "" {
			response.OK(c, "Products retrieved successfully", nonNil(h.dir.InsuranceProducts(issuer, insCat)))
			return
		}
		response.OK(c, "Insurance categories retrieved successfully", nonNil(h.dir.InsuranceCategories(issuer)))
		return
	}
	response.OK(c, "Schemes retrieved successfully", nonNil(h.dir.Schemes(cat, issuer)))
}

func queryCategory(c *gin.Context) (receipt.Category, bool) {
	cat, err := receipt.ParseCategory(c.Query("category"))
	if err != nil {
		response.Error(c, apperror.NewValidationError([]apperror.FieldError{
			{Field: "category", Message: "must be one of MF, FD, BOND, NCD, IPO, INS"},
		}))
		return "", false
	}
	return cat, true
}

func nonNil(list []string) []string {
	if list == nil {
		return []string{}
	}
	return list
}
