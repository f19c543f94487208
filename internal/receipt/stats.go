package receipt

import "github.com/shopspring/decimal"

// EmployeeTotal aggregates receipts issued by one employee.
type EmployeeTotal struct {
	EmpCode      string          `json:"emp_code"`
	EmployeeName string          `json:"employee_name"`
	Count        int64           `json:"count"`
	Amount       decimal.Decimal `json:"amount"`
}

// Summary is the headline dashboard figure set.
type Summary struct {
	TotalReceipts int64           `json:"totalReceipts"`
	TotalAmount   decimal.Decimal `json:"totalAmount"`
	ByEmployee    []EmployeeTotal `json:"byEmployee"`
}

type CategoryTotal struct {
	Category string          `json:"category"`
	Count    int64           `json:"count"`
	Amount   decimal.Decimal `json:"amount"`
}

type DayTotal struct {
	Day    string          `json:"day"`
	Count  int64           `json:"count"`
	Amount decimal.Decimal `json:"amount"`
}
