package enum

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
)

// ReceiptStatus is the back-office review state of a stored receipt.
type ReceiptStatus int

const (
	ReceiptStatusPending  ReceiptStatus = 0
	ReceiptStatusVerified ReceiptStatus = 1
	ReceiptStatusRejected ReceiptStatus = 2
)

var receiptStatusNames = [...]string{"pending", "verified", "rejected"}

func (s ReceiptStatus) String() string {
	if s < 0 || int(s) >= len(receiptStatusNames) {
		return "unknown"
	}
	return receiptStatusNames[s]
}

// ParseReceiptStatus accepts a status name in any case.
func ParseReceiptStatus(str string) (ReceiptStatus, error) {
	for i, name := range receiptStatusNames {
		if strings.EqualFold(strings.TrimSpace(str), name) {
			return ReceiptStatus(i), nil
		}
	}
	return 0, fmt.Errorf("unknown receipt status %q", str)
}

func (s ReceiptStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *ReceiptStatus) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		var i int
		if err := json.Unmarshal(data, &i); err != nil {
			return err
		}
		*s = ReceiptStatus(i)
		return nil
	}
	parsed, err := ParseReceiptStatus(str)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

func (s ReceiptStatus) Value() (driver.Value, error) {
	return int64(s), nil
}

func (s *ReceiptStatus) Scan(value interface{}) error {
	if value == nil {
		*s = ReceiptStatusPending
		return nil
	}
	switch v := value.(type) {
	case int64:
		*s = ReceiptStatus(v)
	case int:
		*s = ReceiptStatus(v)
	case []byte:
		var i int
		if _, err := fmt.Sscan(string(v), &i); err != nil {
			return err
		}
		*s = ReceiptStatus(i)
	}
	return nil
}
