package directory

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/sangkips/ecs-receipts/internal/receipt"
)

// Files names the reference datasets. Each may be JSON or YAML, chosen by
// extension.
type Files struct {
	Employees        string
	Investors        string
	MFSchemes        string
	NonMFIssuers     string
	InsuranceIssuers string
}

// DefaultFiles returns the dataset names used under dir.
func DefaultFiles(dir string) Files {
	return Files{
		Employees:        filepath.Join(dir, "employees.json"),
		Investors:        filepath.Join(dir, "investors.json"),
		MFSchemes:        filepath.Join(dir, "mf_schemes.json"),
		NonMFIssuers:     filepath.Join(dir, "non_mf_issuers.json"),
		InsuranceIssuers: filepath.Join(dir, "insurance_issuers.yaml"),
	}
}

// Load reads every dataset and builds the directory.
func Load(files Files) (*Directory, error) {
	var (
		employees []Employee
		investors []receipt.InvestorInfo
		mf, nonMF []Issuer
		insurance []InsuranceIssuer
	)
	steps := []struct {
		path string
		into interface{}
	}{
		{files.Employees, &employees},
		{files.Investors, &investors},
		{files.MFSchemes, &mf},
		{files.NonMFIssuers, &nonMF},
		{files.InsuranceIssuers, &insurance},
	}
	for _, s := range steps {
		if err := decodeFile(s.path, s.into); err != nil {
			return nil, err
		}
	}
	return New(employees, investors, mf, nonMF, insurance), nil
}

func decodeFile(path string, into interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, into)
	default:
		err = json.Unmarshal(data, into)
	}
	if err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}
