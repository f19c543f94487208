package main

import (
	"os"

	"github.com/shopspring/decimal"

	"github.com/sangkips/ecs-receipts/internal/cli"
)

func main() {
	decimal.MarshalJSONWithoutQuotes = true
	os.Exit(cli.Execute())
}
