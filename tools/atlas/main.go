// atlas 的 external_schema 程式，將 gorm model 轉為 DDL 輸出到 stdout
package main

import (
	"fmt"
	"io"
	"os"

	"ariga.io/atlas-provider-gorm/gormschema"
	"github.com/spf13/pflag"

	"imagestore/models"
)

func main() {
	dialect := pflag.String("dialect", "postgres", "postgres or sqlite")
	pflag.Parse()

	stmts, err := gormschema.New(*dialect).Load(&models.Image{})
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "fail to load gorm schema: %v\n", err)
		os.Exit(1)
	}
	_, _ = io.WriteString(os.Stdout, stmts)
}
