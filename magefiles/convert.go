package main

import (
	"fmt"
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// corpusOut receives the Typst rendering of the sample corpus.
const corpusOut = "bin/corpus"

// Convert builds the CLI and converts the sample corpus to Typst with an
// HTML diagnostics report.
func Convert() error {
	mg.Deps(Build)
	files, err := filepath.Glob(filepath.Join(corpusDir, "*.tex"))
	if err != nil {
		return err
	}
	args := append([]string{"tex2typst", "--force", "--out-dir", corpusOut,
		"--report", filepath.Join(corpusOut, "report.html")}, files...)
	if err := sh.RunWithV(map[string]string{"TYX_STORE_ENABLED": "false"}, filepath.Join(binDir, binName), args...); err != nil {
		return err
	}
	fmt.Printf("Converted %d documents into %s\n", len(files), corpusOut)
	return nil
}
