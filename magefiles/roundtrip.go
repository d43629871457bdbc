package main

import (
	"fmt"
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// Roundtrip builds the CLI and checks that every document of the sample
// corpus survives conversion to Typst and back.
func Roundtrip() error {
	mg.Deps(Build)
	files, err := filepath.Glob(filepath.Join(corpusDir, "*.tex"))
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no documents in %s", corpusDir)
	}
	args := append([]string{"roundtrip", "--direction", "tex2typst"}, files...)
	return sh.RunV(filepath.Join(binDir, binName), args...)
}
