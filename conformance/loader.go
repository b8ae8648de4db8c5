package conformance

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// TestDir is the fixture directory, relative to this package.
const TestDir = "testdata"

// LoadedTest pairs a parsed TestCase with the file it came from, for
// grouping in test output.
type LoadedTest struct {
	File  string
	Suite TestSuite
	Test  TestCase
}

// LoadAll walks TestDir and parses every *.yaml fixture into its test
// cases.
func LoadAll() ([]LoadedTest, error) {
	abs, err := filepath.Abs(TestDir)
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(abs); err != nil {
		return nil, fmt.Errorf("conformance fixture directory %s: %w", abs, err)
	}

	var loaded []LoadedTest
	err = filepath.Walk(abs, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || filepath.Ext(path) != ".yaml" {
			return nil
		}
		suite, loadErr := loadFile(path)
		if loadErr != nil {
			return fmt.Errorf("%s: %w", path, loadErr)
		}
		rel, _ := filepath.Rel(abs, path)
		for _, tc := range suite.Tests {
			loaded = append(loaded, LoadedTest{File: rel, Suite: suite, Test: tc})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return loaded, nil
}

func loadFile(path string) (TestSuite, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return TestSuite{}, err
	}
	var suite TestSuite
	if err := yaml.Unmarshal(data, &suite); err != nil {
		return TestSuite{}, err
	}
	return suite, nil
}
