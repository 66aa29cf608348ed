// Package config loads the category table: the static CategoryId →
// keyword-list lookup behind the category chips. Matching semantics live in
// the filter engine; this package only loads and validates the table.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/chiblo/poimap/internal/filter"
)

// categoriesFile is the YAML shape:
//
//	categories:
//	  cafe: ["カフェ", "cafe", "喫茶"]
//	  ramen: ["ラーメン", "つけ麺"]
type categoriesFile struct {
	Categories map[string][]string `yaml:"categories"`
}

// DefaultTable is the built-in category table used when no file is given.
func DefaultTable() filter.CategoryTable {
	return filter.CategoryTable{
		"cafe":   {"カフェ", "cafe", "喫茶"},
		"ramen":  {"ラーメン", "つけ麺", "中華そば"},
		"sweets": {"スイーツ", "ケーキ", "パフェ", "パン"},
		"park":   {"公園", "緑地"},
		"event":  {"イベント", "祭", "フェス"},
	}
}

// LoadTable reads a category table from a YAML file. An empty path returns
// the built-in defaults.
func LoadTable(path string) (filter.CategoryTable, error) {
	if path == "" {
		return DefaultTable(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}

	var file categoriesFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}

	table := make(filter.CategoryTable, len(file.Categories))
	for id, keywords := range file.Categories {
		if id == "" {
			return nil, fmt.Errorf("config: %s: empty category id", path)
		}
		cleaned := make([]string, 0, len(keywords))
		for _, kw := range keywords {
			if kw != "" {
				cleaned = append(cleaned, kw)
			}
		}
		if len(cleaned) == 0 {
			return nil, fmt.Errorf("config: %s: category %q has no keywords", path, id)
		}
		table[filter.CategoryID(id)] = cleaned
	}
	if len(table) == 0 {
		return nil, fmt.Errorf("config: %s: no categories defined", path)
	}
	return table, nil
}
