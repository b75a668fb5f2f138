package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"sort"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/fantasylab/fantasy-lab/internal/category"
	"github.com/fantasylab/fantasy-lab/internal/dataset"
	"github.com/fantasylab/fantasy-lab/internal/store"
)

type typeSet map[string]struct{}

// Inventory describes the shape of a raw dataset file without validating it,
// so a file the loader rejects can still be diagnosed.
type Inventory struct {
	GeneratedAtUTC string             `json:"generated_at_utc"`
	File           string             `json:"file"`
	Players        int                `json:"players"`
	Fields         []Field            `json:"fields"`
	Coverage       []CategoryCoverage `json:"coverage"`
	LoadError      string             `json:"load_error,omitempty"`
}

type Field struct {
	Path  string   `json:"path"`
	Types []string `json:"types"`
}

// CategoryCoverage counts how many player rows carry a usable value.
type CategoryCoverage struct {
	Key        category.Key `json:"key"`
	HasAverage bool         `json:"has_average"`
	Numeric    int          `json:"numeric"`
	Null       int          `json:"null"`
	Missing    int          `json:"missing"`
	Other      int          `json:"other"`
}

func main() {
	var (
		rawRoot = flag.String("raw-root", "data/raw", "directory holding the dataset")
		file    = flag.String("file", dataset.DefaultFile, "dataset file relative to raw-root")
		outPath = flag.String("out", "", "write inventory to this path in derived-root (empty = stdout)")
		derived = flag.String("derived-root", "data/derived", "root directory for derived JSON")
	)
	flag.Parse()

	log := logrus.WithField("component", "dataset-inventory")

	st := store.NewJSONStore(*rawRoot)
	raw, err := st.ReadRaw(*file)
	if err != nil {
		log.WithError(err).Fatal("read dataset")
	}

	inv, err := buildInventory(raw)
	if err != nil {
		log.WithError(err).Fatal("decode dataset")
	}
	inv.File = st.Path(*file)
	if _, err := dataset.Parse(raw); err != nil {
		inv.LoadError = err.Error()
		log.WithError(err).Warn("dataset would be rejected by the loader")
	}

	if *outPath == "" {
		b, _ := json.MarshalIndent(inv, "", "  ")
		fmt.Println(string(b))
		return
	}
	out := store.NewJSONStore(*derived)
	if err := out.WriteJSON(*outPath, inv); err != nil {
		log.WithError(err).Fatal("write inventory")
	}
	log.WithField("path", out.Path(*outPath)).Info("wrote inventory")
}

func buildInventory(raw []byte) (*Inventory, error) {
	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}

	schema := make(map[string]typeSet)
	walkSchema(doc, "$", schema)

	players, _ := doc["players"].([]any)
	avgs, _ := doc["league_averages"].(map[string]any)

	inv := &Inventory{
		GeneratedAtUTC: time.Now().UTC().Format(time.RFC3339),
		Players:        len(players),
		Fields:         schemaToFields(schema),
		Coverage:       make([]CategoryCoverage, 0, category.Count()),
	}
	for _, k := range category.All() {
		cov := CategoryCoverage{Key: k}
		_, cov.HasAverage = avgs[string(k)]
		for _, p := range players {
			row, _ := p.(map[string]any)
			v, ok := row[string(k)]
			switch {
			case !ok:
				cov.Missing++
			case v == nil:
				cov.Null++
			default:
				if _, isNum := v.(float64); isNum {
					cov.Numeric++
				} else {
					cov.Other++
				}
			}
		}
		inv.Coverage = append(inv.Coverage, cov)
	}
	return inv, nil
}

// walkSchema records every JSON type seen at each path. Unlike a sample-based
// walk, every array element is visited so one odd player row shows up.
func walkSchema(v any, path string, schema map[string]typeSet) {
	switch x := v.(type) {
	case map[string]any:
		addType(schema, path, "object")
		for k, child := range x {
			walkSchema(child, path+"."+k, schema)
		}
	case []any:
		addType(schema, path, "array")
		for _, child := range x {
			walkSchema(child, path+"[]", schema)
		}
	case string:
		addType(schema, path, "string")
	case bool:
		addType(schema, path, "bool")
	case float64:
		addType(schema, path, "number")
	case nil:
		addType(schema, path, "null")
	default:
		addType(schema, path, fmt.Sprintf("%T", v))
	}
}

func addType(schema map[string]typeSet, path string, typ string) {
	set, ok := schema[path]
	if !ok {
		set = make(typeSet)
		schema[path] = set
	}
	set[typ] = struct{}{}
}

func schemaToFields(schema map[string]typeSet) []Field {
	paths := make([]string, 0, len(schema))
	for p := range schema {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	fields := make([]Field, 0, len(paths))
	for _, p := range paths {
		types := make([]string, 0, len(schema[p]))
		for t := range schema[p] {
			types = append(types, t)
		}
		sort.Strings(types)
		fields = append(fields, Field{Path: p, Types: types})
	}
	return fields
}
