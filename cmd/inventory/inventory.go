package main

import (
	"context"
	"path/filepath"
	"strconv"
	"strings"

	"datastorage/internal/config"
	"datastorage/internal/dataprocessing"
	"datastorage/internal/datasets"
	"datastorage/internal/files"
)

const timeLayout = "2006-01-02 15:04"

var headers = []string{"provider", "kind", "file", "payload", "table", "rows", "size", "modified"}

// inventory returns one record per raw archive and one per stored table in
// the provider directory
func inventory(ctx context.Context, env *datasets.Env, p config.ProviderPaths) ([][]string, error) {
	discovery := files.NewDiscovery(p.DataDir)

	archives, err := discovery.FindArchives("")
	if err != nil {
		return nil, err
	}
	var records [][]string
	for _, f := range archives {
		payload, err := payloadOf(f)
		if err != nil {
			return nil, err
		}
		records = append(records, record(p, "raw", f, payload, "", ""))
	}

	containers, err := discovery.FindByExtension("", config.StoreExtension)
	if err != nil {
		return nil, err
	}
	for _, f := range containers {
		names, err := env.Store.List(f.Path)
		if err != nil {
			return nil, err
		}
		for _, name := range names {
			t, err := env.Load(ctx, p, strings.TrimSuffix(f.Name, config.StoreExtension), name)
			if err != nil {
				return nil, err
			}
			records = append(records, record(p, "table", f, "", name, strconv.Itoa(t.NumRows())))
		}
	}
	return records, nil
}

// payloadOf lists the data files inside a ZIP archive; spreadsheets have none
func payloadOf(f files.FileInfo) (string, error) {
	if !strings.EqualFold(filepath.Ext(f.Name), ".zip") {
		return "", nil
	}
	names, err := dataprocessing.ListEntries(f.Path)
	if err != nil {
		return "", err
	}
	return strings.Join(names, ","), nil
}

func record(p config.ProviderPaths, kind string, f files.FileInfo, payload, name, rows string) []string {
	return []string{p.Provider, kind, f.Name, payload, name, rows, strconv.FormatInt(f.Size, 10), f.ModTime.Format(timeLayout)}
}
