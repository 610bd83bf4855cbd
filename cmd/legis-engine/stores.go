package main

import (
	"log/slog"
	"os"
	"time"

	"github.com/spf13/viper"

	"github.com/pdiddy/legis-engine/internal/files"
	"github.com/pdiddy/legis-engine/internal/store"
	"github.com/pdiddy/legis-engine/pkg/types"
)

const (
	defaultTimeout   = 60 * time.Second
	defaultDelay     = 1 * time.Second
	defaultUserAgent = "legis-engine/0.1"
	defaultDataDir   = "data"
)

// resolveDataDir picks the data directory from the --data-dir flag, the
// config file, or the default, in that order.
func resolveDataDir() string {
	if dir, _ := rootCmd.PersistentFlags().GetString("data-dir"); dir != "" {
		return dir
	}
	if dir := viper.GetString("store.data_dir"); dir != "" {
		return dir
	}
	return defaultDataDir
}

// openStores opens the document index and the artifact file store under
// the resolved data directory.
func openStores() (*store.Store, *files.Store, error) {
	dir := resolveDataDir()
	st, err := store.NewStore(types.StoreConfig{DataDir: dir})
	if err != nil {
		return nil, nil, err
	}
	return st, files.NewStore(dir), nil
}

func newLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, nil))
}
