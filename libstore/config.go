package libstore

import (
	"os"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
)

const (
	// defaultGraphRoot is where a root containers/storage store lives.
	defaultGraphRoot = "/var/lib/containers/storage"
	// defaultGraphDriverName matches the driver CRI-O configures by
	// default; the store prefixes its images/ and layers/ directories
	// with it.
	defaultGraphDriverName = "overlay"
	// defaultConfigPath is the system-wide storage configuration file.
	defaultConfigPath = "/etc/containers/storage.conf"
)

// StoreOptions selects the store a Store reads from.
type StoreOptions struct {
	// GraphRoot is the top-level storage directory.
	GraphRoot string
	// GraphDriverName names the storage driver; it keys the
	// "<driver>-images" and "<driver>-layers" subdirectories.
	GraphDriverName string
}

// storageConfig mirrors the [storage] table of storage.conf.
type storageConfig struct {
	Storage struct {
		Driver    string `toml:"driver"`
		GraphRoot string `toml:"graphroot"`
		RunRoot   string `toml:"runroot"`
	} `toml:"storage"`
}

// DefaultStoreOptions returns options seeded from configPath (pass ""
// for /etc/containers/storage.conf). A missing configuration file is
// not an error; the compiled-in defaults are used. A file that exists
// but cannot be decoded is.
func DefaultStoreOptions(configPath string) (StoreOptions, error) {
	options := StoreOptions{
		GraphRoot:       defaultGraphRoot,
		GraphDriverName: defaultGraphDriverName,
	}

	explicit := configPath != ""
	if !explicit {
		configPath = defaultConfigPath
	}

	contents, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return options, nil
		}
		return options, errors.Wrapf(err, "error reading storage configuration %s", configPath)
	}

	config := new(storageConfig)
	if _, err := toml.Decode(string(contents), config); err != nil {
		return options, errors.Wrapf(err, "error decoding storage configuration %s", configPath)
	}

	if config.Storage.Driver != "" {
		options.GraphDriverName = config.Storage.Driver
	}
	if config.Storage.GraphRoot != "" {
		options.GraphRoot = config.Storage.GraphRoot
	}
	return options, nil
}
