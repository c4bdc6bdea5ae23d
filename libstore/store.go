package libstore

import (
	"os"
	"path/filepath"

	multierror "github.com/hashicorp/go-multierror"
	imgspecv1 "github.com/opencontainers/image-spec/specs-go/v1"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// ErrManifestNotCached is returned by Manifest for images whose
// registry manifest was never written to the store, or whose cached
// copy cannot be decoded. Callers treat it as "no compressed data".
var ErrManifestNotCached = errors.New("no cached manifest for image")

// Store reads image and layer metadata from one containers/storage
// graph root. It never writes to the store.
type Store struct {
	graphRoot  string
	driverName string
}

// StoreData is a point-in-time snapshot of the store's metadata. The
// store may be mutated by other processes while we read it, so any of
// the collections may be missing or internally inconsistent; the
// accounting code downstream tolerates both.
type StoreData struct {
	Images         []*Image
	Layers         []*Layer
	VolatileLayers []*VolatileLayer
}

// LayersByID builds the layer ID index used for chain walking.
func (d *StoreData) LayersByID() map[string]*Layer {
	byID := make(map[string]*Layer, len(d.Layers))
	for _, layer := range d.Layers {
		byID[layer.ID] = layer
	}
	return byID
}

// New returns a Store for the given options. Zero-valued options fall
// back to the compiled-in defaults. The graph root is not required to
// exist: a store that was never created is read as an empty one.
func New(options StoreOptions) *Store {
	if options.GraphRoot == "" {
		options.GraphRoot = defaultGraphRoot
	}
	if options.GraphDriverName == "" {
		options.GraphDriverName = defaultGraphDriverName
	}
	return &Store{
		graphRoot:  options.GraphRoot,
		driverName: options.GraphDriverName,
	}
}

// GraphRoot returns the top-level storage directory the store reads.
func (s *Store) GraphRoot() string {
	return s.graphRoot
}

func (s *Store) imagesDir() string {
	return filepath.Join(s.graphRoot, s.driverName+"-images")
}

func (s *Store) layersDir() string {
	return filepath.Join(s.graphRoot, s.driverName+"-layers")
}

// Load reads the images, layers and volatile-layers collections.
// Missing or undecodable collections degrade to empty ones so that one
// bad file never prevents reporting on the rest of the store; the
// returned error, if any, is a *multierror.Error describing what was
// skipped and is informational only.
func (s *Store) Load() (*StoreData, error) {
	var warnings *multierror.Error
	data := new(StoreData)

	if err := decodeCollection(filepath.Join(s.imagesDir(), "images.json"), &data.Images); err != nil {
		warnings = multierror.Append(warnings, err)
	}
	if err := decodeCollection(filepath.Join(s.layersDir(), "layers.json"), &data.Layers); err != nil {
		warnings = multierror.Append(warnings, err)
	}
	if err := decodeCollection(filepath.Join(s.layersDir(), "volatile-layers.json"), &data.VolatileLayers); err != nil {
		warnings = multierror.Append(warnings, err)
	}

	logrus.Debugf("Loaded %d images, %d layers, %d volatile layers from %s",
		len(data.Images), len(data.Layers), len(data.VolatileLayers), s.graphRoot)
	return data, warnings.ErrorOrNil()
}

// Manifest returns the cached registry manifest for the given image
// ID, or ErrManifestNotCached when the store has no usable copy.
func (s *Store) Manifest(imageID string) (*imgspecv1.Manifest, error) {
	manifestPath := filepath.Join(s.imagesDir(), imageID, "manifest")
	contents, err := os.ReadFile(manifestPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrManifestNotCached
		}
		return nil, errors.Wrapf(ErrManifestNotCached, "reading %s: %v", manifestPath, err)
	}
	manifest := new(imgspecv1.Manifest)
	if err := json.Unmarshal(contents, manifest); err != nil {
		logrus.Debugf("Skipping undecodable manifest %s: %v", manifestPath, err)
		return nil, errors.Wrapf(ErrManifestNotCached, "decoding %s: %v", manifestPath, err)
	}
	return manifest, nil
}

// decodeCollection decodes one JSON metadata file into collection,
// leaving it untouched when the file is missing or malformed.
func decodeCollection(path string, collection interface{}) error {
	contents, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return errors.Wrapf(err, "error reading %s", path)
	}
	if err := json.Unmarshal(contents, collection); err != nil {
		return errors.Wrapf(err, "error decoding %s", path)
	}
	return nil
}
