package libstore

import (
	"github.com/opencontainers/go-digest"
	imgspecv1 "github.com/opencontainers/image-spec/specs-go/v1"
	"github.com/sirupsen/logrus"

	"github.com/containers/crio-df/libstore/define"
)

// manifestReader abstracts the manifest lookup so the compressed
// accounting can be driven from a fixture in tests.
type manifestReader interface {
	Manifest(imageID string) (*imgspecv1.Manifest, error)
}

// compressedUsage accumulates the download-size domain: registry blob
// digests and their compressed sizes. It is entirely independent of
// the uncompressed layer graph; the two use different identity spaces.
type compressedUsage struct {
	// layerSizes records each digest's compressed size. Digests are
	// content-stable, so a later image overwriting an earlier entry
	// is harmless.
	layerSizes map[digest.Digest]int64
	// references counts how many images' manifests list each digest.
	references map[digest.Digest]int
	perImage   map[string]*define.CompressedImage
}

// compressedSizes reads each image's cached manifest and accumulates
// per-digest and per-image compressed sizes. Images without a usable
// manifest contribute nothing; that is the normal case for images that
// were built locally rather than pulled.
func compressedSizes(reader manifestReader, images []*Image) *compressedUsage {
	usage := &compressedUsage{
		layerSizes: make(map[digest.Digest]int64),
		references: make(map[digest.Digest]int),
		perImage:   make(map[string]*define.CompressedImage),
	}

	for _, image := range images {
		manifest, err := reader.Manifest(image.ID)
		if err != nil {
			logrus.Debugf("No compressed size data for image %s: %v", image.ID, err)
			continue
		}

		compressed := new(define.CompressedImage)
		for _, layer := range manifest.Layers {
			compressed.Size += layer.Size
			compressed.Layers = append(compressed.Layers, define.CompressedLayer{
				Digest: layer.Digest,
				Size:   layer.Size,
			})
			usage.layerSizes[layer.Digest] = layer.Size
			usage.references[layer.Digest]++
		}
		usage.perImage[image.ID] = compressed
	}

	// Mark the digests that appear in more than one manifest, now
	// that all of them have been counted.
	for _, compressed := range usage.perImage {
		for i := range compressed.Layers {
			compressed.Layers[i].Shared = usage.references[compressed.Layers[i].Digest] > 1
		}
	}
	return usage
}

// deduplicatedTotal is the pull cost of the whole store: every
// distinct digest counted once.
func (u *compressedUsage) deduplicatedTotal() int64 {
	var total int64
	for _, size := range u.layerSizes {
		total += size
	}
	return total
}
