package libstore

import (
	"testing"

	"github.com/opencontainers/go-digest"
	imgspecv1 "github.com/opencontainers/image-spec/specs-go/v1"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// manifestFixture serves canned manifests by image ID.
type manifestFixture map[string]*imgspecv1.Manifest

func (f manifestFixture) Manifest(imageID string) (*imgspecv1.Manifest, error) {
	manifest, ok := f[imageID]
	if !ok {
		return nil, ErrManifestNotCached
	}
	return manifest, nil
}

func manifestOf(layers ...imgspecv1.Descriptor) *imgspecv1.Manifest {
	return &imgspecv1.Manifest{Layers: layers}
}

func blob(name string, size int64) imgspecv1.Descriptor {
	return imgspecv1.Descriptor{
		MediaType: imgspecv1.MediaTypeImageLayerGzip,
		Digest:    digest.FromString(name),
		Size:      size,
	}
}

func TestCompressedSizesDeduplicates(t *testing.T) {
	base := blob("base", 100)
	shared := blob("shared", 100)
	only := blob("only", 100)

	images := []*Image{{ID: "imageA"}, {ID: "imageB"}}
	fixture := manifestFixture{
		"imageA": manifestOf(base, shared, only),
		"imageB": manifestOf(base, shared),
	}

	usage := compressedSizes(fixture, images)

	// Per-image totals are raw pull costs, no dedup.
	require.Contains(t, usage.perImage, "imageA")
	require.Contains(t, usage.perImage, "imageB")
	assert.Equal(t, int64(300), usage.perImage["imageA"].Size)
	assert.Equal(t, int64(200), usage.perImage["imageB"].Size)

	// The global total counts each digest once and is therefore
	// smaller than the sum of the per-image totals.
	assert.Equal(t, int64(300), usage.deduplicatedTotal())

	// Digests appearing in both manifests are flagged shared; the one
	// unique to imageA is not.
	for _, layer := range usage.perImage["imageA"].Layers {
		expected := layer.Digest != only.Digest
		assert.Equal(t, expected, layer.Shared, layer.Digest)
	}
}

func TestCompressedSizesMissingManifest(t *testing.T) {
	images := []*Image{{ID: "pulled"}, {ID: "builtLocally"}}
	fixture := manifestFixture{
		"pulled": manifestOf(blob("a", 50)),
	}

	usage := compressedSizes(fixture, images)
	assert.Contains(t, usage.perImage, "pulled")
	assert.NotContains(t, usage.perImage, "builtLocally")
	assert.Equal(t, int64(50), usage.deduplicatedTotal())
}

func TestCompressedSizesEmptyManifest(t *testing.T) {
	images := []*Image{{ID: "imageA"}}
	fixture := manifestFixture{"imageA": manifestOf()}

	usage := compressedSizes(fixture, images)
	require.Contains(t, usage.perImage, "imageA")
	assert.Zero(t, usage.perImage["imageA"].Size)
	assert.Empty(t, usage.perImage["imageA"].Layers)
	assert.Zero(t, usage.deduplicatedTotal())
}

func TestCompressedSizesNoImages(t *testing.T) {
	usage := compressedSizes(manifestFixture{}, nil)
	assert.Zero(t, usage.deduplicatedTotal())
	assert.Empty(t, usage.perImage)
}
