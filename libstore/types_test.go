package libstore

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func int64Ptr(v int64) *int64 {
	return &v
}

func TestLayerSize(t *testing.T) {
	for _, c := range []struct {
		name     string
		layer    Layer
		expected int64
	}{
		{"both absent", Layer{ID: "l"}, 0},
		{"diff-size only", Layer{ID: "l", DiffSize: int64Ptr(42)}, 42},
		{"uncompress_size only", Layer{ID: "l", UncompressedSize: int64Ptr(17)}, 17},
		{"diff-size preferred", Layer{ID: "l", DiffSize: int64Ptr(42), UncompressedSize: int64Ptr(17)}, 42},
		{"explicit zero diff-size wins", Layer{ID: "l", DiffSize: int64Ptr(0), UncompressedSize: int64Ptr(17)}, 0},
	} {
		assert.Equal(t, c.expected, c.layer.Size(), c.name)
	}
}

func TestCreatedTimeUnmarshal(t *testing.T) {
	for _, c := range []struct {
		name     string
		doc      string
		expected time.Time
	}{
		{"rfc3339", `{"id":"i","created":"2023-06-01T12:00:00Z"}`, time.Date(2023, 6, 1, 12, 0, 0, 0, time.UTC)},
		{"rfc3339 with offset", `{"id":"i","created":"2023-06-01T12:00:00+02:00"}`, time.Date(2023, 6, 1, 10, 0, 0, 0, time.UTC)},
		{"unix epoch", `{"id":"i","created":1685620800}`, time.Date(2023, 6, 1, 12, 0, 0, 0, time.UTC)},
		{"absent", `{"id":"i"}`, time.Time{}},
		{"null", `{"id":"i","created":null}`, time.Time{}},
		{"garbage", `{"id":"i","created":"yesterday-ish"}`, time.Time{}},
	} {
		var image Image
		require.NoError(t, json.Unmarshal([]byte(c.doc), &image), c.name)
		assert.True(t, image.Created.Equal(c.expected), "%s: got %v", c.name, image.Created.Time)
	}
}

func TestLayerDecode(t *testing.T) {
	doc := `[{"id":"a","parent":"b","diff-size":100},{"id":"b","uncompress_size":200},{"id":"c"}]`
	var layers []*Layer
	require.NoError(t, json.Unmarshal([]byte(doc), &layers))
	require.Len(t, layers, 3)
	assert.Equal(t, int64(100), layers[0].Size())
	assert.Equal(t, "b", layers[0].Parent)
	assert.Equal(t, int64(200), layers[1].Size())
	assert.Zero(t, layers[2].Size())
}
