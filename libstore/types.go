package libstore

import (
	"strconv"
	"strings"
	"time"
)

// Image is one record from the store's images.json. Every field other
// than ID may be absent on disk.
type Image struct {
	// ID is the content-addressed image ID.
	ID string `json:"id"`
	// Names holds the human repo:tag references, best first. May be
	// empty for dangling images.
	Names []string `json:"names,omitempty"`
	// TopLayer is the ID of the topmost layer of the image's chain.
	TopLayer string `json:"layer,omitempty"`
	// Created is when the image was added to the store.
	Created createdTime `json:"created,omitempty"`
}

// Layer is one record from the store's layers.json.
type Layer struct {
	// ID is the content-addressed layer ID.
	ID string `json:"id"`
	// Parent is the ID of the layer below this one, empty for base
	// layers.
	Parent string `json:"parent,omitempty"`
	// DiffSize is the size of the layer's uncompressed diff, when the
	// store recorded one.
	DiffSize *int64 `json:"diff-size,omitempty"`
	// UncompressedSize is an older field carrying the same
	// information.
	UncompressedSize *int64 `json:"uncompress_size,omitempty"`
}

// Size returns the layer's uncompressed size, preferring the diff-size
// field over uncompress_size, or 0 when the store recorded neither.
func (l *Layer) Size() int64 {
	if l.DiffSize != nil {
		return *l.DiffSize
	}
	if l.UncompressedSize != nil {
		return *l.UncompressedSize
	}
	return 0
}

// VolatileLayer is one record from volatile-layers.json, the writable
// layer of a created or running container. Its Parent is the top layer
// of the image the container was created from.
type VolatileLayer struct {
	ID     string `json:"id"`
	Parent string `json:"parent,omitempty"`
}

// createdTime unmarshals the store's "created" field, which is either
// an RFC 3339 string or a unix epoch number depending on the writer's
// vintage. Unparsable values decode to the zero time.
type createdTime struct {
	time.Time
}

func (c *createdTime) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" || s == `""` {
		return nil
	}
	if strings.HasPrefix(s, `"`) {
		unquoted, err := strconv.Unquote(s)
		if err != nil {
			return nil
		}
		if t, err := time.Parse(time.RFC3339, unquoted); err == nil {
			c.Time = t
		}
		return nil
	}
	if epoch, err := strconv.ParseFloat(s, 64); err == nil {
		c.Time = time.Unix(int64(epoch), 0).UTC()
	}
	return nil
}

func (c createdTime) MarshalJSON() ([]byte, error) {
	if c.IsZero() {
		return []byte(`""`), nil
	}
	return []byte(strconv.Quote(c.Format(time.RFC3339))), nil
}
