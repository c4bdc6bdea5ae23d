package define

import (
	"time"

	"github.com/opencontainers/go-digest"
)

// DiskUsageReport is the aggregate result of one accounting run over a
// store snapshot.
type DiskUsageReport struct {
	// Images holds one entry per image in the store.
	Images []*ImageDiskUsage `json:"Images"`
	// Containers holds one entry per container (volatile) layer, in
	// store order.
	Containers []*ContainerDiskUsage `json:"Containers,omitempty"`
	// TotalImages is the number of images in the store.
	TotalImages int `json:"TotalImages"`
	// ActiveImages is the number of images with at least one
	// container built on them.
	ActiveImages int `json:"ActiveImages"`
	// TotalContainers is the number of container (volatile) layers in
	// the store, including ones whose image is gone.
	TotalContainers int `json:"TotalContainers"`
	// ActiveContainers is the number of those layers that resolve to
	// an image still present in the store.
	ActiveContainers int `json:"ActiveContainers"`
	// TotalLayers is the number of distinct layers referenced by at
	// least one image.
	TotalLayers int `json:"TotalLayers"`
	// SharedLayers is the number of those layers referenced by more
	// than one image.
	SharedLayers int `json:"SharedLayers"`
	// Size is the total uncompressed store size, each distinct layer
	// counted exactly once however many images reference it.
	Size int64 `json:"Size"`
	// Reclaimable is the total of each image's reclaimable bytes.
	Reclaimable int64 `json:"Reclaimable"`
	// ReclaimablePercent is Reclaimable as a percentage of Size, 0
	// for an empty store.
	ReclaimablePercent float64 `json:"ReclaimablePercent"`
	// DeduplicatedCompressed is the download cost of the whole store:
	// the sum of every distinct manifest digest's compressed size.
	DeduplicatedCompressed int64 `json:"DeduplicatedCompressed"`
}

// ImageDiskUsage reports the storage attributed to a single image.
type ImageDiskUsage struct {
	// ID of the image.
	ID string `json:"ImageID"`
	// Repository of the image, "<none>" for dangling images.
	Repository string `json:"Repository"`
	// Tag of the image.
	Tag string `json:"Tag"`
	// Created time stamp; zero when the store did not record one.
	Created time.Time `json:"Created"`
	// Size is the sum of SharedSize and UniqueSize.
	Size int64 `json:"Size"`
	// SharedSize is the amount of space the image shares with at
	// least one other image (layers with reference count > 1).
	SharedSize int64 `json:"SharedSize"`
	// UniqueSize is the amount of space only this image uses.
	UniqueSize int64 `json:"UniqueSize"`
	// Containers is the number of containers built on the image.
	Containers int `json:"Containers"`
	// Reclaimable is UniqueSize when no container uses the image,
	// else 0. Shared bytes are never reclaimable by deleting one
	// image.
	Reclaimable int64 `json:"Reclaimable"`
	// Compressed is the image's download-size accounting, nil when no
	// registry manifest is cached for it.
	Compressed *CompressedImage `json:"Compressed,omitempty"`
}

// ContainerDiskUsage reports one container's writable layer. The
// store metadata carries no run state, command or rootfs size for it,
// only its identity and parentage.
type ContainerDiskUsage struct {
	// ID of the container's writable layer.
	ID string `json:"ContainerID"`
	// ImageID of the image the container was created from, empty when
	// that image is no longer in the store.
	ImageID string `json:"ImageID,omitempty"`
}

// CompressedImage is the compressed (network transfer) accounting for
// one image, taken from its cached registry manifest. It lives in a
// different identity space than the uncompressed layer accounting and
// the two are never reconciled against each other.
type CompressedImage struct {
	// Size is the raw sum of the manifest's layer sizes, the cost of
	// pulling this image alone onto an empty host.
	Size int64 `json:"Size"`
	// Layers lists the manifest's compressed layers in order.
	Layers []CompressedLayer `json:"Layers,omitempty"`
}

// CompressedLayer is one compressed layer blob from a manifest.
type CompressedLayer struct {
	Digest digest.Digest `json:"Digest"`
	Size   int64         `json:"Size"`
	// Shared is set when the digest appears in more than one image's
	// manifest.
	Shared bool `json:"Shared"`
}
