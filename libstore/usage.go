package libstore

import (
	"github.com/containers/crio-df/libstore/define"
)

// DiskUsage computes the full usage report for one store snapshot.
// The uncompressed accounting is a pure function of data; the
// compressed accounting additionally reads each image's cached
// manifest from store. Anomalies in the snapshot (dangling layer
// references, cycles, images with no resolvable top layer) degrade to
// zero-sized entries rather than errors.
func DiskUsage(store *Store, data *StoreData) *define.DiskUsageReport {
	layersByID := data.LayersByID()

	// Walk every image's chain once and count, per layer, how many
	// images reference it. Chains are cycle-truncated, so an ID
	// appears at most once per chain and a single image can never
	// double-count a layer.
	chains := make(map[string][]string, len(data.Images))
	referenceCount := make(map[string]int)
	for _, image := range data.Images {
		chain := walkLayerChain(image.TopLayer, layersByID)
		chains[image.ID] = chain
		for _, layerID := range chain {
			referenceCount[layerID]++
		}
	}

	report := &define.DiskUsageReport{
		TotalImages:     len(data.Images),
		TotalContainers: len(data.VolatileLayers),
		TotalLayers:     len(referenceCount),
	}

	// Total store size counts each referenced layer exactly once,
	// independent of its reference count.
	for layerID := range referenceCount {
		report.Size += layersByID[layerID].Size()
		if referenceCount[layerID] > 1 {
			report.SharedLayers++
		}
	}

	containers := countContainers(data.Images, data.VolatileLayers)
	for _, count := range containers {
		report.ActiveContainers += count
	}

	topLayers := topLayerIndex(data.Images)
	for _, volatile := range data.VolatileLayers {
		report.Containers = append(report.Containers, &define.ContainerDiskUsage{
			ID:      volatile.ID,
			ImageID: topLayers[volatile.Parent],
		})
	}

	for _, image := range data.Images {
		usage := &define.ImageDiskUsage{
			ID:         image.ID,
			Created:    image.Created.Time,
			Containers: containers[image.ID],
		}
		usage.Repository, usage.Tag = decompose(image.Names)

		for _, layerID := range chains[image.ID] {
			size := layersByID[layerID].Size()
			if referenceCount[layerID] > 1 {
				usage.SharedSize += size
			} else {
				usage.UniqueSize += size
			}
		}
		usage.Size = usage.SharedSize + usage.UniqueSize

		if usage.Containers == 0 {
			usage.Reclaimable = usage.UniqueSize
			report.Reclaimable += usage.Reclaimable
		} else {
			report.ActiveImages++
		}

		report.Images = append(report.Images, usage)
	}

	if report.Size > 0 {
		report.ReclaimablePercent = float64(report.Reclaimable) / float64(report.Size) * 100
	}

	compressed := compressedSizes(store, data.Images)
	report.DeduplicatedCompressed = compressed.deduplicatedTotal()
	for _, usage := range report.Images {
		usage.Compressed = compressed.perImage[usage.ID]
	}

	return report
}
