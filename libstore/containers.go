package libstore

// countContainers maps each image to the number of container layers
// built on top of it. A volatile layer's parent is the top layer of
// the image its container was created from; records whose parent
// resolves to no known image are containers for images that have since
// been deleted, and are skipped.
func countContainers(images []*Image, volatileLayers []*VolatileLayer) map[string]int {
	index := topLayerIndex(images)

	containers := make(map[string]int)
	for _, volatile := range volatileLayers {
		if imageID, ok := index[volatile.Parent]; ok {
			containers[imageID]++
		}
	}
	return containers
}

// topLayerIndex maps each image's top layer back to the image ID. Two
// images sharing a top layer would collide here; the store does not
// produce that, and if it ever did the last one wins.
func topLayerIndex(images []*Image) map[string]string {
	index := make(map[string]string, len(images))
	for _, image := range images {
		if image.TopLayer != "" {
			index[image.TopLayer] = image.ID
		}
	}
	return index
}
