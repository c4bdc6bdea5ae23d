package libstore

// walkLayerChain returns the IDs of the layers composing an image,
// starting at topLayer and following parent links. The walk truncates
// silently on a parent that is missing from layersByID (the store was
// mutated under us) and on a chain that revisits an ID (corrupt
// metadata); either way the layers seen so far still count. The
// visited check runs before the lookup, so the walk terminates after
// at most len(layersByID) steps.
func walkLayerChain(topLayer string, layersByID map[string]*Layer) []string {
	var chain []string
	visited := make(map[string]bool)

	layerID := topLayer
	for layerID != "" && !visited[layerID] {
		visited[layerID] = true
		layer, ok := layersByID[layerID]
		if !ok {
			break
		}
		chain = append(chain, layerID)
		layerID = layer.Parent
	}
	return chain
}
