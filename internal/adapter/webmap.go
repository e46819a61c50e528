package adapter

import (
	"fmt"
)

// rewriteClassBreaks mutates the webmap document in place, replacing the
// classMaxValue of every class break of the named operational layer's
// renderer with the freshly computed values. The break count must match the
// renderer's existing shape; the document is left untouched on any error.
func rewriteClassBreaks(doc map[string]any, layerName string, values []float64) error {
	layers, ok := doc["operationalLayers"].([]any)
	if !ok {
		return fmt.Errorf("%w: webmap has no operational layers", ErrLayerNotFound)
	}

	for _, raw := range layers {
		layer, ok := raw.(map[string]any)
		if !ok || layer["title"] != layerName {
			continue
		}

		infos, err := classBreakInfos(layer)
		if err != nil {
			return err
		}
		if len(infos) != len(values) {
			return fmt.Errorf("%w: renderer has %d classes, computed %d breaks", ErrRendererShape, len(infos), len(values))
		}

		for i, rawInfo := range infos {
			info, ok := rawInfo.(map[string]any)
			if !ok {
				return fmt.Errorf("%w: malformed class break info", ErrRendererShape)
			}
			info["classMaxValue"] = values[i]
		}

		return nil
	}

	return fmt.Errorf("%w: no layer titled %q", ErrLayerNotFound, layerName)
}

func classBreakInfos(layer map[string]any) ([]any, error) {
	definition, ok := layer["layerDefinition"].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: layer has no layerDefinition", ErrRendererShape)
	}
	drawingInfo, ok := definition["drawingInfo"].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: layer has no drawingInfo", ErrRendererShape)
	}
	renderer, ok := drawingInfo["renderer"].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: layer has no renderer", ErrRendererShape)
	}
	infos, ok := renderer["classBreakInfos"].([]any)
	if !ok {
		return nil, fmt.Errorf("%w: renderer has no classBreakInfos", ErrRendererShape)
	}
	return infos, nil
}
