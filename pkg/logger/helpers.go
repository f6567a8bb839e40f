package logger

// LogRemoval records the outcome of a single unfavorite action.
func LogRemoval(itemID string, success bool, err error) {
	fields := map[string]interface{}{
		"item_id": itemID,
		"action":  "remove_favorite",
		"success": success,
	}
	if err != nil {
		fields["error"] = err.Error()
		GetLogger().WarnWithFields("removal failed", fields)
		return
	}
	GetLogger().DebugWithFields("item removed", fields)
}

// LogUpscaleRequest records the outcome of a single upscale request.
func LogUpscaleRequest(itemID string, success bool, err error) {
	fields := map[string]interface{}{
		"item_id": itemID,
		"action":  "request_upscale",
		"success": success,
	}
	if err != nil {
		fields["error"] = err.Error()
		GetLogger().WarnWithFields("upscale request failed", fields)
		return
	}
	GetLogger().DebugWithFields("upscale requested", fields)
}
