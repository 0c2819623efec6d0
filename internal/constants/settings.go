package constants

const (
	// General Settings
	SettingTimezone      = "timezone"
	SettingHeatmapMetric = "heatmap_metric"
	SettingTopListSize   = "top_list_size"

	// Default Settings Values
	DefaultTimezone      = "Local" // Use system local timezone by default
	DefaultHeatmapMetric = "reading-minutes"
	DefaultTopListSize   = 5
)
