package config

// Layout constants
const (
	// Panel layout
	LeftPanelWidthRatio = 0.6
	PanelSeparatorWidth = 2

	// Table dimensions
	DefaultColumnSizeWidth = 10
	DefaultColumnTypeWidth = 8
	MinColumnNameWidth     = 20
	MaxColumnNameWidth     = 60
	DefaultTableHeight     = 20

	// Rows reserved above and below the table: header, breadcrumb, status,
	// footer.
	ChromeHeight = 6

	// Dialog dimensions
	DialogDefaultWidth = 50
	DialogLargeWidth   = 70

	// Preview modal: title, status, hint and separator lines above the image.
	PreviewHeaderLines = 5
)
