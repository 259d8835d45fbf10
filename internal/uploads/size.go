package uploads

import (
	"fmt"
	"math"
)

const (
	kib = 1024
	mib = 1024 * 1024
)

// FormatSize renders a byte count the way the document list shows it: one decimal MB from
// 1 MiB up, rounded whole KB below that.
func FormatSize(bytes int64) string {
	if bytes >= mib {
		return fmt.Sprintf("%.1f MB", float64(bytes)/mib)
	}
	return fmt.Sprintf("%d KB", int64(math.Round(float64(bytes)/kib)))
}
