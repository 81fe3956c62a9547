package booking

import (
	"fmt"
	"time"
)

// FormatSerial renders the human readable booking reference, e.g. B202601050001.
func FormatSerial(day time.Time, seq int) string {
	return fmt.Sprintf("B%s%04d", day.UTC().Format("20060102"), seq)
}
