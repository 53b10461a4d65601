package utils

import (
	"fmt"
	"time"
)

// All timestamps are shown in Colombia local time regardless of where
// the server runs.
const TimezoneName = "America/Bogota"

var bogota = loadBogota()

func loadBogota() *time.Location {
	loc, err := time.LoadLocation(TimezoneName)
	if err != nil {
		return time.FixedZone("-05", -5*60*60)
	}
	return loc
}

// FormatDisplay renders a timestamp for on-screen display.
func FormatDisplay(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.In(bogota).Format("02/01/2006 3:04 PM")
}

// FormatExport renders a timestamp as YYYY-MM-DD HH:MM:SS for CSV and
// spreadsheet cells.
func FormatExport(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.In(bogota).Format("2006-01-02 15:04:05")
}

// FileStamp returns the current time as YYYYMMDD_HHMMSS for filenames.
func FileStamp(now time.Time) string {
	return now.In(bogota).Format("20060102_150405")
}

// DownloadName builds a download filename like base_20061002_150405.csv.
func DownloadName(base, ext string) string {
	return fmt.Sprintf("%s_%s.%s", base, FileStamp(time.Now()), ext)
}
