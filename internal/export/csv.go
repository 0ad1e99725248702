// Package export renders booking collections to tabular formats.
package export

import (
	"strconv"
	"strings"
	"time"

	"probook/internal/models"
)

// CSVHeader is the fixed header row of the CSV export. Column names and
// order are part of the format and must not change.
var CSVHeader = []string{
	"id", "name", "email", "phone", "serviceId", "serviceName",
	"duration", "date", "time", "status", "notes", "createdAt",
}

// CSV renders the bookings as comma-separated rows under CSVHeader.
// Every field is quoted and embedded quotes are doubled, regardless of
// content; encoding/csv quotes only when necessary, and this format
// promises quoting on every field for compatibility with the exports
// consumers already parse. Row order matches the input order.
func CSV(bookings []models.Booking) string {
	var sb strings.Builder
	sb.WriteString(strings.Join(CSVHeader, ","))

	for _, b := range bookings {
		sb.WriteByte('\n')
		fields := []string{
			b.ID,
			b.Name,
			b.Email,
			b.Phone,
			b.ServiceID,
			b.ServiceName,
			strconv.Itoa(b.DurationMinutes),
			b.Date,
			b.Time,
			string(b.Status),
			b.Notes,
			formatCreatedAt(b.CreatedAt),
		}
		for i, f := range fields {
			if i > 0 {
				sb.WriteByte(',')
			}
			sb.WriteByte('"')
			sb.WriteString(strings.ReplaceAll(f, `"`, `""`))
			sb.WriteByte('"')
		}
	}

	return sb.String()
}

func formatCreatedAt(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

// Filename builds a timestamped export filename like
// "bookings_2025_06_10_14_30_00.csv".
func Filename(ext string, now time.Time) string {
	return "bookings_" + now.UTC().Format("2006_01_02_15_04_05") + "." + ext
}
