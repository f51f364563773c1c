package mft

import "time"

// filetimeEpoch is the Windows FILETIME epoch, 1601-01-01 00:00:00 UTC.
var filetimeEpoch = time.Date(1601, time.January, 1, 0, 0, 0, 0, time.UTC)

// ConvertFileTime converts a raw FILETIME value (100-nanosecond intervals since filetimeEpoch),
// as stored in STANDARD_INFORMATION and FILE_NAME timestamps, into a time.Time.
func ConvertFileTime(timeValue uint64) time.Time {
	const ticksPerSecond = 10_000_000
	secs := int64(timeValue / ticksPerSecond)
	nanos := int64(timeValue%ticksPerSecond) * 100
	return time.Unix(filetimeEpoch.Unix()+secs, nanos).UTC()
}
