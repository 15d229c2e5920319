package models

import "time"

// UploadInfo represents metadata about the file loaded into a session.
type UploadInfo struct {
	Name     string    `json:"name"`
	Format   string    `json:"format"` // "csv", "json", "excel"
	Size     int64     `json:"size"`
	LoadedAt time.Time `json:"loadedAt"`
}
