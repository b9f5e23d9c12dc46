package models

import (
	"fmt"
	"time"
)

// Upload sources reported by the file picker.
const (
	SourceDrop   = "drop"
	SourceBrowse = "browse"
	SourcePath   = "path"
)

// FileInfo represents metadata about an uploaded document.
type FileInfo struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Size       int64     `json:"size"`
	UploadedAt time.Time `json:"uploadedAt"`
	Source     string    `json:"source,omitempty"`
	Path       string    `json:"-"` // location of the bytes sent to the backend
}

// SizeLabel formats the size the way the upload card shows it.
func (f *FileInfo) SizeLabel() string {
	return fmt.Sprintf("%.2f MB", float64(f.Size)/1024/1024)
}
