// Package docs defines the uploaded-document index and format-aware text
// extraction for the assistant's local document-read tool.
package docs

import "strings"

// DocumentMeta describes one uploaded document. The binary payload lives
// in the store; Drive fields are set when the file was mirrored to Google
// Drive at upload time.
type DocumentMeta struct {
	ID            string   `json:"id"`
	Filename      string   `json:"filename"`
	FileType      string   `json:"fileType"` // lowercased extension, no dot
	MimeType      string   `json:"mimeType"`
	Size          int64    `json:"size"`
	UploadedAt    int64    `json:"uploadedAt"`
	StorageURL    string   `json:"storageUrl,omitempty"`
	DriveFileID   string   `json:"driveFileId,omitempty"`
	DriveMimeType string   `json:"driveMimeType,omitempty"`
	LinkedCards   []string `json:"linkedCards,omitempty"`
	IsCanonical   bool     `json:"isCanonical"`
	Tags          []string `json:"tags,omitempty"`
	Summary       string   `json:"summary,omitempty"`
}

// FileExtension returns the lowercased extension of a filename, without
// the dot. Files without an extension yield "".
func FileExtension(filename string) string {
	idx := strings.LastIndex(filename, ".")
	if idx < 0 || idx == len(filename)-1 {
		return ""
	}
	return strings.ToLower(filename[idx+1:])
}

// ResolveByFilename finds a document by filename, case-insensitively.
// An exact (case-insensitive) match wins; otherwise the first document
// whose filename contains the query is returned.
func ResolveByFilename(index []DocumentMeta, filename string) (DocumentMeta, bool) {
	needle := strings.ToLower(strings.TrimSpace(filename))
	if needle == "" {
		return DocumentMeta{}, false
	}
	for _, d := range index {
		if strings.ToLower(d.Filename) == needle {
			return d, true
		}
	}
	for _, d := range index {
		if strings.Contains(strings.ToLower(d.Filename), needle) {
			return d, true
		}
	}
	return DocumentMeta{}, false
}
