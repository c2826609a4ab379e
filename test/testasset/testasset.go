// Package testasset classifies the loose files found next to test reports.
package testasset

import (
	"mime"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bitrise-steplib/steps-test-report-interchange/test/testreport"
)

// AssetTypes are the extensions of files which are attachments, never reports.
var AssetTypes = []string{".jpg", ".jpeg", ".png", ".gif", ".txt", ".log", ".mp4", ".webm", ".ogg", ".html", ".zip"}

var contentTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".txt":  "text/plain",
	".log":  "text/plain",
	".mp4":  "video/mp4",
	".webm": "video/webm",
	".ogg":  "video/ogg",
	".html": "text/html",
	".zip":  "application/zip",
}

// IsSupportedAssetType ...
func IsSupportedAssetType(fileName string) bool {
	ext := filepath.Ext(fileName)
	return slices.Contains(AssetTypes, strings.ToLower(ext))
}

// ContentType guesses the media type of an asset from its extension.
func ContentType(fileName string) string {
	ext := strings.ToLower(filepath.Ext(fileName))
	if contentType, ok := contentTypes[ext]; ok {
		return contentType
	}
	if contentType := mime.TypeByExtension(ext); contentType != "" {
		mediaType, _, err := mime.ParseMediaType(contentType)
		if err == nil {
			return mediaType
		}
	}
	return testreport.DefaultContentType
}

// AttachmentsDir is the directory attachments are written to next to a report.
const AttachmentsDir = "attachments"

// AttachmentPath is the slash separated path of a test case attachment relative to the report.
func AttachmentPath(instanceID, name string) string {
	return AttachmentsDir + "/" + instanceID + "/" + name
}
