package domain

// AllowedUploadExtensions maps upload file extensions (without dot) to their
// MIME content types. Upload intake is stricter than the extractor itself,
// which also accepts gif and webp content.
var AllowedUploadExtensions = map[string]string{
	"pdf":  "application/pdf",
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"png":  "image/png",
}
