package models

import (
	"path"
	"strings"
)

const (
	RawPrefix       = "raw/"
	ThumbnailPrefix = "thumbnails/"
	ProcessedPrefix = "processed/"

	RestitchSuffix = "_restitched"

	thumbnailExt = ".jpg"
	processedExt = ".mp4"
)

// IsRawPath reports whether the object lives under the raw namespace.
func IsRawPath(p string) bool {
	return strings.HasPrefix(p, RawPrefix) && len(p) > len(RawPrefix)
}

// VideoIDFromRawPath returns the base name of a raw object without its extension.
func VideoIDFromRawPath(rawPath string) string {
	base := path.Base(rawPath)
	return strings.TrimSuffix(base, path.Ext(base))
}

// ThumbnailPath translates raw/<id>.<ext> to thumbnails/<id><suffix>.jpg.
func ThumbnailPath(rawPath, suffix string) string {
	return translate(rawPath, ThumbnailPrefix, suffix, thumbnailExt)
}

// ProcessedPath translates raw/<id>.<ext> to processed/<id><suffix>.mp4. The
// stitched output is always an MP4 container regardless of the raw extension.
func ProcessedPath(rawPath, suffix string) string {
	return translate(rawPath, ProcessedPrefix, suffix, processedExt)
}

func translate(rawPath, prefix, suffix, ext string) string {
	rest := strings.TrimPrefix(rawPath, RawPrefix)
	rest = strings.TrimSuffix(rest, path.Ext(rest))
	return prefix + rest + suffix + ext
}
