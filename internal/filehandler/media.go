// Package filehandler provides the file-level building blocks of a slideshow:
// image decoding and EXIF orientation, letterboxing, staging-directory frame
// files, audio duration probing and the ffmpeg encoder.
//
// Metadata follows a split-provider model:
//   - Images (JPEG, PNG, GIF, WebP, BMP, TIFF): pure Go, EXIF via evanoberholster/imagemeta
//   - Audio: pure Go for WAV (go-audio/wav), ffprobe for everything else
package filehandler

import (
	"fmt"
	"strings"
)

// SupportedImageExtensions lists image extensions that can be decoded, with their MIME types.
var SupportedImageExtensions = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
	".bmp":  "image/bmp",
	".tif":  "image/tiff",
	".tiff": "image/tiff",
}

// SupportedAudioExtensions lists audio extensions accepted as the soundtrack.
var SupportedAudioExtensions = map[string]string{
	".mp3":  "audio/mpeg",
	".m4a":  "audio/mp4",
	".aac":  "audio/aac",
	".ogg":  "audio/ogg",
	".opus": "audio/opus",
	".flac": "audio/flac",
	".wav":  "audio/wav",
}

// GetMIMEType returns the MIME type for a given file extension.
func GetMIMEType(ext string) (string, error) {
	ext = strings.ToLower(ext)

	if mimeType, ok := SupportedImageExtensions[ext]; ok {
		return mimeType, nil
	}

	if mimeType, ok := SupportedAudioExtensions[ext]; ok {
		return mimeType, nil
	}

	return "", fmt.Errorf("unsupported file extension: %s", ext)
}

// IsImage returns true if the file extension corresponds to a decodable image.
func IsImage(ext string) bool {
	_, ok := SupportedImageExtensions[strings.ToLower(ext)]
	return ok
}

// IsAudio returns true if the file extension corresponds to a known audio format.
func IsAudio(ext string) bool {
	_, ok := SupportedAudioExtensions[strings.ToLower(ext)]
	return ok
}
