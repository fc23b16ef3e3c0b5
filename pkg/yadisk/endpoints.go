package yadisk

import (
	"net/url"
	"strconv"
	"strings"
)

const (
	// DefaultBaseURL is the Yandex.Disk REST API host
	DefaultBaseURL = "https://cloud-api.yandex.net"

	// ResourcesEndpoint creates folders and describes resources
	ResourcesEndpoint = "/v1/disk/resources"

	// UploadEndpoint hands out signed upload URLs
	UploadEndpoint = "/v1/disk/resources/upload"
)

// ResourceURL builds the folder creation URL for path
func ResourceURL(baseURL, path string) string {
	params := url.Values{}
	params.Set("path", path)
	return strings.TrimRight(baseURL, "/") + ResourcesEndpoint + "?" + params.Encode()
}

// UploadLinkURL builds the URL that returns an upload href for path
func UploadLinkURL(baseURL, path string, overwrite bool) string {
	params := url.Values{}
	params.Set("path", path)
	params.Set("overwrite", strconv.FormatBool(overwrite))
	return strings.TrimRight(baseURL, "/") + UploadEndpoint + "?" + params.Encode()
}

// RemotePath joins a Disk folder and a file name
func RemotePath(folder, fileName string) string {
	folder = strings.TrimRight(folder, "/")
	if folder == "" {
		return fileName
	}
	return folder + "/" + fileName
}
