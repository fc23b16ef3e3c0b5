package vk

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

const (
	// DefaultBaseURL is the VK API host
	DefaultBaseURL = "https://api.vk.com"

	// DefaultAPIVersion is sent as the v parameter when none is configured
	DefaultAPIVersion = "5.199"

	// PhotosGetMethod lists photos of an album
	PhotosGetMethod = "photos.get"

	// ProfileAlbum is the album holding a user's profile photos
	ProfileAlbum = "profile"

	// DefaultLimit is the number of photos selected when no limit is given
	DefaultLimit = 5
)

// MethodURL builds the URL of an API method under baseURL
func MethodURL(baseURL, method string) string {
	return strings.TrimRight(baseURL, "/") + "/method/" + method
}

// PhotosGetURL builds the photos.get request for a user's profile album,
// newest first, with likes and explicit size variants.
func PhotosGetURL(baseURL, token, version string, userID int64) string {
	params := url.Values{}
	params.Set("access_token", token)
	params.Set("v", version)
	params.Set("owner_id", strconv.FormatInt(userID, 10))
	params.Set("album_id", ProfileAlbum)
	params.Set("rev", "1")
	params.Set("extended", "1")
	params.Set("photo_sizes", "1")

	return fmt.Sprintf("%s?%s", MethodURL(baseURL, PhotosGetMethod), params.Encode())
}

// RedactURL hides the access token so URLs can be logged
func RedactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	q := u.Query()
	if q.Has("access_token") {
		q.Set("access_token", "REDACTED")
		u.RawQuery = q.Encode()
	}
	return u.String()
}
