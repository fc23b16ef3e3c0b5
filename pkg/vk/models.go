package vk

import "fmt"

// PhotosResponse is the envelope returned by photos.get. Exactly one of
// Response and Error is set by a well-behaved server.
type PhotosResponse struct {
	Response *PhotosPage `json:"response,omitempty"`
	Error    *APIError   `json:"error,omitempty"`
}

// PhotosPage holds one page of photo items
type PhotosPage struct {
	Count int         `json:"count"`
	Items []PhotoItem `json:"items"`
}

// PhotoItem is a single photo with all of its renditions
type PhotoItem struct {
	ID      int64         `json:"id"`
	OwnerID int64         `json:"owner_id"`
	AlbumID int64         `json:"album_id"`
	Date    int64         `json:"date"`
	Text    string        `json:"text,omitempty"`
	Sizes   []SizeVariant `json:"sizes"`
	Likes   Likes         `json:"likes"`
}

// Likes is the extended likes block
type Likes struct {
	Count     int `json:"count"`
	UserLikes int `json:"user_likes"`
}

// SizeVariant is one rendition of a photo
type SizeVariant struct {
	Type   string `json:"type"`
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// Area returns the pixel count of the rendition
func (s SizeVariant) Area() int {
	return s.Width * s.Height
}

// APIError is the error object VK returns with HTTP 200
type APIError struct {
	Code    int    `json:"error_code"`
	Message string `json:"error_msg"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("vk api error %d: %s", e.Code, e.Message)
}

// PhotoRecord is a selected photo ready for upload
type PhotoRecord struct {
	Likes    int    `json:"likes"`
	URL      string `json:"url"`
	Date     int64  `json:"date"`
	PhotoID  int64  `json:"photo_id"`
	SizeType string `json:"size_type"`
}

// FetchResult is the outcome of FetchTopPhotos. A missing item list yields no
// records and no error; APIError then carries whatever VK reported.
type FetchResult struct {
	Records  []PhotoRecord
	Total    int
	APIError *APIError
}
