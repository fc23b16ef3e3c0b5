package yadisk

// Link is returned by the upload endpoint
type Link struct {
	Href      string `json:"href"`
	Method    string `json:"method"`
	Templated bool   `json:"templated"`
}

// APIError is the error body of the Disk API
type APIError struct {
	Message     string `json:"message"`
	Description string `json:"description"`
	Error       string `json:"error"`
}
