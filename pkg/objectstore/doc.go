// Package objectstore is the S3-compatible backup destination, used when
// disk.backend is "s3". Any MinIO or AWS style endpoint works.
package objectstore
