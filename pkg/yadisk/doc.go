// Package yadisk is a minimal Yandex.Disk REST client: create a folder, get
// an upload link, PUT a file to it.
package yadisk
