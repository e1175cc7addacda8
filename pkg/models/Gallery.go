package models

import (
	"fmt"
)

var (
	ErrGalleryNotFound = fmt.Errorf("gallery not found")
)

/*
GalleryRecord is a stored gallery. Payload holds the gallery as JSON, in the
same shape the API accepts.
*/
type GalleryRecord struct {
	ID      string `db:"id"`
	Payload string `db:"payload"`
}
