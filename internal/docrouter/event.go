package docrouter

import (
	"fmt"
	"strings"
)

// StorageEvent is the part of a Cloud Storage object notification the
// router consumes. The remaining fields are informational.
type StorageEvent struct {
	Bucket      string `json:"bucket"`
	Name        string `json:"name"`
	ContentType string `json:"contentType,omitempty"`
	Size        string `json:"size,omitempty"`
	Generation  string `json:"generation,omitempty"`
}

// Validate rejects events without a bucket or object name.
func (e StorageEvent) Validate() error {
	var missing []string
	if e.Bucket == "" {
		missing = append(missing, "bucket")
	}
	if e.Name == "" {
		missing = append(missing, "name")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrMalformedEvent, strings.Join(missing, " and "))
	}
	return nil
}

// URI is the gs:// address of the object.
func (e StorageEvent) URI() string {
	return fmt.Sprintf("gs://%s/%s", e.Bucket, e.Name)
}

// ParseURI splits a gs://bucket/name address into an event.
func ParseURI(uri string) (StorageEvent, error) {
	rest, ok := strings.CutPrefix(uri, "gs://")
	if !ok {
		return StorageEvent{}, fmt.Errorf("%w: %q is not a gs:// URI", ErrMalformedEvent, uri)
	}
	bucket, name, _ := strings.Cut(rest, "/")
	ev := StorageEvent{Bucket: bucket, Name: name}
	if err := ev.Validate(); err != nil {
		return StorageEvent{}, err
	}
	return ev, nil
}
