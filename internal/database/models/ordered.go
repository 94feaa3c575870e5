package models

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// ZoneSet keeps zones in the order they were captured. It encodes as a JSON
// object keyed by zone id.
type ZoneSet []ZoneFingerprint

// ImageSet keeps images in the order they were captured. It encodes as a JSON
// object keyed by image id.
type ImageSet []ImageFingerprint

// Get returns the zone with the given id.
func (s ZoneSet) Get(id string) (ZoneFingerprint, bool) {
	for _, z := range s {
		if z.ID == id {
			return z, true
		}
	}
	return ZoneFingerprint{}, false
}

// Get returns the image with the given id.
func (s ImageSet) Get(id string) (ImageFingerprint, bool) {
	for _, img := range s {
		if img.ID == id {
			return img, true
		}
	}
	return ImageFingerprint{}, false
}

func (s ZoneSet) MarshalJSON() ([]byte, error) {
	return marshalOrdered(s, func(z ZoneFingerprint) string { return z.ID })
}

func (s *ZoneSet) UnmarshalJSON(data []byte) error {
	out, err := unmarshalOrdered(data, func(id string, z *ZoneFingerprint) { z.ID = id })
	if err != nil {
		return fmt.Errorf("zones: %w", err)
	}
	*s = out
	return nil
}

func (s ImageSet) MarshalJSON() ([]byte, error) {
	return marshalOrdered(s, func(img ImageFingerprint) string { return img.ID })
}

func (s *ImageSet) UnmarshalJSON(data []byte) error {
	out, err := unmarshalOrdered(data, func(id string, img *ImageFingerprint) { img.ID = id })
	if err != nil {
		return fmt.Errorf("images: %w", err)
	}
	*s = out
	return nil
}

func marshalOrdered[T any](items []T, key func(T) string) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, item := range items {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(key(item))
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(item)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func unmarshalOrdered[T any](data []byte, setKey func(string, *T)) ([]T, error) {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil, nil
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("expected object, got %v", tok)
	}

	items := []T{}
	seen := make(map[string]int)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("expected string key, got %v", tok)
		}
		var item T
		if err := dec.Decode(&item); err != nil {
			return nil, fmt.Errorf("entry %q: %w", key, err)
		}
		setKey(key, &item)
		// A repeated key overrides the earlier value in place, as a map would.
		if idx, dup := seen[key]; dup {
			items[idx] = item
			continue
		}
		seen[key] = len(items)
		items = append(items, item)
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return items, nil
}
