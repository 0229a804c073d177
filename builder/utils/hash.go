package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"hash"
	"io"
	"sort"
	"strconv"
)

// GetFrontmatterHash fingerprints the metadata fields that affect rendered
// pages. Fields are written in a fixed order with delimiters so the hash is
// deterministic without JSON marshaling.
func GetFrontmatterHash(metaData map[string]interface{}) (string, error) {
	h := sha256.New()

	writeString(h, GetString(metaData, "title"))
	h.Write([]byte{0})
	writeString(h, GetString(metaData, "description"))
	h.Write([]byte{0})
	writeString(h, GetString(metaData, "date"))
	h.Write([]byte{0})
	writeString(h, GetString(metaData, "updated"))
	h.Write([]byte{0})
	writeString(h, GetString(metaData, "image"))
	h.Write([]byte{0})
	writeString(h, strconv.Itoa(GetInt(metaData, "order")))
	h.Write([]byte{0})

	for _, key := range []string{"tags", "authors"} {
		values := GetSlice(metaData, key)
		if len(values) > 0 {
			sorted := make([]string, len(values))
			copy(sorted, values)
			sort.Strings(sorted)
			for _, v := range sorted {
				writeString(h, v)
				h.Write([]byte{0})
			}
		}
		h.Write([]byte{0})
	}

	if GetBool(metaData, "draft") {
		h.Write([]byte{1})
	} else {
		h.Write([]byte{0})
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}

// writeString writes a string to the hash
func writeString(h hash.Hash, s string) {
	_, _ = io.WriteString(h, s)
}
