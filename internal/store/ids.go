package store

import (
	"crypto/rand"
	"encoding/base32"
	"fmt"
	"strings"
)

// NextTaskID bumps the sequence and returns "t<seq>". Ids are never reused.
func (db *DB) NextTaskID() string {
	for {
		db.Seq++
		id := fmt.Sprintf("t%d", db.Seq)
		if _, _, taken := db.FindTask(id); !taken {
			return id
		}
	}
}

// newRandomID returns prefix-<suffix> where suffix is 8 chars of base32 (lowercase, no padding).
func newRandomID(prefix string) (string, error) {
	var b [5]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "", err
	}
	enc := base32.StdEncoding.WithPadding(base32.NoPadding)
	return prefix + "-" + strings.ToLower(enc.EncodeToString(b[:])), nil
}
