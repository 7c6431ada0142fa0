package hirez

import (
	"crypto/md5"
	"encoding/hex"
	"time"
)

// timestampFormat is the wall-clock layout the API expects, always in UTC.
const timestampFormat = "20060102150405"

// Timestamp formats t the way the API expects. A fresh timestamp must be
// generated for every signed request; timestamps are not reusable.
func Timestamp(t time.Time) string {
	return t.UTC().Format(timestampFormat)
}

// Signature computes the per-request signature: the lowercase hex MD5 digest
// of devID + method + authKey + timestamp, in exactly that order. The
// function is pure and total; credential correctness is validated by the
// remote server, not here.
func Signature(devID, method, authKey, timestamp string) string {
	sum := md5.Sum([]byte(devID + method + authKey + timestamp))
	return hex.EncodeToString(sum[:])
}
