package model

import "time"

// Dataset describes a fetched source dataset after it has been written to
// the local dataset file. It carries no durable identity; each run
// supersedes the previous one by overwriting the same path.
type Dataset struct {
	Path      string
	Bytes     int64
	WrittenAt time.Time
}
