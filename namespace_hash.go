package main

import (
	"crypto/md5"
	"crypto/sha256"
	"hash/crc32"
	"hash/fnv"

	"github.com/cespare/xxhash/v2"
)

var hashFunctions = &funcTable{
	name: "hash",
	funcs: map[string]binder{
		"sha256": pure(func(data string) any { return sha256.Sum256([]byte(data)) }),
		"md5":    pure(func(data string) any { return md5.Sum([]byte(data)) }),
		"crc32":  pure(func(data string) any { return crc32.ChecksumIEEE([]byte(data)) }),
		"fnv64":  pure(fnv64),
		"xxhash": pure(func(data string) any { return xxhash.Sum64String(data) }),
	},
}

func fnv64(data string) any {
	h := fnv.New64a()
	h.Write([]byte(data))
	return h.Sum64()
}
