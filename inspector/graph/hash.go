package graph

import (
	"encoding/binary"
	"os"

	"github.com/minio/highwayhash"
)

var key = []byte("0123456789ABCDEF0123456789ABCDEF")

func Hash(data []byte) (uint64, error) {
	hash, err := highwayhash.New64(key)
	if err != nil {
		return 0, err
	}
	_, err = hash.Write(data)
	return hash.Sum64(), err
}

// Fingerprint identifies artifact file content by path, size and modification time
func Fingerprint(path string, info os.FileInfo) (uint64, error) {
	buffer := make([]byte, 0, len(path)+17)
	buffer = append(buffer, path...)
	buffer = append(buffer, 0)
	buffer = binary.BigEndian.AppendUint64(buffer, uint64(info.Size()))
	buffer = binary.BigEndian.AppendUint64(buffer, uint64(info.ModTime().UnixNano()))
	return Hash(buffer)
}
