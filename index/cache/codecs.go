package cache

import (
	"bytes"
	"sync"

	"github.com/vmihailenco/msgpack/v5"
)

var bufPool = sync.Pool{
	New: func() any { return new(bytes.Buffer) },
}

// encodeCompact writes msgpack with the smallest int encodings and without
// empty fields. Token entries are mostly zero valued optional fields.
func encodeCompact[T any](value T) ([]byte, error) {
	buf := bufPool.Get().(*bytes.Buffer)
	buf.Reset()
	defer bufPool.Put(buf)

	enc := msgpack.NewEncoder(buf)
	enc.UseCompactInts(true)
	enc.SetOmitEmpty(true)
	if err := enc.Encode(value); err != nil {
		return nil, err
	}
	return bytes.Clone(buf.Bytes()), nil
}

func decodeCompact[T any](data []byte) (T, error) {
	var value T
	err := msgpack.NewDecoder(bytes.NewReader(data)).Decode(&value)
	return value, err
}
