package codec

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// writeMemComparableInt64 writes v so that byte order matches numeric order
func writeMemComparableInt64(buf *bytes.Buffer, v int64) {
	var tmp [8]byte
	u := uint64(v)
	u ^= 0x8000000000000000
	binary.BigEndian.PutUint64(tmp[:], u)
	buf.Write(tmp[:])
}

func readMemComparableInt64(data []byte) (int64, int) {
	if len(data) < 8 {
		return 0, 0
	}
	u := binary.BigEndian.Uint64(data[:8])
	u ^= 0x8000000000000000
	return int64(u), 8
}

// EncodeRecordKey returns the key of the record at position seq. Keys sort in
// source order, so a prefix scan yields records in the order they were imported.
func EncodeRecordKey(seq int64) []byte {
	buf := &bytes.Buffer{}
	buf.Grow(9)
	buf.WriteByte(byte(KeyTypeRecord))
	writeMemComparableInt64(buf, seq)
	return buf.Bytes()
}

func DecodeRecordKey(key []byte) (int64, error) {
	if len(key) != 9 || key[0] != byte(KeyTypeRecord) {
		return 0, fmt.Errorf("invalid record key %x", key)
	}
	seq, _ := readMemComparableInt64(key[1:])
	return seq, nil
}

// RecordKeyBounds returns the [lower, upper) range covering every record key
func RecordKeyBounds() (lower, upper []byte) {
	return []byte{byte(KeyTypeRecord)}, []byte{byte(KeyTypeRecord) + 1}
}

func EncodeMetaKey(name string) []byte {
	buf := &bytes.Buffer{}
	buf.WriteByte(byte(KeyTypeMeta))
	buf.WriteString(name)
	return buf.Bytes()
}
