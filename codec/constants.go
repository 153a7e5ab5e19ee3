package codec

// KeyType prefixes every key written to a dataset snapshot
type KeyType byte

const (
	KeyTypeMeta   KeyType = 'm'
	KeyTypeRecord KeyType = 'r'
)

// Meta entries stored alongside the records of a snapshot
const (
	MetaSnapshot = "snapshot"
	MetaColumns  = "columns"
)
