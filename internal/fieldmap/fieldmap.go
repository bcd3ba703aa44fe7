// Package fieldmap holds the static translation from logical field names
// to the platform's opaque field identifiers. The backing record stores
// each logical section as one JSON-serialized field.
package fieldmap

// ObjectKey identifies the platform object that holds one record per user.
const ObjectKey = "object_102"

// Platform field identifiers for the managed sections of the record.
const (
	CardBank       = "field_2979" // mixed array of cards and topic shells
	Box1           = "field_2986" // spaced-repetition bucket 1
	Box2           = "field_2987"
	Box3           = "field_2988"
	Box4           = "field_2989"
	Box5           = "field_2990"
	ColorMapping   = "field_3000" // subject/topic -> color object
	TopicLists     = "field_3011" // topic-list array
	TopicMetadata  = "field_3030" // per-topic metadata array
	LastSaved      = "field_2957" // RFC 3339 timestamp of last write
	UserConnection = "field_2954" // connection back to the account record
)

// Boxes lists the five spaced-repetition bucket fields in review order.
var Boxes = [5]string{Box1, Box2, Box3, Box4, Box5}

// Managed lists every field the sync layer owns on the record. Field
// preservation iterates exactly this set; LastSaved is excluded because
// it is rewritten on every save.
var Managed = []string{
	CardBank,
	Box1, Box2, Box3, Box4, Box5,
	ColorMapping,
	TopicLists,
	TopicMetadata,
}
