// Package types provides the payload types shared by NetForge clients and
// servers: opaque records and nullable scalars for fields where JSON null
// carries meaning, such as the next/previous links of a paginated envelope.
package types

// Nullable defines the interface for types that can represent null values.
// Types implementing this interface can distinguish between a zero value and an
// explicit JSON null, which matters for API fields where null and "" differ.
type Nullable interface {
	// IsNil returns true if the value is null, false otherwise.
	IsNil() bool
}
