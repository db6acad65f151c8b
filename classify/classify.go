// Package classify implements the definition classifier (spec.md §4.1): a
// shape-based, not tag-based, recognizer for the five descriptor record
// variants the ingestion engine can encounter.
package classify

import (
	"github.com/protoschema/pbschema/desc"
	"github.com/protoschema/pbschema/schemaerr"
)

// Kind tags the variant a descriptor record was classified as.
type Kind int

const (
	Unknown Kind = iota
	Message
	Enum
	Service
	Extend
	MessageField
)

// Classify inspects r's shape and returns its variant, or a schemaerr of
// kind InvalidDefinition if it matches none.
//
// The rules, straight from spec.md §4.1:
//   - Message iff name is a string AND neither values nor rpc is present.
//   - Enum iff name is a string AND values is a non-empty ordered sequence.
//   - Service iff name is a string AND rpc is a non-null mapping.
//   - Extend iff ref is a string.
//   - Message field iff rule, name, type are strings AND id is present.
//
// Where a record fits more than one rule, Extend is chosen first, then
// Message field, then Enum, Service and Message; so a field-shaped record
// is never classified as a Message.
func Classify(r desc.Record) (Kind, error) {
	if _, ok := r.String("ref"); ok {
		return Extend, nil
	}

	_, hasRule := r.String("rule")
	_, hasType := r.String("type")
	_, hasName := r.String("name")
	_, hasID := r["id"]
	if hasRule && hasType && hasName && hasID {
		return MessageField, nil
	}

	name, hasName := r.String("name")
	if hasName {
		if values, ok := r.Slice("values"); ok && len(values) > 0 {
			return Enum, nil
		}
		if rpc, ok := r.Map("rpc"); ok && rpc != nil {
			return Service, nil
		}
		_, hasValues := r["values"]
		_, hasRPC := r["rpc"]
		if !hasValues && !hasRPC {
			return Message, nil
		}
	}

	return Unknown, schemaerr.New(schemaerr.InvalidDefinition, name, "record matches no known definition shape")
}

// IsMessage, IsEnum, IsService, IsExtend, and IsMessageField are the
// classifier predicates exposed by the builder's public API (spec.md §6).
func IsMessage(r desc.Record) bool {
	k, err := Classify(r)
	return err == nil && k == Message
}

func IsEnum(r desc.Record) bool {
	k, err := Classify(r)
	return err == nil && k == Enum
}

func IsService(r desc.Record) bool {
	k, err := Classify(r)
	return err == nil && k == Service
}

func IsExtend(r desc.Record) bool {
	k, err := Classify(r)
	return err == nil && k == Extend
}

func IsMessageField(r desc.Record) bool {
	k, err := Classify(r)
	return err == nil && k == MessageField
}
