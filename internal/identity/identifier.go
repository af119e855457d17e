package identity

import (
	"encoding/json"
	"fmt"
	"regexp"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/docid/internal/common"
)

// DigestLen is the number of hex characters kept from the SHA-256 digest.
const DigestLen = 16

// Namespace is the UUIDv5 namespace for identifier aliases.
var Namespace = uuid.MustParse("a1b2c3d4-e5f6-7890-abcd-ef1234567890")

var reIdentifier = regexp.MustCompile(`^([A-Z0-9]+)-([A-Z0-9]+)-([0-9A-F]{16})$`)

// Identifier is a document identifier of the form PREFIX-CLASSCODE-DIGEST,
// e.g. "DOC-FV-9F2C4A1B7E3D5C08".
type Identifier struct {
	Prefix    string
	ClassCode string
	Digest    string
}

// Parse validates the identifier shape.
func Parse(s string) (Identifier, error) {
	m := reIdentifier.FindStringSubmatch(s)
	if m == nil {
		return Identifier{}, common.InvalidIdentifierError(s)
	}
	return Identifier{Prefix: m[1], ClassCode: m[2], Digest: m[3]}, nil
}

// MustParse parses an identifier, panicking on error. For fixtures.
func MustParse(s string) Identifier {
	id, err := Parse(s)
	if err != nil {
		panic(fmt.Sprintf("invalid identifier: %s: %v", s, err))
	}
	return id
}

func (id Identifier) String() string {
	if id.IsZero() {
		return ""
	}
	return id.Prefix + "-" + id.ClassCode + "-" + id.Digest
}

// IsZero returns true for the empty identifier.
func (id Identifier) IsZero() bool {
	return id == Identifier{}
}

// Equal compares identifiers by value.
func (id Identifier) Equal(other Identifier) bool {
	return id == other
}

// UUID returns a name-based (v5) UUID alias of the identifier.
func (id Identifier) UUID() uuid.UUID {
	return uuid.NewSHA1(Namespace, []byte(id.String()))
}

// MarshalJSON implements json.Marshaler.
func (id Identifier) MarshalJSON() ([]byte, error) {
	if id.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(id.String())
}

// UnmarshalJSON implements json.Unmarshaler.
func (id *Identifier) UnmarshalJSON(data []byte) error {
	var s *string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("identifier must be a string: %w", err)
	}
	if s == nil || *s == "" {
		*id = Identifier{}
		return nil
	}
	parsed, err := Parse(*s)
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}
