package models

import (
	"bytes"
	"fmt"
	"strconv"
)

// ID is a snowflake identifier. It travels as a decimal string in JSON so
// browser clients do not lose precision above 2^53.
type ID int64

func ParseID(s string) (ID, error) {
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return ID(v), nil
}

func (id ID) String() string {
	return strconv.FormatInt(int64(id), 10)
}

func (id ID) IsZero() bool { return id == 0 }

func (id ID) MarshalJSON() ([]byte, error) {
	return []byte(`"` + id.String() + `"`), nil
}

// UnmarshalJSON accepts both "123" and 123.
func (id *ID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) || bytes.Equal(b, []byte(`""`)) {
		*id = 0
		return nil
	}
	b = bytes.Trim(b, `"`)
	v, err := ParseID(string(b))
	if err != nil {
		return err
	}
	*id = v
	return nil
}

// IDPtr returns nil for the zero id.
func IDPtr(id ID) *ID {
	if id == 0 {
		return nil
	}
	return &id
}
