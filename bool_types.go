package lockmail

import "fmt"

// Bool is an API boolean; the API encodes booleans as 0/1 integers.
type Bool bool

func (b Bool) MarshalJSON() ([]byte, error) {
	if b {
		return []byte("1"), nil
	}

	return []byte("0"), nil
}

func (b *Bool) UnmarshalJSON(data []byte) error {
	switch string(data) {
	case "0", "false":
		*b = false

	case "1", "true":
		*b = true

	default:
		return fmt.Errorf("bad boolean value %q", data)
	}

	return nil
}

func (b Bool) String() string {
	if b {
		return "true"
	}

	return "false"
}
