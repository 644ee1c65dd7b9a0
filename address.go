package edcore

import "fmt"

// AddressMode specifies how an Address is interpreted.
type AddressMode int

const (
	// ByteMode specifies an absolute byte offset (0-indexed).
	ByteMode AddressMode = iota

	// RuneMode specifies an absolute rune position (0-indexed).
	RuneMode

	// LineColumnMode specifies a line and a rune column within that line (both 0-indexed).
	LineColumnMode
)

func (m AddressMode) String() string {
	switch m {
	case ByteMode:
		return "byte"
	case RuneMode:
		return "rune"
	case LineColumnMode:
		return "line:column"
	}
	return fmt.Sprintf("AddressMode(%d)", int(m))
}

// Address specifies a document position using one of three addressing modes.
type Address struct {
	Mode AddressMode

	// Byte is used when Mode is ByteMode.
	Byte int64

	// Rune is used when Mode is RuneMode.
	Rune int64

	// Line and Column are used when Mode is LineColumnMode.
	Line   int64
	Column int64
}

// ByteAddress creates an Address in byte mode.
func ByteAddress(offset int64) Address {
	return Address{Mode: ByteMode, Byte: offset}
}

// RuneAddress creates an Address in rune mode.
func RuneAddress(r int64) Address {
	return Address{Mode: RuneMode, Rune: r}
}

// LineAddress creates an Address in line:column mode.
func LineAddress(line, column int64) Address {
	return Address{Mode: LineColumnMode, Line: line, Column: column}
}

// Position is a line and rune column, both 0-indexed.
type Position struct {
	Line   int64
	Column int64
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line+1, p.Column+1)
}

// Resolve converts an Address into a byte offset.
func (d *Document) Resolve(addr Address) (int64, error) {
	switch addr.Mode {
	case ByteMode:
		if err := d.checkOffset(addr.Byte); err != nil {
			return 0, err
		}
		return addr.Byte, nil
	case RuneMode:
		return d.RuneToOffset(addr.Rune)
	case LineColumnMode:
		return d.OffsetOf(addr.Line, addr.Column)
	}
	return 0, fmt.Errorf("address mode %v: %w", addr.Mode, ErrOutOfBounds)
}
