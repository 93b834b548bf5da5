package frontend

import (
	"strconv"

	"github.com/SamuelVanie/vdebugger/internal/vderrors"
)

// parseHex parses a hexadecimal literal with an optional "0x"/"0X"
// prefix into a uint64, per spec.md §4.5.
func parseHex(s string) (uint64, error) {
	trimmed := s
	if len(trimmed) >= 2 && trimmed[0] == '0' && (trimmed[1] == 'x' || trimmed[1] == 'X') {
		trimmed = trimmed[2:]
	}
	v, err := strconv.ParseUint(trimmed, 16, 64)
	if err != nil {
		return 0, vderrors.NewUserInputError("invalid hexadecimal literal %q", s)
	}
	return v, nil
}
