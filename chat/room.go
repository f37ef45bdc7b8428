package chat

import "strconv"

const roomSeparator = "_"

// RoomID resolves the canonical identifier of the room shared by two users:
// the pair sorted and joined with a separator, so both participants compute
// the same id regardless of argument order.
func RoomID(a string, b string) string {
	if a > b {
		a, b = b, a
	}
	return a + roomSeparator + b
}

// RoomIDFor is RoomID over numeric user ids.
func RoomIDFor(a uint, b uint) string {
	return RoomID(
		strconv.FormatUint(uint64(a), 10),
		strconv.FormatUint(uint64(b), 10),
	)
}
