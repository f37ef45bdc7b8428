package chat

import "testing"

func TestRoomIDSymmetry(t *testing.T) {
	pairs := [][2]string{
		{"1", "2"},
		{"9", "10"},
		{"42", "7"},
		{"100", "101"},
	}

	for _, pair := range pairs {
		ab := RoomID(pair[0], pair[1])
		ba := RoomID(pair[1], pair[0])
		if ab != ba {
			t.Errorf("RoomID(%q, %q) = %q, RoomID(%q, %q) = %q; want equal",
				pair[0], pair[1], ab, pair[1], pair[0], ba)
		}
	}
}

func TestRoomIDDeterminism(t *testing.T) {
	first := RoomID("17", "3")
	for i := 0; i < 10; i++ {
		if got := RoomID("3", "17"); got != first {
			t.Fatalf("RoomID not stable: got %q, want %q", got, first)
		}
	}
}

func TestRoomIDFor(t *testing.T) {
	if got, want := RoomIDFor(2, 1), "1_2"; got != want {
		t.Errorf("RoomIDFor(2, 1) = %q, want %q", got, want)
	}
	if RoomIDFor(7, 12) != RoomIDFor(12, 7) {
		t.Error("RoomIDFor not symmetric")
	}
}
