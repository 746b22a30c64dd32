package runtime

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRooms_Join_And_Members(t *testing.T) {
	req := require.New(t)
	rooms := NewRooms()

	rooms.Join("conn-1", "general")
	rooms.Join("conn-2", "general")
	rooms.Join("conn-3", "gaming")

	req.ElementsMatch([]string{"conn-1", "conn-2"}, rooms.Members("general"))
	req.ElementsMatch([]string{"conn-3"}, rooms.Members("gaming"))
	req.Equal(2, rooms.Count())
}

func TestRooms_Unknown_Room_Has_No_Members(t *testing.T) {
	rooms := NewRooms()
	require.Nil(t, rooms.Members("nowhere"))
}

func TestRooms_Leave_Drops_Empty_Group(t *testing.T) {
	req := require.New(t)
	rooms := NewRooms()
	rooms.Join("conn-1", "general")
	rooms.Join("conn-2", "general")

	// When one member leaves the group survives
	rooms.Leave("conn-1", "general")
	req.ElementsMatch([]string{"conn-2"}, rooms.Members("general"))

	// When the last member leaves the group disappears entirely
	rooms.Leave("conn-2", "general")
	req.Nil(rooms.Members("general"))
	req.Equal(0, rooms.Count())
}

func TestRooms_Leave_Unknown_Room_Is_Noop(t *testing.T) {
	rooms := NewRooms()
	rooms.Leave("conn-1", "nowhere")
	require.Equal(t, 0, rooms.Count())
}

func TestRooms_Join_Is_Idempotent(t *testing.T) {
	req := require.New(t)
	rooms := NewRooms()
	rooms.Join("conn-1", "general")
	rooms.Join("conn-1", "general")
	req.ElementsMatch([]string{"conn-1"}, rooms.Members("general"))
}
