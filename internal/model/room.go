package model

// RoomKind distinguishes one-on-one rooms from group rooms.  DIRECT rooms
// always have capacity 2; GROUP rooms carry the capacity chosen by the
// meetup author.
type RoomKind string

const (
	RoomKindDirect RoomKind = "DIRECT"
	RoomKindGroup  RoomKind = "GROUP"
)

// DirectRoomCapacity is the fixed capacity of a DIRECT room.
const DirectRoomCapacity = 2

// MinGroupCapacity is the smallest capacity a GROUP room may have. The
// author always takes the first slot, so anything below 2 would make a
// room nobody else can ever join.
const MinGroupCapacity = 2

// Room represents a capacity-bounded participant container as stored in
// the `rooms` table.  Occupancy is mutated only through join/leave and
// must always satisfy 0 <= occupancy <= capacity and equal the number of
// room_members rows for the room.
//
// Fields:
//  ID        – UUID primary key.
//  Name      – display label (the meetup title for GROUP rooms).
//  Kind      – DIRECT or GROUP.
//  Capacity  – hard occupancy limit.
//  Occupancy – current number of members.
//  CreatedAt – unix seconds of creation.
//  UpdatedAt – unix seconds of last occupancy/capacity change.
type Room struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Kind      RoomKind `json:"kind"`
	Capacity  int      `json:"capacity"`
	Occupancy int      `json:"occupancy"`
	CreatedAt int64    `json:"created_at"`
	UpdatedAt int64    `json:"updated_at"`
}

// RoomMember is one row of a room's roster.  At most one row exists per
// (room, member) pair; rows are inserted on join and deleted on leave,
// never updated.
type RoomMember struct {
	RoomID   string `json:"room_id"`
	MemberID string `json:"member_id"`
	JoinedAt int64  `json:"joined_at"`
}
