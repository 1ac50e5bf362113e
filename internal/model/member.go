package model

// InitialReputation is the score every new profile starts with.  The value
// sits in the middle of the habitable part of the [0,100] range so that a
// handful of bad ratings is visible without zeroing a newcomer.
const InitialReputation = 36.5

// Member is an application account as stored in the `members` table.
// The member directory owns identity and the reputation score; the
// evaluation ledger is the only other writer of the score.
//
// Fields:
//  ID           – UUID primary key.
//  Username     – unique login name.
//  Nickname     – display name shown to other members.
//  PasswordHash – bcrypt hash; never serialized.
//  CreatedAt    – unix seconds of registration.
type Member struct {
	ID           string `json:"id"`
	Username     string `json:"username"`
	Nickname     string `json:"nickname"`
	PasswordHash string `json:"-"`
	CreatedAt    int64  `json:"created_at"`
}

// Profile carries the mutable, member-facing part of an account.  One row
// per member, created together with the member.  Reputation is clamped to
// [0, 100] and only ever moves by applying evaluation deltas.
type Profile struct {
	MemberID   string  `json:"member_id"`
	AvatarURL  string  `json:"avatar_url"`
	Reputation float64 `json:"reputation"`
	UpdatedAt  int64   `json:"updated_at"`
}
