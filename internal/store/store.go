package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is wrapped by store implementations when a record does not exist.
var ErrNotFound = errors.New("not found")

// ErrConflict is wrapped when an insert violates a uniqueness rule
// (duplicate username, room name, or rating).
var ErrConflict = errors.New("conflict")

// Role identifies the kind of participant. The set is closed: the platform
// only knows students and tutors.
type Role string

const (
	RoleStudent Role = "student"
	RoleTutor   Role = "tutor"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleStudent || r == RoleTutor
}

// User represents a registered account (student or tutor).
type User struct {
	ID           int64
	Username     string
	PasswordHash string
	Role         Role
	Description  string
	CreatedAt    time.Time
}

// Room represents a durable chat room.
type Room struct {
	ID            int64
	Name          string
	Description   string
	IsPrivate     bool
	PasswordHash  string // empty for public rooms
	OwnerID       int64
	AverageRating float64
	CreatedAt     time.Time
}

// Message is a persisted chat message. Sender identity is denormalized at
// send time so history survives account changes.
type Message struct {
	ID         int64
	RoomID     int64
	SenderID   int64
	SenderName string
	SenderRole Role
	Body       string
	CreatedAt  time.Time
}

// RoomMember is the persisted membership record, distinct from the transient
// in-memory fan-out registry.
type RoomMember struct {
	RoomID   int64
	UserID   int64
	JoinedAt time.Time
}

// Rating is a per-room review left by a user. One per user per room.
type Rating struct {
	ID        int64
	RoomID    int64
	UserID    int64
	Username  string
	Rating    int
	Comment   string
	CreatedAt time.Time
}

// UserStore handles account persistence.
type UserStore interface {
	// CreateUser creates a new user with hashed password.
	CreateUser(ctx context.Context, username, passwordHash string, role Role, description string) (*User, error)

	// GetUserByID retrieves a user by ID.
	GetUserByID(ctx context.Context, id int64) (*User, error)

	// GetUserByUsername retrieves a user by username.
	GetUserByUsername(ctx context.Context, username string) (*User, error)
}

// RoomStore handles durable room and membership persistence.
type RoomStore interface {
	// CreateRoom creates a new room and adds the owner as a member.
	CreateRoom(ctx context.Context, room *Room) (*Room, error)

	// GetRoomByID retrieves a room by ID.
	GetRoomByID(ctx context.Context, id int64) (*Room, error)

	// ListRooms lists all rooms.
	ListRooms(ctx context.Context) ([]*Room, error)

	// ListUserRooms lists rooms the user is a member of.
	ListUserRooms(ctx context.Context, userID int64) ([]*Room, error)

	// AddMember adds a user to a room. Adding an existing member is a no-op.
	AddMember(ctx context.Context, userID, roomID int64) error

	// IsMember checks if user is a member of the room.
	IsMember(ctx context.Context, userID, roomID int64) (bool, error)
}

// MessageStore handles message persistence. It is the source of truth for
// message identity and ordering.
type MessageStore interface {
	// AppendMessage persists msg and returns the stored record with the
	// assigned id and authoritative created_at. The caller supplies
	// msg.CreatedAt from its serialization point; it is never client time.
	AppendMessage(ctx context.Context, msg *Message) (*Message, error)

	// ListMessages returns all messages for a room in ascending
	// (created_at, id) order.
	ListMessages(ctx context.Context, roomID int64) ([]*Message, error)

	// RecentMatch reports whether a message with the same room, sender and
	// body exists with created_at at or after since. Existence check only.
	RecentMatch(ctx context.Context, roomID, senderID int64, body string, since time.Time) (bool, error)
}

// RatingStore handles room rating persistence.
type RatingStore interface {
	// CreateRating inserts a rating and refreshes the room's average.
	// Returns ErrConflict if the user already rated the room.
	CreateRating(ctx context.Context, rating *Rating) (*Rating, error)

	// ListRatings lists ratings for a room, newest first.
	ListRatings(ctx context.Context, roomID int64) ([]*Rating, error)
}

// Store aggregates all storage interfaces.
type Store interface {
	UserStore
	RoomStore
	MessageStore
	RatingStore

	// Close closes the underlying database connection.
	Close() error
}
