package store

import "errors"

var (
	ErrRoomNotFound    = errors.New("room not found")
	ErrMessageNotFound = errors.New("message not found")
	ErrDuplicateName   = errors.New("room name already exists")
	ErrAlreadyMember   = errors.New("user is already a member of this room")
	ErrRoomFull        = errors.New("room is at maximum capacity")
	ErrInvalidContent  = errors.New("message content must be between 1 and 1000 characters")
	ErrNotInRoom       = errors.New("you are not in a room")
)
