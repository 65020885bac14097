package service

import (
	"errors"
	"fmt"
)

// Code identifies a recoverable-by-caller failure on the wire.
type Code int

const (
	CodeTelegramNotValid  Code = 100
	CodeUserNotFound      Code = 101
	CodeChatNotFound      Code = 102
	CodeSenderNotFound    Code = 103
	CodeNotChatMember     Code = 104
	CodeMessageNotFound   Code = 105
	CodeChatConflict      Code = 106
	CodeConflictMessage   Code = 107
	CodeFileNotFound      Code = 108
	CodeCursorInvalidated Code = 109
	CodeNotOwner          Code = 110
	CodeUnknownMembers    Code = 111
	CodeInvalidOperation  Code = 112
	CodeNotAGroupChat     Code = 113
	CodeUserAlreadyExists Code = 114
)

// Error is the typed failure surfaced to the transport boundary. Anything
// else bubbling out of a service is an infrastructure failure and is
// reported without internal detail.
type Error struct {
	Code    Code
	Message string
	// Missing carries the unresolved ids for CodeUnknownMembers.
	Missing []uint
}

func (e *Error) Error() string {
	return fmt.Sprintf("%d: %s", e.Code, e.Message)
}

// AsError unwraps err into a typed service failure, if it is one.
func AsError(err error) (*Error, bool) {
	var svcErr *Error
	if errors.As(err, &svcErr) {
		return svcErr, true
	}
	return nil, false
}

func errTelegramNotValid(reason string) *Error {
	return &Error{Code: CodeTelegramNotValid, Message: reason}
}

func errUserNotFound(identity string) *Error {
	return &Error{Code: CodeUserNotFound, Message: fmt.Sprintf("user %s not found", identity)}
}

func errChatNotFound(chatID uint) *Error {
	return &Error{Code: CodeChatNotFound, Message: fmt.Sprintf("chat %d not found", chatID)}
}

func errNotChatMember() *Error {
	return &Error{Code: CodeNotChatMember, Message: "not a chat member"}
}

func errMessageNotFound(messageID uint) *Error {
	return &Error{Code: CodeMessageNotFound, Message: fmt.Sprintf("message %d not found", messageID)}
}

func errChatConflict(chatID uint) *Error {
	return &Error{Code: CodeChatConflict, Message: fmt.Sprintf("message does not belong to chat %d", chatID)}
}

func errConflictMessage() *Error {
	return &Error{Code: CodeConflictMessage, Message: "only the sender may edit a message"}
}

func errFileNotFound(hash string) *Error {
	return &Error{Code: CodeFileNotFound, Message: fmt.Sprintf("file %s not found", hash)}
}

func errCursorInvalidated(beforeID uint) *Error {
	return &Error{Code: CodeCursorInvalidated, Message: fmt.Sprintf("cursor %d points at a deleted message", beforeID)}
}

func errNotOwner() *Error {
	return &Error{Code: CodeNotOwner, Message: "not the chat owner"}
}

func errUnknownMembers(missing []uint) *Error {
	return &Error{
		Code:    CodeUnknownMembers,
		Message: fmt.Sprintf("unknown members: %v", missing),
		Missing: missing,
	}
}

func errInvalidOperation(reason string) *Error {
	return &Error{Code: CodeInvalidOperation, Message: reason}
}

func errNotAGroupChat(chatID uint) *Error {
	return &Error{Code: CodeNotAGroupChat, Message: fmt.Sprintf("chat %d is not a group chat", chatID)}
}

func errUserAlreadyExists(username string) *Error {
	return &Error{Code: CodeUserAlreadyExists, Message: fmt.Sprintf("username %s is taken", username)}
}
