package service

import "github.com/sakif/messagely/internal/model"

// Authorization policy for messages.
//
// These are pure predicates: no I/O, no context, no error returns. The
// service fetches the message first, evaluates the predicate second, and
// mutates third — three explicit steps, never authorization-by-exception.
// Keeping the decision logic free of dependencies means the rules can be
// tested as plain truth tables.

// CanView reports whether requester may read the message: only the sender
// and the recipient can see it.
func CanView(requester string, msg *model.Message) bool {
	return requester == msg.FromUsername || requester == msg.ToUsername
}

// CanMarkRead reports whether requester may mark the message read: strictly
// the recipient. The sender can view the message but never mark it read —
// "read" means read by the person it was sent to.
func CanMarkRead(requester string, msg *model.Message) bool {
	return requester == msg.ToUsername
}
