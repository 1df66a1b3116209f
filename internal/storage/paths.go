package storage

import "fmt"

// Logical document keys. They name the same things a document store would
// and double as change-notification keys and log fields.

func CirclePath(circleID string) string {
	return fmt.Sprintf("circle/%s", circleID)
}

func MemberPath(circleID, userID string) string {
	return fmt.Sprintf("circle/%s/member/%s", circleID, userID)
}

func EventPath(circleID, eventID string) string {
	return fmt.Sprintf("circle/%s/event/%s", circleID, eventID)
}

func ParticipantPath(circleID, eventID, participantID string) string {
	return fmt.Sprintf("circle/%s/event/%s/participant/%s", circleID, eventID, participantID)
}

func TransactionPath(circleID, eventID, transactionID string) string {
	return fmt.Sprintf("circle/%s/event/%s/transaction/%s", circleID, eventID, transactionID)
}
