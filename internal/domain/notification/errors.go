package notification

import "errors"

var (
	ErrNotificationNotFound    = errors.New("no matching notification in this inbox")
	ErrInvalidNotificationType = errors.New("invalid notification type")
	ErrMissingRecipient        = errors.New("notification needs a recipient employee")
)
