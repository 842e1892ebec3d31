package webhooks

import "errors"

var (
	ErrNotFound     = errors.New("webhook not found")
	ErrInvalidURL   = errors.New("webhook url must be an absolute http or https url")
	ErrInvalidEvent = errors.New("unknown webhook event")
)
