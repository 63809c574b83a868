package pubsub

import "errors"

// ErrClosed is returned by Publish/Subscribe once Close has run.
var ErrClosed = errors.New("pubsub: closed")
