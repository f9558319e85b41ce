package errctx

import "errors"

var ErrNoHandler = errors.New("errctx.nohandler")
var ErrNilRecord = errors.New("errctx.nilrecord")
var ErrClosedSink = errors.New("errctx.closedsink")
