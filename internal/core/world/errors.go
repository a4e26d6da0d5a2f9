package world

import "errors"

var ErrUnknownDriftMode = errors.New("unknown drift mode")
