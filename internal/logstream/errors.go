package logstream

import "errors"

// ErrClipboardUnsupported is returned when no clipboard utility is available,
// typically on a headless Linux box without xclip, xsel or wl-copy.
var ErrClipboardUnsupported = errors.New("clipboard is not supported on this system")
