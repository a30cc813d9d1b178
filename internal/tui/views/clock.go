package views

import "time"

// timeSince is replaced in tests.
var timeSince = time.Since
