package app

import "time"

var testTime = time.Date(2025, 5, 15, 12, 0, 0, 0, time.UTC)
