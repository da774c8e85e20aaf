// Package timestamp implements UTC points in time on top of package
// duration.
//
// A Timestamp is the finite, non-negative duration since the Unix epoch.
// Arithmetic goes through the checked Duration operations, so adding an
// infinity or stepping before the epoch is an error rather than a wrap:
//
//	t := timestamp.Now()
//	later, _ := t.Add(duration.Must(duration.FromSeconds(5)))
//	_, err := t.Add(duration.Inf) // errors.ErrArithmetic
//	elapsed := later.Since(t)     // 5s
//
// Format and Parse use the core's %-placeholder syntax. DefaultFormat
// matches the start_time field of branch info documents.
package timestamp
