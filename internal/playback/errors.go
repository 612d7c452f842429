package playback

import "fmt"

// BadArgumentError surfaces a spec.md §7 bad-argument condition: a switch
// index out of range, or a call made before the engine has been opened.
type BadArgumentError struct {
	Message string
}

func (e *BadArgumentError) Error() string { return fmt.Sprintf("playback: %s", e.Message) }
