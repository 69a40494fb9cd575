package eligibility

import (
	"fmt"
	"os"
	"sync"
)

// loadRulesText memoises the opaque rules text for the process lifetime,
// the same one-shot-load discipline as the prompt registry: reloading
// requires a process restart.
var (
	rulesOnce sync.Once
	rulesText string
	rulesErr  error
)

func loadRulesText(path string) (string, error) {
	rulesOnce.Do(func() {
		raw, err := os.ReadFile(path)
		if err != nil {
			rulesErr = fmt.Errorf("read rules text %s: %w", path, err)
			return
		}
		rulesText = string(raw)
	})
	return rulesText, rulesErr
}
