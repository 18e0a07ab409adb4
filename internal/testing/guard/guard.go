package guard

import (
	"os"
	"sync"
)

var once sync.Once

func init() {
	once.Do(func() {
		if os.Getenv("SNEAKERSTORE_TEST_MODE") == "" {
			_ = os.Setenv("SNEAKERSTORE_TEST_MODE", "1")
		}
	})
}
