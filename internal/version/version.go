package version

import (
	"encoding/json"
	"fmt"
	"io"
)

var (
	Release   = "UNKNOWN"
	BuildDate = "UNKNOWN"
	GitHash   = "UNKNOWN"
)

func FprintVersion(w io.Writer) {
	if err := json.NewEncoder(w).Encode(struct {
		Release   string
		BuildDate string
		GitHash   string
	}{
		Release:   Release,
		BuildDate: BuildDate,
		GitHash:   GitHash,
	}); err != nil {
		fmt.Printf("error while encode version info: %v\n", err)
	}
}
