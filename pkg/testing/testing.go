// Package testing moves the working directory of a test binary to the project
// root, so relative paths (logs/, .env, safetrack.yaml) resolve the same way
// they do for the server binary.
//
// Usage, in some_test.go:
//
//	import (
//		_ "liyu1981.xyz/safetrack-monitor-service/pkg/testing"
//	)
package testing

import (
	"os"
	"path"
	"runtime"
)

func init() {
	_, filename, _, _ := runtime.Caller(0)
	root := path.Join(path.Dir(filename), "..", "..")
	if err := os.Chdir(root); err != nil {
		panic(err)
	}
	if os.Getenv("GO_ENV") == "" {
		_ = os.Setenv("GO_ENV", "test")
	}
}
