package api

import (
	"fmt"
	"os/exec"
	"runtime"
)

// OpenBrowser opens the inspection UI in the local default browser. It is
// presentation plumbing only; everything it shows goes through the public
// query/select/materialize contract.
func OpenBrowser(url string) error {
	switch runtime.GOOS {
	case "darwin":
		return exec.Command("open", url).Start()
	case "windows":
		return exec.Command("rundll32", "url.dll,FileProtocolHandler", url).Start()
	case "linux":
		return exec.Command("xdg-open", url).Start()
	}
	return fmt.Errorf("unsupported platform %q", runtime.GOOS)
}
