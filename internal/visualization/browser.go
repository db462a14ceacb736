package visualization

import (
	"fmt"
	"os"
	"os/exec"
	"runtime"
)

// OpenBrowser points the user's browser at a running viewer. $BROWSER wins
// over the platform opener.
func OpenBrowser(url string) error {
	cmd, err := browserCommand(runtime.GOOS, os.Getenv("BROWSER"), url)
	if err != nil {
		return err
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("launching %s: %w", cmd.Path, err)
	}
	go cmd.Wait() //nolint:errcheck // reap the launcher; the browser outlives it
	return nil
}

func browserCommand(goos, browser, url string) (*exec.Cmd, error) {
	if browser != "" {
		return exec.Command(browser, url), nil
	}
	switch goos {
	case "linux", "freebsd", "openbsd", "netbsd":
		return exec.Command("xdg-open", url), nil
	case "darwin":
		return exec.Command("open", url), nil
	case "windows":
		return exec.Command("rundll32", "url.dll,FileProtocolHandler", url), nil
	default:
		return nil, fmt.Errorf("no browser launcher for %s; open %s manually", goos, url)
	}
}
