package version

import (
	"io"
	"net/http"
	"regexp"
	"time"
)

// sourceURL points at the published copy of version.go; the daemon compares
// its compiled-in VERSION against whatever is on main.
var sourceURL = "https://raw.githubusercontent.com/padctl/padctl/main/internal/version/version.go"

var versionPattern = regexp.MustCompile(`VERSION\s*=\s*"v(\d+\.\d+\.\d+)"`)

// CheckVersion reports whether the running build is current. Any fetch
// problem counts as current: the check is a courtesy, never a blocker.
func CheckVersion() (bool, string) {
	latest, err := fetchLatest()
	if err != nil || latest == "" {
		return true, ""
	}
	if latest != VERSION {
		return false, latest
	}
	return true, ""
}

func fetchLatest() (string, error) {
	client := &http.Client{Timeout: 3 * time.Second}
	res, err := client.Get(sourceURL)
	if err != nil {
		return "", err
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return "", nil
	}
	body, err := io.ReadAll(res.Body)
	if err != nil {
		return "", err
	}
	return extractVersion(string(body)), nil
}

func extractVersion(input string) string {
	matches := versionPattern.FindStringSubmatch(input)
	if len(matches) < 2 {
		return ""
	}
	return "v" + matches[1]
}
