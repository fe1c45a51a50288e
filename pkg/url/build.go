// Copyright (c) Kusari <https://www.kusari.dev/>
// SPDX-License-Identifier: MIT

package url

import (
	"fmt"
	"net/url"
)

func Build(baseURL string, pathSegments ...string) (*string, error) {
	parsedURL, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse base URL: %w", err)
	}
	if parsedURL.Host == "" {
		return nil, fmt.Errorf("failed to parse base URL: no host in %q", baseURL)
	}

	for _, segment := range pathSegments {
		parsedURL = parsedURL.JoinPath(segment)
	}
	fullUrl := parsedURL.String()
	return &fullUrl, nil
}

// RunURL builds the link to a GitHub Actions run. It returns an empty
// string when any part is missing.
func RunURL(serverURL, repository, runID string) string {
	if serverURL == "" || repository == "" || runID == "" {
		return ""
	}
	runUrl, err := Build(serverURL, repository, "actions", "runs", runID)
	if err != nil {
		return ""
	}
	return *runUrl
}
